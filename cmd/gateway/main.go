package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"doc-summarizer/internal/app"
	"doc-summarizer/internal/extract"
	"doc-summarizer/internal/httputil"
	"doc-summarizer/internal/queue"
	"doc-summarizer/internal/store"
	"doc-summarizer/internal/summarize"
)

// textSummarizer is the synchronous summarization entry point.
type textSummarizer interface {
	Summarize(ctx context.Context, text string, observer summarize.ProgressObserver) (summarize.Result, error)
}

// multipartOverhead covers form boundaries and part headers around the uploaded file.
const multipartOverhead = 64 << 10

type summarizeRequest struct {
	Text string `json:"text" validate:"required"`
}

type statsResponse struct {
	OriginalWords    int    `json:"original_words"`
	SummaryWords     int    `json:"summary_words"`
	CompressionRatio string `json:"compression_ratio"`
}

func newStatsResponse(s summarize.Stats) statsResponse {
	return statsResponse{
		OriginalWords:    s.OriginalWords,
		SummaryWords:     s.SummaryWords,
		CompressionRatio: s.FormatRatio(),
	}
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps, app.NewOrchestrator(deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Log.Info("gateway listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps, summarizer textSummarizer) http.Handler {
	// Synchronous summaries of long text hold the request for every model call.
	timeout := deps.Config.LLMCallTimeout() * 10
	r := httputil.NewRouter(deps.Log, timeout)

	r.Post("/api/documents/upload", uploadHandler(deps))
	r.Get("/api/documents/{id}", documentHandler(deps))
	r.Get("/api/documents/{id}/summary", summaryHandler(deps))
	r.Get("/api/documents/{id}/progress", progressHandler(deps))
	r.Get("/api/documents/{id}/chunks", chunksHandler(deps))
	r.Post("/api/summarize", summarizeHandler(deps, summarizer))
	r.Get("/healthz", httputil.HealthHandler(deps))
	if deps.Registry != nil {
		r.Handle("/metrics", httputil.MetricsHandler(deps))
	}
	return r
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		// Chunked bodies carry no length; cap what the form parser may read.
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)

		file, header, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusBadRequest)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		kind, err := extract.DetectKind(header.Header.Get("Content-Type"), header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		if int64(len(content)) > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		text, err := extract.Text(kind, content)
		if err != nil {
			message := "could not extract text from file"
			if errors.Is(err, extract.ErrEmptyText) {
				message = extract.ErrEmptyText.Error()
			}
			httputil.Fail(deps.Log.With("filename", header.Filename, "kind", kind), w, message, err, http.StatusUnprocessableEntity)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, header.Filename, kind.ContentType())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(queue.SummarizePayload{
			DocumentID: doc.ID,
			Filename:   header.Filename,
			Content:    text,
		})
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeSummarize, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		deps.Log.Info("document accepted", "document_id", doc.ID, "kind", kind, "bytes", len(content))
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id":    doc.ID.String(),
			"status":         doc.Status,
			"original_words": summarize.CountWords(text),
			"preview":        extract.Preview(text, extract.DefaultPreviewLength),
		})
	}
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

// loadDocument resolves the {id} URL parameter, writing the error response itself on failure.
func loadDocument(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.Document, bool) {
	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
		return store.Document{}, false
	}
	doc, err := deps.Store.GetDocument(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		httputil.Fail(deps.Log, w, "document not found", err, http.StatusNotFound)
		return store.Document{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load document", err, http.StatusInternalServerError)
		return store.Document{}, false
	}
	return doc, true
}

func documentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadDocument(deps, w, r)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id":  doc.ID.String(),
			"filename":     doc.Filename,
			"content_type": doc.ContentType,
			"status":       doc.Status,
			"created_at":   doc.CreatedAt,
		})
	}
}

func summaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadDocument(deps, w, r)
		if !ok {
			return
		}
		if doc.Status != store.StatusReady {
			httputil.Fail(deps.Log.With("document_id", doc.ID, "status", doc.Status), w, "summary not ready", nil, http.StatusNotFound)
			return
		}
		sum, err := deps.Store.GetSummary(r.Context(), doc.ID)
		if errors.Is(err, store.ErrSummaryNotFound) {
			httputil.Fail(deps.Log.With("document_id", doc.ID), w, "summary not ready", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load summary", err, http.StatusInternalServerError)
			return
		}
		fallback := sum.FallbackChunks
		if fallback == nil {
			fallback = []int{}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id":     doc.ID.String(),
			"summary":         sum.Summary,
			"available":       sum.Summary != "",
			"stats":           newStatsResponse(summarize.NewStats(sum.OriginalWords, sum.SummaryWords)),
			"fallback_chunks": fallback,
		})
	}
}

func progressHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadDocument(deps, w, r)
		if !ok {
			return
		}
		progress := 0.0
		switch doc.Status {
		case store.StatusReady:
			progress = 1
		default:
			fraction, found, err := deps.Cache.GetProgress(r.Context(), doc.ID)
			if err != nil {
				deps.Log.Warn("failed to read progress", "document_id", doc.ID, "err", err)
			} else if found {
				progress = fraction
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
			"progress":    progress,
		})
	}
}

type chunkResponse struct {
	Index     int    `json:"index"`
	WordCount int    `json:"word_count"`
	Outcome   string `json:"outcome"`
	Summary   string `json:"summary"`
}

func chunksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadDocument(deps, w, r)
		if !ok {
			return
		}
		chunks, err := deps.Store.ListChunks(r.Context(), doc.ID)
		if err != nil {
			httputil.Fail(deps.Log.With("document_id", doc.ID), w, "failed to load chunks", err, http.StatusInternalServerError)
			return
		}
		out := make([]chunkResponse, 0, len(chunks))
		for _, c := range chunks {
			out = append(out, chunkResponse{
				Index:     c.Index,
				WordCount: c.WordCount,
				Outcome:   c.Outcome,
				Summary:   c.Summary,
			})
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
			"chunks":      out,
		})
	}
}

func summarizeHandler(deps app.Deps, summarizer textSummarizer) http.HandlerFunc {
	maxLength := deps.Config.MaxSyncTextLength

	return func(w http.ResponseWriter, r *http.Request) {
		if maxLength > 0 {
			// A JSON-escaped character takes at most 6 bytes.
			r.Body = http.MaxBytesReader(w, r.Body, int64(maxLength)*6+1024)
		}
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("text too long (max %d characters); upload it as a document", maxLength), err, http.StatusRequestEntityTooLarge)
				return
			}
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if maxLength > 0 && len([]rune(req.Text)) > maxLength {
			httputil.Fail(deps.Log, w, fmt.Sprintf("text too long (max %d characters); upload it as a document", maxLength), nil, http.StatusRequestEntityTooLarge)
			return
		}

		res, err := summarizer.Summarize(r.Context(), req.Text, nil)
		if err != nil {
			httputil.Fail(deps.Log, w, "summarization failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"summary":   res.Summary,
			"available": res.Available(),
			"stats":     newStatsResponse(summarize.ComputeStats(req.Text, res.Summary)),
		})
	}
}
