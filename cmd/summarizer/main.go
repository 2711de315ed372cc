package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"doc-summarizer/internal/app"
	"doc-summarizer/internal/cache"
	"doc-summarizer/internal/httputil"
	"doc-summarizer/internal/queue"
	"doc-summarizer/internal/store"
	"doc-summarizer/internal/summarize"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("summarizer worker starting")

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(sigCtx)

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSummarize, func(ctx context.Context, task queue.Task) error {
			var payload queue.SummarizePayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				deps.Log.Error("dropping undecodable task", "id", task.ID, "err", err)
				return nil
			}
			return handleSummarize(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "summarizer")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("summarizer service stopped", "err", err)
	}
}

// handleSummarize runs one document through the orchestrator and persists the outcome.
// A whole-request summarization failure marks the document failed and is not retried;
// storage errors are returned so the queue retries the task.
func handleSummarize(ctx context.Context, deps app.Deps, payload queue.SummarizePayload) error {
	if payload.DocumentID == uuid.Nil {
		deps.Log.Error("dropping summarize task without document id", "filename", payload.Filename)
		return nil
	}
	docID := payload.DocumentID
	log := deps.Log.With("document_id", docID)
	start := time.Now()

	observer := &cacheProgress{
		ctx:   ctx,
		cache: deps.Cache,
		docID: docID,
		ttl:   deps.Config.ProgressDuration(),
		log:   log,
	}
	observer.publish(0)

	res, err := app.NewOrchestrator(deps).Summarize(ctx, payload.Content, observer)
	if err != nil {
		if !errors.Is(err, summarize.ErrSummarizationFailed) {
			return err
		}
		log.Error("summarization failed", "err", err)
		if upErr := deps.Store.UpdateDocumentStatus(context.WithoutCancel(ctx), docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
		return nil
	}

	chunks := make([]store.Chunk, 0, len(res.Chunks))
	for _, c := range res.Chunks {
		chunks = append(chunks, store.Chunk{
			Index:     c.Index,
			Text:      c.Text,
			WordCount: c.WordCount,
			Summary:   c.Summary,
			Outcome:   string(c.Outcome),
		})
	}
	if _, err := deps.Store.SaveChunks(ctx, docID, chunks); err != nil {
		return err
	}

	stats := summarize.ComputeStats(payload.Content, res.Summary)
	if err := deps.Store.SaveSummary(ctx, docID, store.Summary{
		DocumentID:     docID,
		Summary:        res.Summary,
		OriginalWords:  stats.OriginalWords,
		SummaryWords:   stats.SummaryWords,
		ShortCircuited: res.ShortCircuited,
		FallbackChunks: res.FallbackIndexes(),
	}); err != nil {
		return err
	}

	if err := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusReady); err != nil {
		return err
	}
	log.Info("document summarized",
		"chunks", len(res.Chunks),
		"fallback_chunks", len(res.FallbackIndexes()),
		"short_circuited", res.ShortCircuited,
		"compression", stats.FormatRatio(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// cacheProgress publishes progress to the cache. Publishing is best effort:
// a cache outage must not fail the document.
type cacheProgress struct {
	ctx   context.Context
	cache cache.Cache
	docID uuid.UUID
	ttl   time.Duration
	log   *slog.Logger
}

func (p *cacheProgress) ReportProgress(fraction float64) error {
	p.publish(fraction)
	return nil
}

func (p *cacheProgress) publish(fraction float64) {
	if err := p.cache.SetProgress(p.ctx, p.docID, fraction, p.ttl); err != nil {
		p.log.Warn("failed to publish progress", "progress", fraction, "err", err)
	}
}
