package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"doc-summarizer/internal/chunker"
	"doc-summarizer/internal/metrics"
)

const (
	DefaultMinWordsForSummarization = 50
	DefaultMinWordsPerChunk         = 10
	DefaultFallbackTruncationLength = 200

	fallbackSuffix = "..."
)

// Options tunes the orchestration. Zero values take the defaults.
type Options struct {
	// MaxChunkLength is the chunker budget in characters.
	MaxChunkLength int
	// MinWordsForSummarization: texts with fewer words are returned verbatim.
	// Zero means the default; 1 summarizes every non-empty text.
	MinWordsForSummarization int
	// MinWordsPerChunk: chunks with this many words or fewer are skipped.
	MinWordsPerChunk int
	// FallbackTruncationLength is the number of characters kept when a chunk fails.
	FallbackTruncationLength int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		MaxChunkLength:           chunker.DefaultMaxLength,
		MinWordsForSummarization: DefaultMinWordsForSummarization,
		MinWordsPerChunk:         DefaultMinWordsPerChunk,
		FallbackTruncationLength: DefaultFallbackTruncationLength,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxChunkLength <= 0 {
		o.MaxChunkLength = d.MaxChunkLength
	}
	if o.MinWordsForSummarization <= 0 {
		o.MinWordsForSummarization = d.MinWordsForSummarization
	}
	if o.MinWordsPerChunk <= 0 {
		o.MinWordsPerChunk = d.MinWordsPerChunk
	}
	if o.FallbackTruncationLength <= 0 {
		o.FallbackTruncationLength = d.FallbackTruncationLength
	}
	return o
}

// Outcome is what happened to one chunk.
type Outcome string

const (
	OutcomeSummarized Outcome = "summarized"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFallback   Outcome = "fallback"
)

// ChunkResult records one chunk's processing.
type ChunkResult struct {
	Index     int
	Text      string
	WordCount int
	// Summary is empty for skipped chunks.
	Summary string
	Outcome Outcome
}

// Result is the outcome of one Summarize call.
type Result struct {
	// Summary is the joined chunk summaries, or the input itself when ShortCircuited.
	// An empty Summary means no summary is available.
	Summary        string
	ShortCircuited bool
	Chunks         []ChunkResult
}

// Available reports whether the result carries any summary text.
func (r Result) Available() bool {
	return strings.TrimSpace(r.Summary) != ""
}

// FallbackIndexes lists chunks that were replaced by their truncated text.
func (r Result) FallbackIndexes() []int {
	var out []int
	for _, c := range r.Chunks {
		if c.Outcome == OutcomeFallback {
			out = append(out, c.Index)
		}
	}
	return out
}

// Orchestrator turns long text into a summary chunk by chunk.
// Chunks are processed strictly in order, one adapter call at a time.
type Orchestrator struct {
	adapter Adapter
	opts    Options
	log     *slog.Logger
	metrics metrics.Recorder
}

// NewOrchestrator builds an Orchestrator. log and rec may be nil.
func NewOrchestrator(adapter Adapter, opts Options, log *slog.Logger, rec metrics.Recorder) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Orchestrator{adapter: adapter, opts: opts.withDefaults(), log: log, metrics: rec}
}

// Summarize summarizes text, reporting progress to observer (which may be nil).
//
// Inputs under MinWordsForSummarization words come back unchanged without any
// progress report. Per-chunk model failures are absorbed with a truncated
// fallback. Only cancellation, a failing observer, or an internal fault end the
// request, as an error wrapping ErrSummarizationFailed.
func (o *Orchestrator) Summarize(ctx context.Context, text string, observer ProgressObserver) (res Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("summarization panicked", "panic", r)
			res, err = Result{}, fmt.Errorf("%w: panic: %v", ErrSummarizationFailed, r)
		}
		status := "ok"
		if err != nil {
			status = "failed"
		}
		o.metrics.RequestCompleted(status, time.Since(start))
	}()

	if observer == nil {
		observer = noProgress{}
	}

	words := CountWords(text)
	if words < o.opts.MinWordsForSummarization {
		o.log.Debug("text below summarization threshold, returning as is", "words", words)
		return Result{Summary: text, ShortCircuited: true}, nil
	}

	chunks := chunker.ChunkText(text, chunker.Options{MaxLength: o.opts.MaxChunkLength})
	if len(chunks) == 0 {
		o.log.Warn("chunker produced no chunks", "words", words)
		return Result{}, nil
	}

	total := len(chunks)
	results := make([]ChunkResult, 0, total)
	summaries := make([]string, 0, total)
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
		}

		cr, err := o.summarizeChunk(ctx, c)
		if err != nil {
			return Result{}, err
		}
		results = append(results, cr)
		if cr.Outcome != OutcomeSkipped {
			summaries = append(summaries, cr.Summary)
		}
		o.metrics.ChunkProcessed(string(cr.Outcome))

		if err := observer.ReportProgress(float64(i+1) / float64(total)); err != nil {
			return Result{}, fmt.Errorf("%w: report progress: %w", ErrSummarizationFailed, err)
		}
	}

	return Result{Summary: strings.Join(summaries, " "), Chunks: results}, nil
}

func (o *Orchestrator) summarizeChunk(ctx context.Context, c chunker.Chunk) (ChunkResult, error) {
	cr := ChunkResult{Index: c.Index, Text: c.Text, WordCount: c.WordCount}
	if c.WordCount <= o.opts.MinWordsPerChunk {
		cr.Outcome = OutcomeSkipped
		return cr, nil
	}

	summary, err := o.adapter.SummarizeChunk(ctx, c.Text)
	if err == nil {
		cr.Summary = summary
		cr.Outcome = OutcomeSummarized
		return cr, nil
	}
	// A model error caused by our own cancellation is not a chunk failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cr, fmt.Errorf("%w: %w", ErrSummarizationFailed, ctxErr)
	}

	o.log.Warn("chunk summarization failed, using truncated text",
		"chunk", c.Index,
		"words", c.WordCount,
		"err", err,
	)
	cr.Summary = Fallback(c.Text, o.opts.FallbackTruncationLength)
	cr.Outcome = OutcomeFallback
	return cr, nil
}

// Fallback returns the first n characters of chunk followed by an ellipsis.
func Fallback(chunk string, n int) string {
	if utf8.RuneCountInString(chunk) > n {
		chunk = string([]rune(chunk)[:n])
	}
	return chunk + fallbackSuffix
}
