package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foxSentence = "The quick brown fox jumps over the lazy dog."

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func foxText(n int) string {
	return strings.TrimSpace(strings.Repeat(foxSentence+" ", n))
}

// progressLog records every reported fraction.
type progressLog struct {
	values []float64
}

func (p *progressLog) ReportProgress(f float64) error {
	p.values = append(p.values, f)
	return nil
}

// countingRecorder is an in-memory metrics.Recorder.
type countingRecorder struct {
	mu       sync.Mutex
	chunks   map[string]int
	requests map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{chunks: map[string]int{}, requests: map[string]int{}}
}

func (r *countingRecorder) ChunkProcessed(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks[outcome]++
}

func (r *countingRecorder) RequestCompleted(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[status]++
}

func constAdapter(summary string) Adapter {
	return AdapterFunc(func(context.Context, string) (string, error) { return summary, nil })
}

func newTestOrchestrator(a Adapter) *Orchestrator {
	return NewOrchestrator(a, DefaultOptions(), discardLogger(), nil)
}

func TestSummarizeShortTextReturnedUnchanged(t *testing.T) {
	calls := 0
	adapter := AdapterFunc(func(context.Context, string) (string, error) {
		calls++
		return "SUM", nil
	})
	o := newTestOrchestrator(adapter)

	inputs := []string{
		"Short text here.",
		"",
		"   ",
		strings.TrimSpace(strings.Repeat("word ", 49)),
	}
	for _, in := range inputs {
		progress := &progressLog{}
		res, err := o.Summarize(context.Background(), in, progress)

		require.NoError(t, err)
		assert.Equal(t, in, res.Summary)
		assert.True(t, res.ShortCircuited)
		assert.Empty(t, progress.values, "progress must not be reported for short input")
	}
	assert.Zero(t, calls)
}

func TestSummarizeRepeatedSentences(t *testing.T) {
	var seen []string
	adapter := AdapterFunc(func(_ context.Context, chunk string) (string, error) {
		seen = append(seen, chunk)
		return "SUM", nil
	})
	o := newTestOrchestrator(adapter)
	progress := &progressLog{}

	res, err := o.Summarize(context.Background(), foxText(60), progress)

	require.NoError(t, err)
	assert.Equal(t, "SUM SUM SUM", res.Summary)
	assert.False(t, res.ShortCircuited)
	assert.True(t, res.Available())
	assert.Len(t, seen, 3)
	require.Len(t, res.Chunks, 3)
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, OutcomeSummarized, c.Outcome)
	}
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1.0}, progress.values, 1e-9)
}

func TestSummarizeFallbackOnSecondChunk(t *testing.T) {
	call := 0
	adapter := AdapterFunc(func(_ context.Context, chunk string) (string, error) {
		call++
		if call == 2 {
			return "", &SummarizationError{Err: errors.New("out of memory")}
		}
		return fmt.Sprintf("S%d", call), nil
	})
	o := newTestOrchestrator(adapter)

	res, err := o.Summarize(context.Background(), foxText(60), nil)
	require.NoError(t, err)

	parts := strings.SplitN(res.Summary, " ", 2)
	require.Equal(t, "S1", parts[0])
	require.True(t, strings.HasSuffix(res.Summary, " S3"))

	fallback := res.Chunks[1].Summary
	assert.Equal(t, OutcomeFallback, res.Chunks[1].Outcome)
	assert.LessOrEqual(t, utf8.RuneCountInString(fallback), 203)
	assert.True(t, strings.HasSuffix(fallback, "..."))
	assert.True(t, strings.HasPrefix(res.Chunks[1].Text, strings.TrimSuffix(fallback, "...")))
	assert.Equal(t, "S1 "+fallback+" S3", res.Summary)
	assert.Equal(t, []int{1}, res.FallbackIndexes())
}

func TestSummarizeAllChunksFail(t *testing.T) {
	adapter := AdapterFunc(func(context.Context, string) (string, error) {
		return "", &SummarizationError{Err: errors.New("model unavailable")}
	})
	rec := newCountingRecorder()
	o := NewOrchestrator(adapter, DefaultOptions(), discardLogger(), rec)
	progress := &progressLog{}

	res, err := o.Summarize(context.Background(), foxText(60), progress)

	require.NoError(t, err)
	require.Len(t, res.Chunks, 3)
	var want []string
	for _, c := range res.Chunks {
		assert.Equal(t, OutcomeFallback, c.Outcome)
		want = append(want, Fallback(c.Text, DefaultFallbackTruncationLength))
	}
	assert.Equal(t, strings.Join(want, " "), res.Summary)
	assert.Equal(t, 1.0, progress.values[len(progress.values)-1])
	assert.Equal(t, 3, rec.chunks["fallback"])
	assert.Equal(t, 1, rec.requests["ok"])
}

func TestSummarizeSkipsLowWordChunks(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("lorem ", 60))
	text := long + ". Tiny closing bit."

	adapter := AdapterFunc(func(context.Context, string) (string, error) {
		return "", errors.New("always failing")
	})
	o := NewOrchestrator(adapter, Options{MaxChunkLength: 100}, discardLogger(), nil)
	progress := &progressLog{}

	res, err := o.Summarize(context.Background(), text, progress)

	require.NoError(t, err)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, OutcomeFallback, res.Chunks[0].Outcome)
	assert.Equal(t, OutcomeSkipped, res.Chunks[1].Outcome)
	assert.Empty(t, res.Chunks[1].Summary)
	assert.NotContains(t, res.Summary, "Tiny")
	assert.Equal(t, []float64{0.5, 1.0}, progress.values)
}

func TestSummarizeAllChunksSkippedYieldsEmptySummary(t *testing.T) {
	// Sixty words spread over short sentences that each land in their own chunk.
	text := strings.TrimSpace(strings.Repeat("one two three four five six. ", 10))
	calls := 0
	adapter := AdapterFunc(func(context.Context, string) (string, error) {
		calls++
		return "SUM", nil
	})
	o := NewOrchestrator(adapter, Options{MaxChunkLength: 10}, discardLogger(), nil)

	res, err := o.Summarize(context.Background(), text, nil)

	require.NoError(t, err)
	assert.Equal(t, "", res.Summary)
	assert.False(t, res.Available())
	assert.Zero(t, calls)
	assert.Len(t, res.Chunks, 10)
}

func TestSummarizeProgressIsMonotonic(t *testing.T) {
	progress := &progressLog{}
	o := NewOrchestrator(constAdapter("x"), Options{MaxChunkLength: 200}, discardLogger(), nil)

	_, err := o.Summarize(context.Background(), foxText(80), progress)

	require.NoError(t, err)
	require.NotEmpty(t, progress.values)
	for i := 1; i < len(progress.values); i++ {
		assert.GreaterOrEqual(t, progress.values[i], progress.values[i-1])
	}
	assert.Equal(t, 1.0, progress.values[len(progress.values)-1])
	for _, v := range progress.values {
		assert.True(t, v > 0 && v <= 1, "progress %v out of range", v)
	}
}

func TestSummarizeObserverFailureIsFatal(t *testing.T) {
	o := newTestOrchestrator(constAdapter("SUM"))
	observer := ProgressFunc(func(float64) error { return errors.New("display gone") })

	res, err := o.Summarize(context.Background(), foxText(60), observer)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSummarizationFailed)
	assert.Empty(t, res.Summary)
}

func TestSummarizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	adapter := AdapterFunc(func(ctx context.Context, _ string) (string, error) {
		cancel()
		return "", &SummarizationError{Err: ctx.Err()}
	})
	rec := newCountingRecorder()
	o := NewOrchestrator(adapter, DefaultOptions(), discardLogger(), rec)

	_, err := o.Summarize(ctx, foxText(60), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSummarizationFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rec.requests["failed"])
}

func TestSummarizeRecoversFromPanic(t *testing.T) {
	adapter := AdapterFunc(func(context.Context, string) (string, error) {
		panic("corrupted state")
	})
	o := newTestOrchestrator(adapter)

	res, err := o.Summarize(context.Background(), foxText(60), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSummarizationFailed)
	assert.Empty(t, res.Chunks)
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		n     int
		want  string
	}{
		{"shorter than limit", "abc", 200, "abc..."},
		{"truncated", "abcdef", 3, "abc..."},
		{"counts characters not bytes", "ééééé", 2, "éé..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.chunk, tt.n))
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	assert.Equal(t, DefaultOptions(), got)

	custom := Options{MaxChunkLength: 10, MinWordsForSummarization: 5, MinWordsPerChunk: 2, FallbackTruncationLength: 20}
	assert.Equal(t, custom, custom.withDefaults())

	negative := Options{MinWordsForSummarization: -1}.withDefaults()
	assert.Equal(t, DefaultMinWordsForSummarization, negative.MinWordsForSummarization)
}

func TestSummarizeMinWordsOneDisablesShortCircuit(t *testing.T) {
	opts := DefaultOptions()
	opts.MinWordsForSummarization = 1
	opts.MinWordsPerChunk = 2
	o := NewOrchestrator(constAdapter("SUM"), opts, discardLogger(), nil)

	res, err := o.Summarize(context.Background(), foxSentence, nil)

	require.NoError(t, err)
	assert.False(t, res.ShortCircuited)
	assert.Equal(t, "SUM", res.Summary)
}
