package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*PostgresStore)(nil)

func TestIntConversions(t *testing.T) {
	assert.Equal(t, []int64{}, toInt64s(nil))
	assert.Equal(t, []int64{0, 2, 5}, toInt64s([]int{0, 2, 5}))
	assert.Equal(t, []int{0, 2, 5}, toInts([]int64{0, 2, 5}))
}

// Runs against a live Postgres when DB_TEST_URL is set.
func TestPostgresStoreLifecycle(t *testing.T) {
	dsn := os.Getenv("DB_TEST_URL")
	if dsn == "" {
		t.Skip("DB_TEST_URL not set")
	}
	s, err := NewPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	doc, err := s.CreateDocument(ctx, "report.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, doc.Status)

	_, err = s.GetSummary(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrSummaryNotFound)

	chunks := []Chunk{
		{Index: 0, Text: "first", WordCount: 1, Summary: "s0", Outcome: "summarized"},
		{Index: 1, Text: "second", WordCount: 1, Summary: "second...", Outcome: "fallback"},
	}
	_, err = s.SaveChunks(ctx, doc.ID, chunks)
	require.NoError(t, err)
	// Saving again replaces rather than appends.
	_, err = s.SaveChunks(ctx, doc.ID, chunks)
	require.NoError(t, err)

	listed, err := s.ListChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "fallback", listed[1].Outcome)

	require.NoError(t, s.SaveSummary(ctx, doc.ID, Summary{
		Summary: "s0 second...", OriginalWords: 2, SummaryWords: 2, FallbackChunks: []int{1},
	}))
	require.NoError(t, s.UpdateDocumentStatus(ctx, doc.ID, StatusReady))

	sum, err := s.GetSummary(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, sum.FallbackChunks)

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	assert.Equal(t, "application/pdf", got.ContentType)
}
