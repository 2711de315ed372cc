package summarize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		summary   string
		wantOrig  int
		wantSum   int
		wantRatio string
	}{
		{
			name:      "twenty percent",
			original:  strings.Repeat("word ", 100),
			summary:   strings.Repeat("word ", 20),
			wantOrig:  100,
			wantSum:   20,
			wantRatio: "20.0%",
		},
		{
			name:      "empty original",
			original:  "",
			summary:   "",
			wantRatio: RatioUnavailable,
		},
		{
			name:      "one third",
			original:  "a b c",
			summary:   "a",
			wantOrig:  3,
			wantSum:   1,
			wantRatio: "33.3%",
		},
		{
			name:      "whitespace runs count once",
			original:  "a \t b\n\nc  d",
			summary:   "a b",
			wantOrig:  4,
			wantSum:   2,
			wantRatio: "50.0%",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeStats(tt.original, tt.summary)
			assert.Equal(t, tt.wantOrig, s.OriginalWords)
			assert.Equal(t, tt.wantSum, s.SummaryWords)
			assert.Equal(t, tt.wantRatio, s.FormatRatio())
		})
	}
}

func TestSummarizationErrorUnwrap(t *testing.T) {
	cause := errors.New("cuda oom")
	err := error(&SummarizationError{Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cuda oom")
}

func TestNewStatsMatchesComputeStats(t *testing.T) {
	original := strings.Repeat("alpha beta ", 25)
	summary := "alpha beta gamma"

	assert.Equal(t, ComputeStats(original, summary), NewStats(50, 3))
	assert.Equal(t, "6.0%", NewStats(50, 3).FormatRatio())
	assert.False(t, NewStats(0, 3).RatioDefined)
}
