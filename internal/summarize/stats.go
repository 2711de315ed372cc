package summarize

import (
	"fmt"
	"strings"
)

// RatioUnavailable is shown when the original has no words.
const RatioUnavailable = "N/A"

// Stats describes a summary relative to its source.
type Stats struct {
	OriginalWords int
	SummaryWords  int
	// CompressionRatio is SummaryWords/OriginalWords; meaningless when RatioDefined is false.
	CompressionRatio float64
	RatioDefined     bool
}

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ComputeStats compares summary with original.
func ComputeStats(original, summary string) Stats {
	return NewStats(CountWords(original), CountWords(summary))
}

// NewStats builds Stats from word counts that were recorded earlier.
func NewStats(originalWords, summaryWords int) Stats {
	s := Stats{OriginalWords: originalWords, SummaryWords: summaryWords}
	if originalWords > 0 {
		s.CompressionRatio = float64(summaryWords) / float64(originalWords)
		s.RatioDefined = true
	}
	return s
}

// FormatRatio renders the ratio as a percentage with one decimal place, e.g. "20.0%".
func (s Stats) FormatRatio() string {
	if !s.RatioDefined {
		return RatioUnavailable
	}
	return fmt.Sprintf("%.1f%%", s.CompressionRatio*100)
}
