package summarize

import "errors"

// ErrSummarizationFailed marks a whole-request failure. No partial result accompanies it.
var ErrSummarizationFailed = errors.New("summarization failed")

// SummarizationError is a single chunk's model failure. The orchestrator
// recovers from it by substituting a truncated fallback.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	if e.Err == nil {
		return "summarize chunk"
	}
	return "summarize chunk: " + e.Err.Error()
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}
