package summarize

// ProgressObserver receives the fraction of chunks processed, in [0,1], once per chunk.
// It is called synchronously from the orchestration loop and must return quickly.
// A returned error aborts the request.
type ProgressObserver interface {
	ReportProgress(fraction float64) error
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(fraction float64) error

func (f ProgressFunc) ReportProgress(fraction float64) error {
	return f(fraction)
}

type noProgress struct{}

func (noProgress) ReportProgress(float64) error { return nil }
