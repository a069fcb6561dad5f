package draw

import "fmt"

// FetchError reports a fetch that failed after exhausting its retry budget.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AllSourcesExhaustedError reports that every candidate origin failed this
// run. Err carries the last error observed.
type AllSourcesExhaustedError struct {
	Err error
}

func (e *AllSourcesExhaustedError) Error() string {
	return fmt.Sprintf("all sources exhausted: %v", e.Err)
}

func (e *AllSourcesExhaustedError) Unwrap() error { return e.Err }

// ExtractionError reports a page with no recognizable draw record.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extract: " + e.Reason
}
