// Package draw defines core types shared across the scrape pipeline.
package draw

// Candidate is a record as extracted from a page, before a signature is
// assigned. DrawTime may be empty when the source omits per-draw times and
// no schedule is configured.
type Candidate struct {
	DrawDate   string
	DrawTime   string
	ResultText string
}

// Record is a complete draw record ready for persistence.
type Record struct {
	Source     string `json:"source"`
	DrawDate   string `json:"draw_date"`
	DrawTime   string `json:"draw_time,omitempty"`
	ResultText string `json:"result_text"`
	Signature  string `json:"signature"`
}

// StoredRecord is a Record as read back from the store.
type StoredRecord struct {
	ID        int64 `json:"id"`
	Record
	CreatedAt int64 `json:"created_at"`
}

// RunReport summarizes one pipeline run for logging and observability.
type RunReport struct {
	Origin     string
	Extracted  int
	Planned    int
	Accepted   int
	Duplicates int
	Deleted    int64
}
