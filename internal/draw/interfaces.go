package draw

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns the raw page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor derives candidate records from a raw page body.
type Extractor interface {
	Extract(body string) ([]Candidate, error)
}

// Store persists draw records keyed by their unique signature.
type Store interface {
	// Insert persists the record and reports whether it was new.
	// A duplicate signature returns (false, nil).
	Insert(ctx context.Context, rec Record) (bool, error)
	Latest(ctx context.Context) (*StoredRecord, error)
	ByDate(ctx context.Context, date string) ([]StoredRecord, error)
	Past(ctx context.Context, days int) ([]StoredRecord, error)
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

// Notifier delivers a plain-text message downstream. Delivery is
// best-effort; persistence is authoritative.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
