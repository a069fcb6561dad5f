// Package source picks the first origin that yields parseable records.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
)

// DefaultOrigins is the fixed set of known mirror domains, in priority
// order. Mirrors serve equivalent content with different markup.
var DefaultOrigins = []string{
	"https://kolkataff.tv/",
	"https://kolkataff.fun/",
	"https://kolkataff.co.in/",
}

// Candidates builds the priority-ordered candidate list. An explicit
// override collapses the list to a single origin.
func Candidates(override string, mirrors []string) []string {
	if override != "" {
		return []string{override}
	}
	if len(mirrors) > 0 {
		return mirrors
	}
	return DefaultOrigins
}

// Resolution pairs the winning origin with its fetched body and records.
type Resolution struct {
	URL     string
	Body    string
	Records []draw.Candidate
}

// Selector iterates candidate origins, delegating to the fetcher and
// extractor per candidate and stopping at the first parseable success.
type Selector struct {
	fetcher   draw.Fetcher
	extractor draw.Extractor
	logger    *zap.Logger
}

// New builds a Selector.
func New(fetcher draw.Fetcher, extractor draw.Extractor, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{fetcher: fetcher, extractor: extractor, logger: logger}
}

// Resolve returns the first origin that yields at least one parsed record.
// Fetch or extraction failures are logged and the next candidate is tried;
// when every candidate fails the last error is wrapped in a
// *draw.AllSourcesExhaustedError.
func (s *Selector) Resolve(ctx context.Context, candidates []string) (Resolution, error) {
	var lastErr error
	for _, origin := range candidates {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		body, err := s.fetcher.Fetch(ctx, origin)
		if err != nil {
			lastErr = err
			s.logger.Warn("origin fetch failed",
				zap.String("origin", origin), zap.Error(err))
			continue
		}
		records, err := s.extractor.Extract(body)
		if err != nil {
			lastErr = err
			s.logger.Warn("origin yielded no records",
				zap.String("origin", origin), zap.Error(err))
			continue
		}
		return Resolution{URL: origin, Body: body, Records: records}, nil
	}
	return Resolution{}, &draw.AllSourcesExhaustedError{Err: lastErr}
}
