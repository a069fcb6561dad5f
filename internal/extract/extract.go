// Package extract derives draw records from raw result pages.
//
// The source site publishes results as loosely structured HTML with no
// stable schema, and its mirrors disagree on markup. Extraction therefore
// runs an ordered list of heuristics: date-anchored sections with numeric
// pairing, then a labeled-result scan over known content containers, then
// numeric pairing over the first non-empty container block.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/normalize"
)

// Extractor turns a raw page body into ordered candidate records.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New builds an Extractor with the default strategy order. The schedule
// supplies synthesized draw times for layouts that omit them.
func New(schedule normalize.Schedule, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		strategies: []Strategy{
			dateSections{schedule: schedule},
			labeledResult{},
			blockNumeric{schedule: schedule},
		},
		logger: logger,
	}
}

// Extract parses the body and tries each strategy in order, returning the
// first non-empty candidate list. Records preserve page order: date
// headings as they appear, numeric pairs within a heading in reading
// order. Extraction is deterministic for a given body.
func (e *Extractor) Extract(body string) ([]draw.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &draw.ExtractionError{Reason: "unparseable html: " + err.Error()}
	}
	p := &page{
		doc:   doc,
		lines: documentLines(doc),
	}
	for _, strat := range e.strategies {
		candidates := strat.Extract(p)
		if len(candidates) == 0 {
			continue
		}
		e.logger.Debug("extraction strategy matched",
			zap.String("strategy", strat.Name()),
			zap.Int("records", len(candidates)),
		)
		return candidates, nil
	}
	return nil, &draw.ExtractionError{Reason: "no parseable result"}
}
