// Package pipeline executes one scheduled scrape run: resolve a source,
// sign and dedupe the extracted records, persist and notify the new ones,
// then age out old rows.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/ingest"
	"github.com/drawfeed/drawfeed/internal/metrics"
	"github.com/drawfeed/drawfeed/internal/sign"
	"github.com/drawfeed/drawfeed/internal/snapshot"
	"github.com/drawfeed/drawfeed/internal/source"
)

// Options carries the per-run knobs from configuration.
type Options struct {
	SourceURL     string
	Mirrors       []string
	BackfillDays  int
	SendAll       bool
	RetentionDays int
}

// Pipeline wires the scrape stages together. Each Run constructs fresh
// record lists; no state crosses runs.
type Pipeline struct {
	selector  *source.Selector
	signer    *sign.Signer
	policy    *ingest.Policy
	store     draw.Store
	snapshots *snapshot.Writer
	opts      Options
	logger    *zap.Logger
}

// New builds a Pipeline. snapshots may be nil to disable HTML archiving.
func New(
	selector *source.Selector,
	signer *sign.Signer,
	policy *ingest.Policy,
	store draw.Store,
	snapshots *snapshot.Writer,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		selector:  selector,
		signer:    signer,
		policy:    policy,
		store:     store,
		snapshots: snapshots,
		opts:      opts,
		logger:    logger,
	}
}

// Run executes one scrape pass. The returned error reports total failure
// (no origin yielded records); callers treat it as recoverable and wait
// for the next scheduler cadence.
func (p *Pipeline) Run(ctx context.Context) (draw.RunReport, error) {
	logger := p.logger.With(zap.String("run_id", runID()))

	res, err := p.selector.Resolve(ctx, source.Candidates(p.opts.SourceURL, p.opts.Mirrors))
	if err != nil {
		logger.Error("no source yielded records", zap.Error(err))
		metrics.ObserveRun(false, 0, 0, 0)
		return draw.RunReport{}, err
	}
	logger.Info("source resolved",
		zap.String("origin", res.URL),
		zap.Int("extracted", len(res.Records)),
	)

	if p.snapshots != nil {
		if path, err := p.snapshots.Save(res.Body); err != nil {
			logger.Warn("snapshot failed", zap.Error(err))
		} else {
			logger.Debug("snapshot saved", zap.String("path", path))
		}
	}

	records := p.signed(res.URL, res.Records)
	planned := p.policy.Plan(records, p.opts.BackfillDays, p.opts.SendAll)
	accepted, duplicates := p.policy.Commit(ctx, planned)

	report := draw.RunReport{
		Origin:     res.URL,
		Extracted:  len(records),
		Planned:    len(planned),
		Accepted:   accepted,
		Duplicates: duplicates,
	}

	if p.opts.RetentionDays > 0 {
		deleted, err := p.store.Cleanup(ctx, p.opts.RetentionDays)
		if err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		} else {
			report.Deleted = deleted
		}
	}

	metrics.ObserveRun(true, report.Extracted, accepted, duplicates)
	logger.Info("run finished",
		zap.Int("planned", report.Planned),
		zap.Int("accepted", accepted),
		zap.Int("duplicates", duplicates),
		zap.Int64("deleted", report.Deleted),
	)
	return report, nil
}

// signed assigns content signatures and drops in-batch duplicates while
// preserving extraction order.
func (p *Pipeline) signed(origin string, candidates []draw.Candidate) []draw.Record {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]draw.Record, 0, len(candidates))
	for _, c := range candidates {
		sig := p.signer.Sign(c.DrawDate, c.DrawTime, c.ResultText)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, draw.Record{
			Source:     origin,
			DrawDate:   c.DrawDate,
			DrawTime:   c.DrawTime,
			ResultText: c.ResultText,
			Signature:  sig,
		})
	}
	return out
}

func runID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
