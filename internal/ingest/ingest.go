// Package ingest orders and filters extracted records for persistence and
// notification.
package ingest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
)

// Policy decides which extracted records get persisted and notified, and
// in what order.
type Policy struct {
	store    draw.Store
	notifier draw.Notifier
	clock    draw.Clock
	logger   *zap.Logger
}

// New builds a Policy. notifier may be nil to disable notifications.
func New(store draw.Store, notifier draw.Notifier, clock draw.Clock, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{store: store, notifier: notifier, clock: clock, logger: logger}
}

// Plan filters and orders records for persistence. Records arrive in
// as-extracted order, newest draw first. With backfillDays > 0, records
// older than the backfill window are dropped; a record whose date does not
// parse is conservatively kept. With sendAll false only the newest draw
// survives. The returned batch is reversed to oldest-first so downstream
// notifications read chronologically.
func (p *Policy) Plan(records []draw.Record, backfillDays int, sendAll bool) []draw.Record {
	kept := records
	if backfillDays > 0 {
		today := p.clock.Now().Truncate(24 * time.Hour)
		oldest := today.AddDate(0, 0, -backfillDays-1)
		kept = make([]draw.Record, 0, len(records))
		for _, rec := range records {
			parsed, err := time.Parse("2006-01-02", rec.DrawDate)
			if err == nil && parsed.Before(oldest) {
				p.logger.Debug("record outside backfill window",
					zap.String("draw_date", rec.DrawDate))
				continue
			}
			kept = append(kept, rec)
		}
	}
	if !sendAll && len(kept) > 1 {
		kept = kept[:1]
	}

	planned := make([]draw.Record, len(kept))
	for i, rec := range kept {
		planned[len(kept)-1-i] = rec
	}
	return planned
}

// Commit hands each planned record to the store and notifies for the ones
// the store accepted. A duplicate signature is expected and counted, never
// escalated; notification failures are logged, not retried.
func (p *Policy) Commit(ctx context.Context, planned []draw.Record) (accepted, duplicates int) {
	for _, rec := range planned {
		ok, err := p.store.Insert(ctx, rec)
		if err != nil {
			p.logger.Error("insert failed",
				zap.String("signature", rec.Signature), zap.Error(err))
			continue
		}
		if !ok {
			duplicates++
			p.logger.Debug("duplicate record skipped",
				zap.String("signature", rec.Signature))
			continue
		}
		accepted++
		p.logger.Info("record inserted",
			zap.String("draw_date", rec.DrawDate),
			zap.String("draw_time", rec.DrawTime),
			zap.String("signature", rec.Signature),
		)
		p.notify(ctx, rec)
	}
	return accepted, duplicates
}

func (p *Policy) notify(ctx context.Context, rec draw.Record) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Send(ctx, FormatMessage(rec)); err != nil {
		p.logger.Warn("notification failed",
			zap.String("signature", rec.Signature), zap.Error(err))
	}
}

// FormatMessage renders the plain-text notification for a new draw.
func FormatMessage(rec draw.Record) string {
	lines := []string{"Kolkata FF Update", "Date: " + rec.DrawDate}
	if rec.DrawTime != "" {
		lines = append(lines, "Time: "+rec.DrawTime)
	}
	lines = append(lines, "Result: "+rec.ResultText)
	return strings.Join(lines, "\n")
}
