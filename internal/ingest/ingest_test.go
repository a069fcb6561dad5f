package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drawfeed/drawfeed/internal/draw"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type memStore struct {
	draw.Store
	seen      map[string]bool
	inserted  []draw.Record
	failOnSig string
}

func newMemStore() *memStore {
	return &memStore{seen: map[string]bool{}}
}

func (s *memStore) Insert(_ context.Context, rec draw.Record) (bool, error) {
	if rec.Signature == s.failOnSig {
		return false, errors.New("connection reset")
	}
	if s.seen[rec.Signature] {
		return false, nil
	}
	s.seen[rec.Signature] = true
	s.inserted = append(s.inserted, rec)
	return true, nil
}

type memNotifier struct {
	sent []string
	err  error
}

func (n *memNotifier) Send(_ context.Context, text string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, text)
	return nil
}

func feb10() fixedClock {
	return fixedClock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
}

func rec(date, sig string) draw.Record {
	return draw.Record{DrawDate: date, ResultText: "120-3", Signature: sig}
}

func TestPlanBackfillWindow(t *testing.T) {
	t.Parallel()

	p := New(newMemStore(), nil, feb10(), nil)
	records := []draw.Record{
		rec("2026-02-10", "a"),
		rec("2026-02-02", "b"),
		rec("2026-02-01", "c"),
		rec("unknown", "d"),
	}

	planned := p.Plan(records, 7, true)
	dates := make([]string, 0, len(planned))
	for _, r := range planned {
		dates = append(dates, r.DrawDate)
	}
	// 2026-02-01 is outside the window; the unparseable date is kept.
	// Output order is oldest-first for chronological notifications.
	require.Equal(t, []string{"unknown", "2026-02-02", "2026-02-10"}, dates)
}

func TestPlanZeroBackfillKeepsEverything(t *testing.T) {
	t.Parallel()

	p := New(newMemStore(), nil, feb10(), nil)
	planned := p.Plan([]draw.Record{rec("2020-01-01", "a"), rec("2026-02-10", "b")}, 0, true)
	require.Len(t, planned, 2)
}

func TestPlanNewestOnlyTruncation(t *testing.T) {
	t.Parallel()

	p := New(newMemStore(), nil, feb10(), nil)
	// Extraction order is newest-first on the page.
	planned := p.Plan([]draw.Record{rec("2026-02-10", "a"), rec("2026-02-09", "b")}, 7, false)
	require.Len(t, planned, 1)
	require.Equal(t, "2026-02-10", planned[0].DrawDate)
}

func TestCommitCountsAcceptedAndDuplicates(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.seen["dup"] = true
	notifier := &memNotifier{}
	p := New(store, notifier, feb10(), nil)

	accepted, duplicates := p.Commit(context.Background(), []draw.Record{
		rec("2026-02-09", "dup"),
		rec("2026-02-10", "new"),
	})
	require.Equal(t, 1, accepted)
	require.Equal(t, 1, duplicates)
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0], "Date: 2026-02-10")
}

func TestCommitInsertErrorDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.failOnSig = "bad"
	p := New(store, nil, feb10(), nil)

	accepted, duplicates := p.Commit(context.Background(), []draw.Record{
		rec("2026-02-09", "bad"),
		rec("2026-02-10", "good"),
	})
	require.Equal(t, 1, accepted)
	require.Equal(t, 0, duplicates)
	require.Len(t, store.inserted, 1)
}

func TestCommitNotifierFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := New(store, &memNotifier{err: errors.New("telegram 502")}, feb10(), nil)

	accepted, _ := p.Commit(context.Background(), []draw.Record{rec("2026-02-10", "a")})
	require.Equal(t, 1, accepted)
	require.Len(t, store.inserted, 1)
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	withTime := FormatMessage(draw.Record{DrawDate: "2026-02-10", DrawTime: "10:20", ResultText: "120-3"})
	require.Equal(t, "Kolkata FF Update\nDate: 2026-02-10\nTime: 10:20\nResult: 120-3", withTime)

	withoutTime := FormatMessage(draw.Record{DrawDate: "2026-02-10", ResultText: "205"})
	require.Equal(t, "Kolkata FF Update\nDate: 2026-02-10\nResult: 205", withoutTime)
}
