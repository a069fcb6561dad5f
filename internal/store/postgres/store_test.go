package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/drawfeed/drawfeed/internal/draw"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface, fixedClock) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	clock := fixedClock{now: time.Unix(1770000000, 0).UTC()}
	store, err := NewWithPool(mock, "results", clock)
	require.NoError(t, err)
	return store, mock, clock
}

func TestInsertAcceptsNewRecord(t *testing.T) {
	t.Parallel()

	store, mock, clock := newMockStore(t)
	rec := draw.Record{
		Source:     "https://kolkataff.tv/",
		DrawDate:   "2026-02-10",
		DrawTime:   "10:20",
		ResultText: "120-3",
		Signature:  "abc123",
	}

	mock.ExpectExec("INSERT INTO results").
		WithArgs(rec.Source, rec.DrawDate, rec.DrawTime, rec.ResultText, rec.Signature, clock.now.Unix()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	accepted, err := store.Insert(context.Background(), rec)
	require.NoError(t, err)
	require.True(t, accepted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateSignatureNotAccepted(t *testing.T) {
	t.Parallel()

	store, mock, clock := newMockStore(t)
	rec := draw.Record{
		Source:     "https://kolkataff.tv/",
		DrawDate:   "2026-02-10",
		ResultText: "120-3",
		Signature:  "dupsig",
	}

	mock.ExpectExec("INSERT INTO results").
		WithArgs(rec.Source, rec.DrawDate, rec.DrawTime, rec.ResultText, rec.Signature, clock.now.Unix()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	accepted, err := store.Insert(context.Background(), rec)
	require.NoError(t, err)
	require.False(t, accepted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRequiresSignature(t *testing.T) {
	t.Parallel()

	store, _, _ := newMockStore(t)
	_, err := store.Insert(context.Background(), draw.Record{DrawDate: "2026-02-10"})
	require.Error(t, err)
}

func TestLatestEmptyTableReturnsNil(t *testing.T) {
	t.Parallel()

	store, mock, _ := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM results ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source", "draw_date", "draw_time", "result_text", "signature", "created_at",
		}))

	rec, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestByDateReturnsRows(t *testing.T) {
	t.Parallel()

	store, mock, _ := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM results WHERE draw_date").
		WithArgs("2026-02-10").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source", "draw_date", "draw_time", "result_text", "signature", "created_at",
		}).
			AddRow(int64(2), "https://kolkataff.tv/", "2026-02-10", "11:50", "140-5", "sig2", int64(1770001000)).
			AddRow(int64(1), "https://kolkataff.tv/", "2026-02-10", "10:20", "120-3", "sig1", int64(1770000000)))

	rows, err := store.ByDate(context.Background(), "2026-02-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "140-5", rows[0].ResultText)
	require.Equal(t, int64(1), rows[1].ID)
}

func TestCleanupDeletesOldRows(t *testing.T) {
	t.Parallel()

	store, mock, clock := newMockStore(t)
	cutoff := clock.now.Unix() - 60*86400
	mock.ExpectExec("DELETE FROM results WHERE created_at").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 14))

	deleted, err := store.Cleanup(context.Background(), 60)
	require.NoError(t, err)
	require.Equal(t, int64(14), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateCreatesSchema(t *testing.T) {
	t.Parallel()

	store, mock, _ := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS results").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_results_draw_date").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_results_created_at").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(mock, "results; DROP TABLE users", fixedClock{})
	require.Error(t, err)
}
