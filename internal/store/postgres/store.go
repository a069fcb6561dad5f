// Package postgres provides the Postgres-backed results store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drawfeed/drawfeed/internal/draw"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for result rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store persists draw records with uniqueness enforced on signature.
type Store struct {
	pool  pool
	table string
	clock draw.Clock
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config, clock draw.Clock) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "results"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: p, table: table, clock: clock}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing with pgxmock).
func NewWithPool(p pool, table string, clock draw.Clock) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "results"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: p, table: table, clock: clock}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Migrate creates the results table and its indexes when missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	draw_date TEXT NOT NULL,
	draw_time TEXT,
	result_text TEXT NOT NULL,
	signature TEXT NOT NULL UNIQUE,
	created_at BIGINT NOT NULL
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_draw_date ON %s (draw_date)`, s.table, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate results table: %w", err)
		}
	}
	return nil
}

// Insert persists the record and reports whether it was new. Duplicate
// signatures return (false, nil) via ON CONFLICT DO NOTHING.
func (s *Store) Insert(ctx context.Context, rec draw.Record) (bool, error) {
	if rec.Signature == "" {
		return false, fmt.Errorf("record signature is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (source, draw_date, draw_time, result_text, signature, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (signature) DO NOTHING`, s.table)

	tag, err := s.pool.Exec(ctx, query,
		rec.Source,
		rec.DrawDate,
		rec.DrawTime,
		rec.ResultText,
		rec.Signature,
		s.clock.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Latest returns the most recently inserted record, or nil when the table
// is empty.
func (s *Store) Latest(ctx context.Context) (*draw.StoredRecord, error) {
	query := fmt.Sprintf(`
SELECT id, source, draw_date, draw_time, result_text, signature, created_at
FROM %s ORDER BY created_at DESC LIMIT 1`, s.table)

	rec, err := scanRecord(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return &rec, nil
}

// ByDate returns all records for a draw date, newest insert first.
func (s *Store) ByDate(ctx context.Context, date string) ([]draw.StoredRecord, error) {
	query := fmt.Sprintf(`
SELECT id, source, draw_date, draw_time, result_text, signature, created_at
FROM %s WHERE draw_date = $1 ORDER BY created_at DESC`, s.table)

	rows, err := s.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query by date: %w", err)
	}
	return collectRecords(rows)
}

// Past returns records inserted within the trailing day window, newest
// first.
func (s *Store) Past(ctx context.Context, days int) ([]draw.StoredRecord, error) {
	cutoff := s.clock.Now().Unix() - int64(days)*86400
	query := fmt.Sprintf(`
SELECT id, source, draw_date, draw_time, result_text, signature, created_at
FROM %s WHERE created_at >= $1 ORDER BY created_at DESC`, s.table)

	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query past: %w", err)
	}
	return collectRecords(rows)
}

// Cleanup deletes rows inserted more than olderThanDays ago and returns the
// number deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := s.clock.Now().Unix() - int64(olderThanDays)*86400
	query := fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, s.table)

	tag, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RowCount returns the total number of stored records.
func (s *Store) RowCount(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}

func scanRecord(row pgx.Row) (draw.StoredRecord, error) {
	var rec draw.StoredRecord
	err := row.Scan(
		&rec.ID,
		&rec.Source,
		&rec.DrawDate,
		&rec.DrawTime,
		&rec.ResultText,
		&rec.Signature,
		&rec.CreatedAt,
	)
	return rec, err
}

func collectRecords(rows pgx.Rows) ([]draw.StoredRecord, error) {
	defer rows.Close()
	var out []draw.StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return out, nil
}
