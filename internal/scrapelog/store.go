// Package scrapelog persists one audit row per scrape attempt.
package scrapelog

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Record is one audit row. The schema mirrors the analytics table consumed
// by downstream reporting; the core never reads these rows back.
type Record struct {
	ID             string
	URL            string
	VideoID        string
	Username       string
	Status         string
	ErrorMessage   string
	ErrorCode      string
	ResponseTimeMs int64
	Requester      string
	FromCache      bool
	CreatedAt      time.Time
}

// Attempt statuses persisted in the log table.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Writer accepts audit rows. Implementations must tolerate concurrent
// callers.
type Writer interface {
	StoreAttempt(ctx context.Context, record Record) error
	Close()
}

// StoreConfig controls the Postgres connection pool used for audit rows.
type StoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes audit rows into Postgres.
type Store struct {
	pool  execCloser
	table string
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "tiktok_scraper_logs"
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
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for
// testing).
func NewStoreWithPool(pool execCloser, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "tiktok_scraper_logs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoreAttempt inserts one audit row.
func (s *Store) StoreAttempt(ctx context.Context, record Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("scrape log store is not configured")
	}
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if record.Status != StatusSuccess && record.Status != StatusFailed {
		return fmt.Errorf("invalid status %q", record.Status)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, url, video_id, username, status, error_message, error_code,
	response_time_ms, requester, from_cache, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, s.table)
	_, err := s.pool.Exec(ctx, query,
		record.ID,
		record.URL,
		nullable(record.VideoID),
		nullable(record.Username),
		record.Status,
		nullable(record.ErrorMessage),
		nullable(record.ErrorCode),
		record.ResponseTimeMs,
		nullable(record.Requester),
		record.FromCache,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scrape log row: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
