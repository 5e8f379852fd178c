package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout = 5 * time.Second

	schema = `CREATE TABLE IF NOT EXISTS progress (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`
)

// SQLiteStore persists progress in a single SQLite table.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	logger      logger.Logger
	closed      atomic.Bool
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		filepath.Clean(path), s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpenStore, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrOpenStore, err)
	}
	s.db = db

	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateRepositoryRecordsTotal(n)
	}
	s.logger.Info(ctx, "progress store opened", logger.String("path", path))
	return s, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, key string, value int) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save")
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, key string, def int) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	start := time.Now()
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM progress WHERE key = ?`, key).Scan(&v)
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return def, nil
	case err != nil:
		metrics.RecordErrorByComponent("repository", "load")
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM progress`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return n, nil
}

// Close implements Store. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
