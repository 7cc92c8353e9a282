package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"photogrid/internal/logging"
	"photogrid/internal/metrics"
)

// defaultTimeout bounds every store operation so the engine never holds
// the store open across long awaits.
const defaultTimeout = 5 * time.Second

// ThumbSuffix derives the cache key for a video thumbnail from the
// video's logical path.
const ThumbSuffix = "#thumb"

// ThumbKey returns the cache key for a video thumbnail.
func ThumbKey(path string) string {
	return path + ThumbSuffix
}

// Store is the durable key→blob cache. Blobs are decoded source bytes
// and generated video thumbnails, keyed by logical path; entries
// survive process restarts and are never pruned by the engine.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (or creates) the cache store at dbPath. The parent
// directory must already exist and be writable.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Cache store path: %s", dbPath)

	// WAL keeps concurrent readers cheap; busy_timeout avoids
	// "database is locked" under write contention.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache store after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to cache store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache store after init failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cache store schema: %w", err)
	}

	logging.Info("Cache store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	-- Decoded source bytes and video thumbnails, keyed by logical path.
	-- Thumbnails share the table under key path || '#thumb'.
	CREATE TABLE IF NOT EXISTS blobs (
		path TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	-- Persisted per-instance gallery settings.
	CREATE TABLE IF NOT EXISTS widget_state (
		id TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	_, err := s.db.ExecContext(opCtx, schema)
	return err
}

// Get returns the blob stored under key, or ok=false when absent.
func (s *Store) Get(ctx context.Context, key string) (blob []byte, ok bool, err error) {
	start := time.Now()
	defer func() {
		observe("get", start, err)
	}()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = s.db.QueryRowContext(opCtx, `SELECT blob FROM blobs WHERE path = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.StoreMissesTotal.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache store get %q: %w", key, err)
	}
	metrics.StoreHitsTotal.Inc()
	return blob, true, nil
}

// Put stores blob under key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key string, blob []byte) (err error) {
	start := time.Now()
	defer func() {
		observe("put", start, err)
	}()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(opCtx,
		`INSERT INTO blobs (path, blob) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET blob = excluded.blob`,
		key, blob)
	if err != nil {
		return fmt.Errorf("cache store put %q: %w", key, err)
	}
	metrics.StoreBlobBytes.Add(float64(len(blob)))
	return nil
}

// Count returns the number of stored blobs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(opCtx, `SELECT COUNT(*) FROM blobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache store count: %w", err)
	}
	return n, nil
}

// GetState returns the persisted settings value for a widget instance,
// or ok=false when none has been saved.
func (s *Store) GetState(ctx context.Context, id string) (value string, ok bool, err error) {
	start := time.Now()
	defer func() {
		observe("get_state", start, err)
	}()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = s.db.QueryRowContext(opCtx, `SELECT value FROM widget_state WHERE id = ?`, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache store get state %q: %w", id, err)
	}
	return value, true, nil
}

// PutState persists the settings value for a widget instance.
func (s *Store) PutState(ctx context.Context, id, value string) (err error) {
	start := time.Now()
	defer func() {
		observe("put_state", start, err)
	}()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(opCtx,
		`INSERT INTO widget_state (id, value, updated_at) VALUES (?, ?, strftime('%s', 'now'))
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		id, value)
	if err != nil {
		return fmt.Errorf("cache store put state %q: %w", id, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreOpsTotal.WithLabelValues(op, status).Inc()
	metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
