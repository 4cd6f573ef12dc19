// Package localcache keeps the whole record set in a single sqlite key/value row
// when no owner is configured.
package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// StorageKey is the key the record set blob is stored under
const StorageKey = "finance_dashboard_data"

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Cache implements domain.LocalCache on top of a sqlite file
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates the cache file (and its directory) if needed and prepares the schema
func Open(path string, log zerolog.Logger) (*Cache, error) {
	if path != ":memory:" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		path = absPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent saves
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize local cache: %w", err)
	}

	return &Cache{
		db:  db,
		log: log.With().Str("component", "local_cache").Logger(),
	}, nil
}

// Close releases the underlying database handle
func (c *Cache) Close() error {
	return c.db.Close()
}

// Load returns the cached record set, or (nil, nil) when nothing has been saved yet
func (c *Cache) Load(ctx context.Context) (*domain.FinancialData, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, StorageKey).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local cache: %w: %w", domain.ErrTransientIO, err)
	}

	var payload cachedData
	if err := msgpack.Unmarshal(blob, &payload); err != nil {
		// A corrupt blob is treated like an empty cache rather than blocking startup
		c.log.Warn().Err(err).Msg("Discarding unreadable local cache")
		return nil, nil
	}

	data, err := payload.toDomain()
	if err != nil {
		c.log.Warn().Err(err).Msg("Discarding unreadable local cache")
		return nil, nil
	}

	return data, nil
}

// Save replaces the cached record set
func (c *Cache) Save(ctx context.Context, data *domain.FinancialData) error {
	blob, err := msgpack.Marshal(fromDomain(data))
	if err != nil {
		return fmt.Errorf("failed to encode local cache: %w", err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, StorageKey, blob, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write local cache: %w: %w", domain.ErrTransientIO, err)
	}

	c.log.Debug().Int("bytes", len(blob)).Msg("Saved local cache")
	return nil
}

// Clear removes the cached record set
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, StorageKey); err != nil {
		return fmt.Errorf("failed to clear local cache: %w: %w", domain.ErrTransientIO, err)
	}
	return nil
}
