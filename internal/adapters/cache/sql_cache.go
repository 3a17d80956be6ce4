package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/core"
)

// sqlCache holds the queries shared by the SQLite and MySQL repositories.
// Timestamps are stored as unix seconds so both drivers agree on them.
type sqlCache struct {
	db       *sql.DB
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	name     string
}

func newSQLCache(db *sql.DB, name string, logger *zap.Logger, cleanupFreq time.Duration, schema ...string) (*sqlCache, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize %s schema: %w", name, err)
		}
	}

	c := &sqlCache{
		db:     db,
		logger: logger,
		stopCh: make(chan struct{}),
		name:   name,
	}

	// Start background cleanup
	if cleanupFreq > 0 {
		go runCleanup(c, cleanupFreq, c.stopCh, logger)
	}

	return c, nil
}

// Get retrieves a cached entry by key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var payload string
	var createdAt, expiresAt int64

	err := c.db.QueryRowContext(ctx, `
		SELECT result_json, created_at, expires_at
		FROM analysis_cache
		WHERE cache_key = ?
	`, key).Scan(&payload, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CacheEntry{
		Key:       key,
		CreatedAt: time.Unix(createdAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}
	if entry.Expired(time.Now()) {
		return nil, ErrExpired
	}

	if err := json.Unmarshal([]byte(payload), &entry.Result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	return entry, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO analysis_cache (cache_key, result_json, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, entry.Key, string(payload), entry.CreatedAt.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("backend", c.name),
			zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close cache database", zap.String("backend", c.name), zap.Error(err))
		}
	})
}
