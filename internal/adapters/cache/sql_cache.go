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

	"github.com/mikey/forward-filter/internal/core"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	driver string
	schema []string
	upsert string
}

// sqlCache stores detection results as JSON rows keyed by text digest
type sqlCache struct {
	db       *sql.DB
	dialect  dialect
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func openSQLCache(d dialect, dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.driver, err)
	}

	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	c := &sqlCache{
		db:      db,
		dialect: d,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go startCleanupTask(logger, cleanupFreq, c.stopCh, c.Cleanup)
	}

	return c, nil
}

// Get retrieves the entry stored under key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		payload   []byte
		createdAt int64
		expiresAt int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT result, created_at, expires_at
		FROM forward_cache
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
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}
	if err := json.Unmarshal(payload, &entry.Result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	return entry, nil
}

// Set stores a cache entry, replacing any previous one for the same key
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = c.db.ExecContext(ctx, c.dialect.upsert,
		entry.Key, payload, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM forward_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM forward_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("driver", c.dialect.driver), zap.Error(err))
		}
	})
}
