package cache

import (
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	driver: "sqlite3",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS forward_cache (
			cache_key TEXT PRIMARY KEY,
			result BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forward_cache_expires_at ON forward_cache(expires_at)`,
	},
	upsert: `
		INSERT OR REPLACE INTO forward_cache (cache_key, result, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`,
}

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache creates a new SQLite cache at dbPath
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	c, err := openSQLCache(sqliteDialect, dbPath, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}
	return &SQLiteCache{c}, nil
}
