package cache

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS forward_cache (
			cache_key CHAR(64) PRIMARY KEY,
			result BLOB NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_forward_cache_expires_at (expires_at)
		)`,
	},
	upsert: `
		INSERT INTO forward_cache (cache_key, result, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			result = VALUES(result),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)
	`,
}

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	c, err := openSQLCache(mysqlDialect, dsn, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}
	return &MySQLCache{c}, nil
}
