package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t), 0)
	require.NoError(t, err)
	t.Cleanup(c.Stop)
	return c
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLiteCache(t)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	stored := sampleEntry("k1", time.Hour)
	require.NoError(t, c.Set(ctx, stored))

	entry, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, stored.Result, entry.Result)
	assert.Equal(t, stored.ExpiresAt.Unix(), entry.ExpiresAt.Unix())

	// overwrite keeps a single row
	replaced := sampleEntry("k1", time.Hour)
	replaced.Result.Detector = "forwarded"
	require.NoError(t, c.Set(ctx, replaced))
	entry, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "forwarded", entry.Result.Detector)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, err = c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLiteCache(t)

	require.NoError(t, c.Set(ctx, sampleEntry("old", -time.Hour)))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, c.Cleanup(ctx))
	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}
