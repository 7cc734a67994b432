package bootstrap

import (
	"path/filepath"
	"testing"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, redisURL string) *config.Config {
	return &config.Config{
		Env:        "development",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "agora.db"),
		RedisURL:   redisURL,
	}
}

func TestInitRuntime_SeedsEmptyDatabaseOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t, mr.Addr())

	db, rdb, err := InitRuntime(cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Positive(t, users)

	// a populated database is left alone
	require.NoError(t, seedIfEmpty(cfg, db))
	var again int64
	require.NoError(t, db.Model(&models.User{}).Count(&again).Error)
	assert.Equal(t, users, again)
}

func TestInitRuntime_WithoutRedis(t *testing.T) {
	cfg := sqliteConfig(t, "redis://:bad@127.0.0.1:1/0")

	db, rdb, err := InitRuntime(cfg, Options{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
