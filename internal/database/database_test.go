package database

import (
	"context"
	"testing"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file::memory:?cache=private",
		Env:        "test",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follows_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.PostLike{}, "idx_post_likes_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.CommentLike{}, "idx_comment_likes_user_comment"))
	assert.NoError(t, Ping(context.Background(), db))
}

func TestConnect_TranslatesUniqueViolations(t *testing.T) {
	db, err := Connect(&config.Config{DBDriver: "sqlite", SQLitePath: "file::memory:?cache=private", Env: "test"})
	require.NoError(t, err)

	u := models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&u).Error)

	dup := models.User{Username: "alice", Email: "other@example.com", Password: "x"}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=agora sslmode=disable", PostgresDSN(cfg, "agora"))
}
