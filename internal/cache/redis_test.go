package cache

import (
	"bytes"
	"log/slog"
	"testing"

	"agora/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := middleware.Logger
	middleware.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	t.Cleanup(func() { middleware.Logger = prev })
	return &buf
}

func TestInitRedis_Connects(t *testing.T) {
	logs := captureLogs(t)
	mr := miniredis.RunT(t)
	t.Cleanup(func() { SetClient(nil) })

	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	assert.Contains(t, logs.String(), "redis connected")
}

func TestInitRedis_InvalidURLLeavesClientNil(t *testing.T) {
	logs := captureLogs(t)
	t.Cleanup(func() { SetClient(nil) })

	InitRedis("redis://:bad url/not-a-db")
	assert.Nil(t, GetClient())
	assert.Contains(t, logs.String(), "invalid REDIS_URL")
}
