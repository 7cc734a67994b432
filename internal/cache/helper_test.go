package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			*dest = profile{ID: 1, Username: "alice"}
			return nil
		}
	}

	var first profile
	require.NoError(t, Aside(ctx, UserKey(1), &first, time.Minute, fetch(&first)))
	assert.Equal(t, "alice", first.Username)

	var second profile
	require.NoError(t, Aside(ctx, UserKey(1), &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAside_InvalidateForcesRefetch(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var p profile
	require.NoError(t, Aside(ctx, UserKey(2), &p, time.Minute, func() error {
		p = profile{ID: 2, Username: "bob"}
		return nil
	}))
	assert.True(t, mr.Exists(UserKey(2)))

	InvalidateUsers(ctx, 2, 3)
	assert.False(t, mr.Exists(UserKey(2)))
}

func TestAside_FetchErrorIsReturnedAndNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	boom := errors.New("db down")

	var p profile
	err := Aside(context.Background(), UserKey(9), &p, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(UserKey(9)))
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)
	var p profile
	require.NoError(t, Aside(context.Background(), UserKey(3), &p, time.Minute, func() error {
		p.ID = 3
		return nil
	}))
	assert.Equal(t, uint(3), p.ID)
}
