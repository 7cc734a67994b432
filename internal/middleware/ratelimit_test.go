package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsume_UnlimitedOutsideProduction(t *testing.T) {
	for _, env := range []string{"", "test", "development"} {
		t.Run("env="+env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			q, err := Consume(context.Background(), nil, "login", "1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, q.Unlimited)
			assert.True(t, q.Allowed())
		})
	}
}

func TestConsume_CountsWithinWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		q, err := Consume(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, q.Allowed())
		assert.Equal(t, 2-i, q.Remaining())
	}
	q, err := Consume(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, q.Allowed())
	assert.Equal(t, 0, q.Remaining())
	assert.Greater(t, q.ResetsIn, time.Duration(0))

	mr.FastForward(2 * time.Minute)
	q, err = Consume(ctx, rdb, "login", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, q.Allowed())
}

func TestConsume_RepairsKeyWithoutExpiry(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set("rl:login:ip:9.9.9.9", "5"))

	q, err := Consume(context.Background(), rdb, "login", "ip:9.9.9.9", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, q.Allowed())
	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:9.9.9.9"))
}

func TestConsume_NilStoreInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Consume(context.Background(), nil, "login", "1", 1, time.Minute)
	assert.ErrorIs(t, err, errNoLimiterStore)
}

func TestRateLimit_FailPolicies(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	tests := []struct {
		name   string
		policy FailPolicy
		status int
	}{
		{name: "fail open", policy: FailOpen, status: http.StatusOK},
		{name: "fail closed", policy: FailClosed, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", RateLimitWithPolicy(nil, 1, time.Minute, tt.policy, "root"), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/login", RateLimit(rdb, 1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	first, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header.Get("X-RateLimit-Remaining"))

	second, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "60", second.Header.Get(fiber.HeaderRetryAfter))
}
