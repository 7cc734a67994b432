package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the counter store errors.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

const rateLimitKey = "rl:%s:%s"

var errNoLimiterStore = errors.New("rate limit store not configured")

// Quota is the state of one caller's fixed window after a hit.
type Quota struct {
	Limit     int
	Used      int64
	ResetsIn  time.Duration
	Unlimited bool
}

// Allowed reports whether the hit fit inside the window.
func (q Quota) Allowed() bool {
	return q.Unlimited || q.Used <= int64(q.Limit)
}

// Remaining is the number of hits left in the window, never negative.
func (q Quota) Remaining() int {
	left := int64(q.Limit) - q.Used
	if left < 0 {
		return 0
	}
	return int(left)
}

func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

// Consume records one hit for id against resource and returns the window
// state. Outside production-like environments every hit is unlimited.
func Consume(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (Quota, error) {
	q := Quota{Limit: limit, ResetsIn: window}
	if !limitsEnforced() {
		q.Unlimited = true
		return q, nil
	}
	if rdb == nil {
		return q, errNoLimiterStore
	}

	key := fmt.Sprintf(rateLimitKey, resource, id)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	}); err != nil {
		return q, err
	}

	q.Used = incr.Val()
	// a key without expiry belongs to a window whose EXPIRE never landed
	if ttl.Val() < 0 {
		if err := rdb.PExpire(ctx, key, window).Err(); err != nil {
			return q, err
		}
	} else {
		q.ResetsIn = ttl.Val()
	}
	return q, nil
}

// RateLimit allows limit hits per window and fails open. The caller is the
// authenticated user when known, the remote IP otherwise. The optional name
// replaces the request path as the counter's resource.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		q, err := Consume(c.UserContext(), rdb, resource, callerKey(c), limit, window)
		if err != nil {
			if policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Message: "rate limit unavailable",
				Code:    models.KindInternal,
			})
		}
		if q.Unlimited {
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining()))
		if !q.Allowed() {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(q.ResetsIn.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "rate limit exceeded",
				Code:    "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}

func callerKey(c *fiber.Ctx) string {
	if uid, ok := CurrentUserID(c); ok {
		return "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return "ip:" + c.IP()
}
