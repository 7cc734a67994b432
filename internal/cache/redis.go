// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to addr, which may be a host:port or a redis:// URL.
// When Redis is unreachable the client stays nil and callers run uncached.
func InitRedis(addr string) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache", "url", addr, "error", err)
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache", "error", err)
		_ = c.Close()
		client = nil
		return
	}
	middleware.Logger.Info("redis connected")
	client = c
}

// SetClient replaces the package client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(metricsHook{})
	}
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
