// Package bootstrap connects the runtime dependencies shared by the
// server and the maintenance commands.
package bootstrap

import (
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with generated data.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. Redis is optional: when
// it is unreachable the returned client is nil.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if opts.SeedDemo {
		if err := seedIfEmpty(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

func seedIfEmpty(cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		return nil
	}
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	s, err := seed.NewSeeder(db, seed.DefaultOptions)
	if err != nil {
		return err
	}
	res, err := s.Run()
	if err != nil {
		return err
	}
	middleware.Logger.Info("seeded empty database",
		slog.Int("users", res.Users),
		slog.String("password", seed.DemoPassword),
	)
	return nil
}
