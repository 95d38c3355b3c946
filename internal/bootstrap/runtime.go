// Package bootstrap wires shared process-level dependencies for commands
// that need a live database and Redis connection outside the HTTP server.
package bootstrap

import (
	"fmt"

	"commune/internal/cache"
	"commune/internal/config"
	"commune/internal/database"
	"commune/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDevData bool
	SeedOptions seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds development data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; the client is nil when unreachable.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDevData {
		if err := seed.Seed(db, opts.SeedOptions); err != nil {
			return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
		}
	}

	return db, r, nil
}
