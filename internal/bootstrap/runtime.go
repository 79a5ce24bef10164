// Package bootstrap assembles the runtime dependencies selected by configuration.
package bootstrap

import (
	"fmt"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/repository"
	"folio/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connections and the repository the server runs on.
// DB is nil for the memory store and Redis is nil when no cache is reachable.
type Runtime struct {
	Repo  repository.PostRepository
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to Redis and, for the postgres driver, to the database,
// then builds the instrumented repository. The repository is not initialized.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{Redis: cache.GetClient()}

	opts := RepositoryOptions(cfg)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Repo = repository.Instrument(repository.NewSQLRepository(db, opts...), cfg.StoreDriver, middleware.Logger)
	default:
		rt.Repo = repository.Instrument(repository.NewMemoryRepository(opts...), config.DriverMemory, middleware.Logger)
	}

	middleware.Logger.Info("repository configured", "driver", cfg.StoreDriver, "redis", rt.Redis != nil)
	return rt, nil
}

// RepositoryOptions maps configuration onto repository options.
func RepositoryOptions(cfg *config.Config) []repository.Option {
	return []repository.Option{
		repository.WithLatency(cfg.FetchLatency(), cfg.MutationLatency()),
		repository.WithLoader(seed.FileLoader(cfg.SeedFile)),
		repository.WithLogger(middleware.Logger),
	}
}
