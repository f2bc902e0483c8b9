// Package bootstrap opens the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"memeverse/internal/cache"
	"memeverse/internal/config"
	"memeverse/internal/database"
	"memeverse/internal/observability"
	"memeverse/internal/storage"

	"github.com/redis/go-redis/v9"
)

// InitRuntime connects Redis when configured and opens the record store on the
// configured driver. The returned client is nil when Redis is not configured
// or unreachable; an unreachable Redis is fatal only for the redis driver.
func InitRuntime(ctx context.Context, cfg *config.Config) (*storage.RecordStore, *redis.Client, error) {
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			rdb = client
		case cfg.StoreDriver == config.DriverRedis:
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		default:
			observability.Logger.WarnContext(ctx, "redis unavailable, continuing without cache and change feed",
				slog.String("error", err.Error()))
		}
	}

	backend, err := openBackend(cfg, rdb)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, nil, err
	}

	store := storage.NewRecordStore(backend, storage.WithMaxWriteAttempts(cfg.StoreMaxWriteAttempts))
	observability.Logger.InfoContext(ctx, "record store ready", slog.String("backend", store.BackendName()))
	return store, rdb, nil
}

func openBackend(cfg *config.Config, rdb *redis.Client) (storage.Backend, error) {
	if cfg.StoreDriver == config.DriverRedis {
		if rdb == nil {
			return nil, errors.New("redis store requires REDIS_URL")
		}
		return storage.NewRedisBackend(rdb), nil
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return storage.NewGormBackend(db), nil
}
