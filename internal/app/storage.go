package app

import (
	"context"
	"fmt"
	"schoolPlanner/internal/config"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/repository/task/file"
	"schoolPlanner/internal/repository/task/inmemory"
	"schoolPlanner/internal/repository/task/mongo"
	"schoolPlanner/internal/repository/task/postgres"
	taskredis "schoolPlanner/internal/repository/task/redis"
	"schoolPlanner/internal/repository/task/sqlite"
	"schoolPlanner/internal/service"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenStorage builds the adapter selected by cfg.Type. The returned close
// function is never nil.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (service.TaskRepository, func(), error) {
	noop := func() {}
	logger.Info("App: opening storage", zap.String("type", cfg.Type))

	switch cfg.Type {
	case config.StorageMemory:
		return inmemory.NewTaskStorage(), noop, nil

	case config.StorageFile:
		return file.NewOS(cfg.File.Path), noop, nil

	case config.StorageSQLite:
		storage, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return storage, func() { storage.Close() }, nil

	case config.StoragePostgres:
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(cfg.Postgres.URL); err != nil {
				return nil, noop, err
			}
		}
		storage, err := postgres.New(ctx, cfg.Postgres.URL, postgres.PoolConfig{
			MaxConns:    cfg.Postgres.MaxConnections,
			MinConns:    cfg.Postgres.MinConnections,
			IdleTimeout: cfg.Postgres.IdleTimeout,
		})
		if err != nil {
			return nil, noop, err
		}
		return storage, storage.Close, nil

	case config.StorageRedis:
		storage, err := taskredis.Dial(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Key)
		if err != nil {
			return nil, noop, err
		}
		return storage, func() { storage.Close() }, nil

	case config.StorageMongo:
		storage, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, noop, err
		}
		return storage, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			storage.Close(ctx)
		}, nil
	}

	return nil, noop, fmt.Errorf("unknown storage type %q", cfg.Type)
}
