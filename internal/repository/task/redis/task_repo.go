// Package redis keeps the whole task list as one JSON value under a single key,
// the same shape the browser planner writes to local storage.
package redis

import (
	"context"
	"errors"
	"fmt"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository/task/codec"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultKey = "planner:tasks"

type Storage struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Storage {
	if key == "" {
		key = DefaultKey
	}
	return &Storage{client: client, key: key}
}

// Dial connects and pings before returning.
func Dial(ctx context.Context, opts *redis.Options, key string) (*Storage, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Repository: Redis ping failed", err, zap.String("addr", opts.Addr))
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	logger.Info("Repository: connected to Redis", zap.String("addr", opts.Addr), zap.String("key", key))
	return New(client, key), nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: closing Redis client")
	return s.client.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Redis ping failed", err)
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*task.Task, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*task.Task{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	tasks, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("redis key %s: %w", s.key, err)
	}
	return tasks, nil
}

func (s *Storage) Save(ctx context.Context, tasks []*task.Task) error {
	start := time.Now()

	data, err := codec.Marshal(tasks)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: slow operation", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
