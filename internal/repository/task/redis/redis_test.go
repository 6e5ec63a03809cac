package redis_test

import (
	"context"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	taskredis "schoolPlanner/internal/repository/task/redis"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway Redis container and returns a client for it.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration tests in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStorage(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	storage := taskredis.New(client, "test:tasks")

	t.Run("missing key loads empty", func(t *testing.T) {
		require.NoError(t, storage.HealthCheck(ctx))
		tasks, err := storage.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("round trip", func(t *testing.T) {
		created := time.Date(2025, time.October, 20, 8, 0, 0, 0, time.UTC)
		due := task.NewDate(2025, time.October, 30)
		original := []*task.Task{
			{ID: "a1", Title: "Essay", Priority: task.PriorityHigh, Status: task.StatusTodo, Category: "English", DueDate: &due, CreatedAt: created},
		}
		require.NoError(t, storage.Save(ctx, original))

		loaded, err := storage.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})

	t.Run("browser-shaped payload", func(t *testing.T) {
		payload := `[{"id":"lq2x","title":"Read","notes":"ch. 2","subject":"History","status":"completed","priority":"low"}]`
		require.NoError(t, client.Set(ctx, "test:tasks", payload, 0).Err())

		loaded, err := storage.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "History", loaded[0].Category)
		assert.Equal(t, task.StatusCompleted, loaded[0].Status)
	})

	t.Run("corrupt value", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:tasks", "not json", 0).Err())
		_, err := storage.Load(ctx)
		assert.ErrorIs(t, err, repository.ErrCorrupt)
	})
}

func TestNew_DefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	storage := taskredis.New(client, "")
	assert.NotNil(t, storage)
}
