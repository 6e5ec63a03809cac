package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"schoolPlanner/internal/repository/task/sqlite"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*sqlite.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.db")
	storage, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage, path
}

func TestStorage_EmptyDatabase(t *testing.T) {
	storage, _ := newTestStorage(t)

	require.NoError(t, storage.HealthCheck(context.Background()))
	tasks, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStorage_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	storage, path := newTestStorage(t)

	created := time.Date(2025, time.October, 20, 8, 0, 0, 123456000, time.UTC)
	updated := created.Add(90 * time.Minute)
	due := task.NewDate(2025, time.October, 30)
	original := []*task.Task{
		{ID: "10", Title: "Zeta", Priority: task.PriorityLow, Status: task.StatusTodo, Category: "Art", CreatedAt: created},
		{ID: "2", Title: "Alpha", Description: "first draft", Priority: task.PriorityHigh, Status: task.StatusInProgress,
			Category: "Math", DueDate: &due, CreatedAt: created, UpdatedAt: &updated},
	}
	require.NoError(t, storage.Save(ctx, original))

	require.NoError(t, storage.Close())
	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	require.NoError(t, reopened.Save(ctx, original[:1]))
	loaded, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestStorage_CorruptRow(t *testing.T) {
	ctx := context.Background()
	storage, path := newTestStorage(t)
	require.NoError(t, storage.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (position, id, title, status, created_at) VALUES (0, '1', 'x', 'ARCHIVED', '2025-10-20T08:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	tasks, err := reopened.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrCorrupt)
	assert.Nil(t, tasks)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.Error(t, err)
}
