package service

import (
	"context"
	"schoolPlanner/internal/models/task"
)

// TaskRepository is the persistence adapter: the whole collection is read once
// at startup and overwritten after every mutation.
type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Load(ctx context.Context) ([]*task.Task, error)
	Save(ctx context.Context, tasks []*task.Task) error
}
