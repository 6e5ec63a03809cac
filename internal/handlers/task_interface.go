package handlers

import (
	"context"
	"schoolPlanner/internal/models/task"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, draft task.Draft) (*task.Task, error)
	GetTaskByID(id string) (*task.Task, bool)
	Query(filter task.Filter) []*task.Task
	UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error)
	UpdateStatus(ctx context.Context, id string, status string) (*task.Task, error)
	CompleteTask(ctx context.Context, id string) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) bool
	Search(query string) []*task.Task
	Summary() task.Summary
	Today() task.Date
	Dirty() (bool, error)
}
