package service

import (
	"schoolPlanner/internal/idgen"
	"schoolPlanner/internal/models/task"
	"time"
)

type Option func(*TaskService)

// WithClock replaces the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithPolicy(policy task.Policy) Option {
	return func(s *TaskService) {
		s.policy = policy
	}
}

func WithIDAllocator(ids idgen.Allocator) Option {
	return func(s *TaskService) {
		s.ids = ids
	}
}
