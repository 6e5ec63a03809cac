package inmemory

import (
	"context"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"sync"
)

// TaskStorage keeps the last saved collection in process memory only.
type TaskStorage struct {
	mtx      *sync.RWMutex
	snapshot []*task.Task
	saves    int
}

func NewTaskStorage(seed ...*task.Task) *TaskStorage {
	return &TaskStorage{
		mtx:      &sync.RWMutex{},
		snapshot: task.CloneAll(seed),
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is always available")
	return nil
}

func (s *TaskStorage) Load(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return task.CloneAll(s.snapshot), nil
}

func (s *TaskStorage) Save(ctx context.Context, tasks []*task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.snapshot = task.CloneAll(tasks)
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *TaskStorage) Saves() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.saves
}
