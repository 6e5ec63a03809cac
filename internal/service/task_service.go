package service

import (
	"context"
	"schoolPlanner/internal/idgen"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskService owns the ordered task collection. Every operation, including the
// save that follows a mutation, runs under one lock.
type TaskService struct {
	repo   TaskRepository
	ids    idgen.Allocator
	now    func() time.Time
	policy task.Policy

	mtx     sync.Mutex
	tasks   []*task.Task
	dirty   bool
	saveErr error
}

func NewTaskService(repo TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:  repo,
		ids:   idgen.NewSequence(),
		now:   defaultClock,
		tasks: []*task.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return NewStorageError("health check", err)
	}
	return nil
}

// Load replaces the collection with the stored one. On failure the current
// collection is kept and the error is returned.
func (s *TaskService) Load(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		logger.Error("Service: failed to load tasks", err)
		return NewStorageError("load", err)
	}

	for _, t := range tasks {
		s.ids.Reserve(t.ID)
	}
	s.tasks = tasks
	s.dirty = false
	s.saveErr = nil

	logger.Info("Service: tasks loaded", zap.Int("count", len(tasks)))
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, draft task.Draft) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, err := task.New(draft, s.now(), s.policy)
	if err != nil {
		logger.Info("Service: task rejected", zap.Error(err))
		return nil, FromValidation(err)
	}
	t.ID = s.ids.Next()

	s.tasks = append(s.tasks, t)
	s.persist(ctx, "create", t.ID)

	logger.Info("Service: task created", zap.String("task_id", t.ID), zap.String("priority", string(t.Priority)))
	return t.Clone(), nil
}

func (s *TaskService) GetTaskByID(id string) (*task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.tasks[i].Clone(), true
}

// ListTasks returns every task in insertion order.
func (s *TaskService) ListTasks() []*task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return task.CloneAll(s.tasks)
}

// UpdateTask applies the supplied fields. A missing task or an invalid field
// leaves the collection untouched.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		logger.Info("Service: task not found", zap.String("target_id", id))
		return nil, NewNotFound("task", id)
	}

	next, err := patch.Apply(s.tasks[i])
	if err != nil {
		logger.Info("Service: update rejected", zap.String("target_id", id), zap.Error(err))
		return nil, FromValidation(err)
	}
	now := s.now()
	next.UpdatedAt = &now

	s.tasks[i] = next
	s.persist(ctx, "update", id)
	return next.Clone(), nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, id string, status string) (*task.Task, error) {
	return s.UpdateTask(ctx, id, task.NewPatch(task.WithStatus(status)))
}

func (s *TaskService) CompleteTask(ctx context.Context, id string) (*task.Task, error) {
	return s.UpdateStatus(ctx, id, string(task.StatusCompleted))
}

// DeleteTask reports whether a task was removed. An unknown id is not an error.
func (s *TaskService) DeleteTask(ctx context.Context, id string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persist(ctx, "delete", id)

	logger.Info("Service: task deleted", zap.String("task_id", id))
	return true
}

// FilterByStatus returns nothing for an unrecognised status.
func (s *TaskService) FilterByStatus(status string) []*task.Task {
	st, err := task.ParseStatus(status)
	if err != nil {
		return []*task.Task{}
	}
	return s.Query(task.Filter{Status: st})
}

func (s *TaskService) FilterByPriority(priority string) []*task.Task {
	p, err := task.ParsePriority(priority)
	if err != nil {
		return []*task.Task{}
	}
	return s.Query(task.Filter{Priority: p})
}

func (s *TaskService) FilterByCategory(category string) []*task.Task {
	if strings.TrimSpace(category) == "" {
		return []*task.Task{}
	}
	return s.Query(task.Filter{Category: strings.TrimSpace(category)})
}

// Query filters and optionally sorts a copy of the collection. Stored order is never changed.
func (s *TaskService) Query(filter task.Filter) []*task.Task {
	s.mtx.Lock()
	res := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			res = append(res, t.Clone())
		}
	}
	s.mtx.Unlock()

	task.Sort(res, filter.Sort)
	return res
}

// Search matches the query against title and description, ignoring case.
// A blank query matches nothing.
func (s *TaskService) Search(query string) []*task.Task {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []*task.Task{}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	res := []*task.Task{}
	for _, t := range s.tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			res = append(res, t.Clone())
		}
	}
	return res
}

func (s *TaskService) Summary() task.Summary {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return task.Summarize(s.tasks, task.DateOf(s.now()))
}

// Today is the calendar date overdue checks are made against.
func (s *TaskService) Today() task.Date {
	return task.DateOf(s.now())
}

// Dirty reports whether the last save failed, along with its error.
func (s *TaskService) Dirty() (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.dirty, s.saveErr
}

// Flush retries saving a dirty collection. It is a no-op when the store is clean.
func (s *TaskService) Flush(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.repo.Save(ctx, s.tasks); err != nil {
		s.saveErr = err
		logger.Warn("Service: flush failed, tasks still unsaved", zap.Error(err), zap.Int("count", len(s.tasks)))
		return NewStorageError("save", err)
	}

	s.dirty = false
	s.saveErr = nil
	logger.Info("Service: unsaved tasks flushed", zap.Int("count", len(s.tasks)))
	return nil
}

// persist saves the collection after a mutation. A failed save keeps the
// mutation and marks the store dirty.
func (s *TaskService) persist(ctx context.Context, op, id string) {
	if err := s.repo.Save(ctx, s.tasks); err != nil {
		s.dirty = true
		s.saveErr = err
		logger.Warn("Service: save failed, change kept in memory",
			zap.String("operation", op), zap.String("task_id", id), zap.Error(err))
		return
	}
	s.dirty = false
	s.saveErr = nil
}

func (s *TaskService) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t *task.Task) bool { return t.ID == id })
}
