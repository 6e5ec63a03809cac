package handlers

import (
	"context"
	"net/http"
	"schoolPlanner/internal/handlers/dto"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const ServiceName = "school-planner"

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// Register mounts the task API on r.
func (s *TaskHandler) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.ListTasks)
		r.Post("/", s.PostTask)
		r.Get("/search", s.SearchTasks)
		r.Get("/summary", s.GetSummary)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTaskByID)
			r.Put("/", s.UpdateTaskByID)
			r.Patch("/", s.UpdateTaskByID)
			r.Delete("/", s.DeleteTaskByID)
			r.Put("/status", s.UpdateStatus)
			r.Post("/complete", s.CompleteTask)
		})
	})
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.TaskService.HealthCheck(ctx); err != nil {
		logger.Warn("HTTP: storage is unhealthy", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("service", ServiceName),
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()),
		)
		return
	}

	dirty, _ := s.TaskService.Dirty()
	responseWithJSON(w, http.StatusOK,
		toPayload("service", ServiceName),
		toPayload("status", "ok"),
		toPayload("unsaved_changes", dirty),
	)
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, matchable, err := parseFilter(r)
	if err != nil {
		logger.Warn("HTTP: invalid query parameter",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleError(w, r, err, "list_tasks")
		return
	}

	tasks := []*task.Task{}
	if matchable {
		tasks = s.TaskService.Query(filter)
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks, s.TaskService.Today()))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if code, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read request",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, code, err.Error())
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.Draft())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	s.setStorageWarning(w)
	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created, s.TaskService.Today()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	found, ok := s.TaskService.GetTaskByID(id)
	if !ok {
		handleError(w, r, service.NewNotFound("task", id), "get_task")
		return
	}

	logger.Info("HTTP_OUT: task fetched",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(found, s.TaskService.Today()))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if code, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read request",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, code, err.Error())
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Patch())
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	s.setStorageWarning(w)
	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Today()))
}

func (s *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	var request dto.UpdateStatusRequest
	if code, err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read request",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, code, err.Error())
		return
	}

	updated, err := s.TaskService.UpdateStatus(r.Context(), id, request.Status)
	if err != nil {
		handleError(w, r, err, "update_status")
		return
	}

	s.setStorageWarning(w)
	logger.Info("HTTP_OUT: task status changed",
		zap.String("task_id", id),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Today()))
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	updated, err := s.TaskService.CompleteTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "complete_task")
		return
	}

	s.setStorageWarning(w)
	logger.Info("HTTP_OUT: task completed",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Today()))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if !s.TaskService.DeleteTask(r.Context(), id) {
		handleError(w, r, service.NewNotFound("task", id), "delete_task")
		return
	}

	s.setStorageWarning(w)
	logger.Info("HTTP_OUT: task deleted",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks := s.TaskService.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks, s.TaskService.Today()))
}

func (s *TaskHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	writeJSON(w, http.StatusOK, s.TaskService.Summary())
}

// setStorageWarning tells the client its change is only held in memory.
func (s *TaskHandler) setStorageWarning(w http.ResponseWriter) {
	if dirty, err := s.TaskService.Dirty(); dirty {
		msg := "changes are not saved"
		if err != nil {
			msg += ": " + err.Error()
		}
		w.Header().Set(StorageWarningHeader, msg)
	}
}

// parseFilter reads the list query. An unknown status or priority cannot match
// any task, so matchable is false rather than an error; a bad sort is an error.
func parseFilter(r *http.Request) (filter task.Filter, matchable bool, err error) {
	q := r.URL.Query()
	matchable = true

	if v := q.Get("status"); v != "" {
		if filter.Status, err = task.ParseStatus(v); err != nil {
			matchable = false
		}
	}
	if v := q.Get("priority"); v != "" {
		if filter.Priority, err = task.ParsePriority(v); err != nil {
			matchable = false
		}
	}
	filter.Category = q.Get("category")
	if filter.Sort, err = task.ParseSortField(q.Get("sort")); err != nil {
		return filter, false, service.FromValidation(err)
	}
	return filter, matchable, nil
}
