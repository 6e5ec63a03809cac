// Package file stores the task list as one JSON document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository/task/codec"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Storage struct {
	fs   afero.Fs
	path string
}

func New(fs afero.Fs, path string) *Storage {
	return &Storage{fs: fs, path: path}
}

// NewOS stores tasks on the real filesystem.
func NewOS(path string) *Storage {
	return New(afero.NewOsFs(), path)
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		logger.Error("Repository: task file directory unavailable", err, zap.String("path", s.path))
		return fmt.Errorf("check task file directory: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*task.Task, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("Repository: no task file yet, starting empty", zap.String("path", s.path))
			return []*task.Task{}, nil
		}
		return nil, fmt.Errorf("read task file %s: %w", s.path, err)
	}

	tasks, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("task file %s: %w", s.path, err)
	}

	logger.Info("Repository: tasks loaded from file",
		zap.String("path", s.path),
		zap.Int("count", len(tasks)))
	return tasks, nil
}

// Save replaces the whole file. The new content is written next to it first and
// renamed over it, so a crash mid-write leaves the previous list intact.
func (s *Storage) Save(ctx context.Context, tasks []*task.Task) error {
	data, err := codec.Marshal(tasks)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create task file directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}
