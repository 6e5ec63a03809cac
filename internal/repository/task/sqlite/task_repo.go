// Package sqlite keeps the task list in a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"schoolPlanner/internal/repository/task/codec"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = time.RFC3339Nano

type Storage struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time; sqlite serializes anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("Repository: SQLite storage opened", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: closing SQLite storage")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: SQLite ping failed", err)
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
			id, title, description, due_date, priority, status, category, created_at, updated_at
		FROM tasks
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	var records []codec.Record
	for rows.Next() {
		var (
			r         codec.Record
			dueDate   sql.NullString
			createdAt string
			updatedAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &dueDate, &r.Priority, &r.Status, &r.Category, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		if dueDate.Valid {
			r.DueDate = &dueDate.String
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("%w: task %q created_at: %v", repository.ErrCorrupt, r.ID, err)
		}
		if updatedAt.Valid {
			u, err := time.Parse(timeLayout, updatedAt.String)
			if err != nil {
				return nil, fmt.Errorf("%w: task %q updated_at: %v", repository.ErrCorrupt, r.ID, err)
			}
			r.UpdatedAt = &u
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return codec.Decode(records)
}

// Save replaces the table content inside one transaction.
func (s *Storage) Save(ctx context.Context, tasks []*task.Task) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks
			(position, id, title, description, due_date, priority, status, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		r := codec.FromTask(t)

		var dueDate sql.NullString
		if r.DueDate != nil {
			dueDate = sql.NullString{String: *r.DueDate, Valid: true}
		}
		var updatedAt sql.NullString
		if r.UpdatedAt != nil {
			updatedAt = sql.NullString{String: r.UpdatedAt.UTC().Format(timeLayout), Valid: true}
		}

		if _, err = stmt.ExecContext(ctx, i, r.ID, r.Title, r.Description, dueDate,
			r.Priority, r.Status, r.Category, r.CreatedAt.UTC().Format(timeLayout), updatedAt); err != nil {
			return fmt.Errorf("insert task %s: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow operation", zap.Duration("ms", time.Since(start)), zap.Int("count", len(tasks)))
	}
	return nil
}
