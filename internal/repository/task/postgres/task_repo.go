package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository/task/codec"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var columns = []string{"position", "id", "title", "description", "due_date", "priority", "status", "category", "created_at", "updated_at"}

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConns: 10, MinConns: 2, IdleTimeout: 5 * time.Minute}
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse PostgreSQL config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = poolCfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Migrate brings the schema up to date. Running it on a current schema is a no-op.
func Migrate(connString string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(connString))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Repository: PostgreSQL schema ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// migrateURL switches the scheme to the one the pgx/v5 migrate driver registers.
func migrateURL(connString string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				title,
				description,
				due_date,
				priority,
				status,
				category,
				created_at,
				updated_at
				FROM tasks
				ORDER BY position`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: failed to select tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	var records []codec.Record
	for rows.Next() {
		var (
			r       codec.Record
			dueDate *time.Time
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &dueDate, &r.Priority, &r.Status, &r.Category, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if dueDate != nil {
			due := task.DateOf(*dueDate).String()
			r.DueDate = &due
		}
		r.CreatedAt = r.CreatedAt.UTC()
		if r.UpdatedAt != nil {
			u := r.UpdatedAt.UTC()
			r.UpdatedAt = &u
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return codec.Decode(records)
}

// Save replaces the table content in one transaction using COPY.
func (s *Storage) Save(ctx context.Context, tasks []*task.Task) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}

		rows := make([][]any, 0, len(tasks))
		for i, t := range tasks {
			var dueDate *time.Time
			if t.DueDate != nil {
				d := t.DueDate.Time()
				dueDate = &d
			}
			rows = append(rows, []any{
				int32(i), t.ID, t.Title, t.Description, dueDate,
				string(t.Priority), string(t.Status), t.Category, t.CreatedAt, t.UpdatedAt,
			})
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"tasks"}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Repository: failed to save tasks", err, zap.Duration("ms", time.Since(start)))
		return err
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow operation", zap.Duration("ms", time.Since(start)), zap.Int("count", len(tasks)))
	}
	return nil
}
