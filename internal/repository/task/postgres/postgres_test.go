package postgres_test

import (
	"context"
	"fmt"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"schoolPlanner/internal/repository/task/postgres"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite runs the adapter against a real PostgreSQL in a container
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(s.connString))
	// second run must be a no-op
	require.NoError(s.T(), postgres.Migrate(s.connString))

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.DefaultPoolConfig())
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "DELETE FROM tasks")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestLoadEmpty() {
	tasks, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(tasks)
}

func (s *PostgresTestSuite) TestSaveLoadRoundTrip() {
	created := time.Date(2025, time.October, 20, 8, 0, 0, 123456000, time.UTC)
	updated := created.Add(time.Hour)
	due := task.NewDate(2025, time.October, 30)

	original := []*task.Task{
		{ID: "3", Title: "Complete Math Assignment", Priority: task.PriorityHigh, Status: task.StatusInProgress,
			Category: "Math", DueDate: &due, CreatedAt: created, UpdatedAt: &updated},
		{ID: "1", Title: "Science Lab", Description: "bring goggles", Priority: task.PriorityMedium,
			Status: task.StatusTodo, Category: "Science", CreatedAt: created},
	}

	s.Require().NoError(s.storage.Save(s.ctx, original))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(original, loaded)

	// overwrite semantics
	s.Require().NoError(s.storage.Save(s.ctx, original[1:]))
	loaded, err = s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal("1", loaded[0].ID)
}

func (s *PostgresTestSuite) TestLoadCorruptRow() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	s.Require().NoError(err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, `INSERT INTO tasks (position, id, title, priority, created_at)
		VALUES (0, '1', 'Essay', 'URGENT', NOW())`)
	s.Require().NoError(err)

	tasks, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, repository.ErrCorrupt)
	s.Nil(tasks)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}
