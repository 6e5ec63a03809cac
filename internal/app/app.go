package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"schoolPlanner/internal/config"
	"schoolPlanner/internal/idgen"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/service"
	"schoolPlanner/internal/worker"
	"slices"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	service   *service.TaskService
	worker    *worker.FlushWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// BuildStore opens the configured storage and loads the task service from it.
// The returned close function releases the storage.
func BuildStore(ctx context.Context, cfg *config.Config) (*service.TaskService, func(), error) {
	repo, closeRepo, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, closeRepo, fmt.Errorf("open storage: %w", err)
	}

	ids, err := idgen.New(cfg.Tasks.IDStrategy)
	if err != nil {
		closeRepo()
		return nil, func() {}, err
	}

	svc := service.NewTaskService(repo,
		service.WithIDAllocator(ids),
		service.WithPolicy(task.Policy{RejectPastDueDates: cfg.Tasks.RejectPastDueDates}),
	)
	if err := svc.Load(ctx); err != nil {
		closeRepo()
		return nil, func() {}, err
	}
	return svc, closeRepo, nil
}

// Init sets up logging, storage, the flush worker and the HTTP server.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	svc, closeStore, err := BuildStore(ctx, a.config)
	if err != nil {
		return err
	}
	a.service = svc
	a.shutdowns = append(a.shutdowns, closeStore)

	interval := a.config.Worker.FlushInterval
	a.worker = worker.NewFlushWorker(svc, &interval)

	router := NewRouter(svc, a.config.HTTP)
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(router, "school-planner"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("app is not initialised")
	}
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

// shutdown drains in-flight requests first so the final flush sees every change.
func (a *App) shutdown() error {
	logger.Info("App: shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	a.worker.Drain(flushCtx)
	return err
}

func (a *App) close() {
	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
}
