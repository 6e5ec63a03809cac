package worker

import (
	"context"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = 30 * time.Second

// Store is the part of the task service the worker drives.
type Store interface {
	Dirty() (bool, error)
	Flush(ctx context.Context) error
	Summary() task.Summary
}

// FlushWorker retries saving a dirty store and reports overdue tasks on every tick.
type FlushWorker struct {
	store    Store
	interval time.Duration
}

func NewFlushWorker(store Store, interval *time.Duration) *FlushWorker {
	intervalToSet := DefaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &FlushWorker{
		store:    store,
		interval: intervalToSet,
	}
}

func (w *FlushWorker) Interval() time.Duration {
	return w.interval
}

// Start blocks until ctx is cancelled. The last attempt is left to Drain, which
// the owner calls once nothing else can modify the store.
func (w *FlushWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: stopping background flush")
			return
		}
	}
}

// Drain makes one final save attempt and reports whether the store is clean.
func (w *FlushWorker) Drain(ctx context.Context) bool {
	if w.flush(ctx) {
		return true
	}
	_, err := w.store.Dirty()
	logger.Error("Worker: unsaved tasks are lost on exit", err)
	return false
}

// Check runs one tick and reports whether the store is clean afterwards.
func (w *FlushWorker) Check(ctx context.Context) bool {
	start := time.Now()

	clean := w.flush(ctx)
	summary := w.store.Summary()

	logger.Debug(
		"Worker: check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("tasks", summary.Total),
		zap.Int("overdue", summary.Overdue),
		zap.Bool("clean", clean),
	)
	return clean
}

func (w *FlushWorker) flush(ctx context.Context) bool {
	dirty, lastErr := w.store.Dirty()
	if !dirty {
		return true
	}

	logger.Info("Worker: retrying save of unsaved tasks", zap.NamedError("last_error", lastErr))
	if err := w.store.Flush(ctx); err != nil {
		logger.Warn("Worker: flush failed", zap.Error(err))
		return false
	}
	return true
}
