package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/google/uuid"
)

// Refresher is the work the worker runs on every tick.
// service.CatalogStore satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// PollInterval is how often to refresh the catalog
	PollInterval time.Duration

	// JobTimeout bounds a single refresh
	JobTimeout time.Duration
}

// Worker periodically refreshes the catalog in the background.
type Worker struct {
	config    Config
	refresher Refresher
	logger    *slog.Logger

	wg sync.WaitGroup
}

// NewWorker creates a new background catalog refresher
func NewWorker(refresher Refresher, config Config, logger *slog.Logger) *Worker {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Minute
	}
	if config.JobTimeout == 0 {
		config.JobTimeout = 30 * time.Second
	}

	return &Worker{
		config:    config,
		refresher: refresher,
		logger:    logger,
	}
}

// Start refreshes on every tick until the context is cancelled.
// A tick that fires while a refresh is still running is skipped.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"poll_interval", w.config.PollInterval,
		"job_timeout", w.config.JobTimeout,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Semaphore of one: at most a single refresh in flight
	sem := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			w.wg.Wait()
			return ctx.Err()

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()
					w.runRefresh(ctx)
				}()
			default:
				w.logger.Debug("refresh still running, skipping tick", "worker_id", w.config.WorkerID)
			}
		}
	}
}

// runRefresh performs one bounded refresh and logs the outcome.
func (w *Worker) runRefresh(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := w.refresher.Refresh(jobCtx)
	if err != nil {
		level := slog.LevelError
		if domain.IsCode(err, domain.ECONCURRENCY) {
			// A newer load won; nothing to do.
			level = slog.LevelWarn
		}
		w.logger.Log(ctx, level, "catalog refresh failed",
			"worker_id", w.config.WorkerID,
			"error", err,
			"retryable", domain.IsRetryable(err),
		)
		return
	}

	w.logger.Info("catalog refreshed",
		"worker_id", w.config.WorkerID,
		"duration", time.Since(start),
	)
}
