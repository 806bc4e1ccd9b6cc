package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
)

// pipelineLockName guards the whole batch pass so only one instance
// writes narratives and metrics at a time.
const pipelineLockName = "pipeline"

// Worker runs the batch pipeline on a fixed interval: entity backfill,
// narrative detection, then metric calculation. A retention cleanup
// runs once per cleanup interval.
type Worker struct {
	extraction driving.ExtractionService
	cluster    driving.ClusterService
	metrics    driving.MetricsService
	lock       driven.DistributedLock // optional, nil in single-instance deployments
	logger     *slog.Logger

	// Configuration
	interval        time.Duration
	cleanupInterval time.Duration
	lockTTL         time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Extraction driving.ExtractionService
	Cluster    driving.ClusterService
	Metrics    driving.MetricsService
	Lock       driven.DistributedLock // can be nil
	Logger     *slog.Logger

	Interval        time.Duration // time between pipeline passes
	CleanupInterval time.Duration // time between retention cleanups
	LockTTL         time.Duration // lock lifetime per pass
}

// NewWorker creates a new batch pipeline worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}

	return &Worker{
		extraction:      cfg.Extraction,
		cluster:         cfg.Cluster,
		metrics:         cfg.Metrics,
		lock:            cfg.Lock,
		logger:          logger,
		interval:        interval,
		cleanupInterval: cleanupInterval,
		lockTTL:         lockTTL,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"interval", w.interval,
		"cleanup_interval", w.cleanupInterval,
	)

	go w.runLoop(ctx)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

func (w *Worker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	cleanup := time.NewTicker(w.cleanupInterval)
	defer cleanup.Stop()

	// First pass without waiting a full interval.
	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("worker stop signal received")
			return
		case <-ticker.C:
			w.runPass(ctx)
		case <-cleanup.C:
			w.runCleanup(ctx)
		}
	}
}

// runPass executes one full pipeline pass under the distributed lock.
// A stage failure is logged and the remaining stages still run; a
// half-finished pass leaves nothing inconsistent because every stage
// is idempotent.
func (w *Worker) runPass(ctx context.Context) {
	if !w.acquireLock(ctx) {
		w.logger.Debug("pipeline lock held elsewhere, skipping pass")
		return
	}
	defer w.releaseLock(ctx)

	startTime := time.Now()

	if backfill, err := w.extraction.Backfill(ctx); err != nil {
		w.logger.Error("backfill stage failed", "error", err)
	} else {
		w.logger.Info("backfill stage completed",
			"scanned", backfill.Scanned,
			"extracted", backfill.Extracted,
		)
	}

	if detection, err := w.cluster.Run(ctx); err != nil {
		w.logger.Error("detection stage failed", "error", err)
	} else {
		w.logger.Info("detection stage completed",
			"detected", detection.Detected,
			"created", detection.Created,
		)
	}

	if calc, err := w.metrics.Calculate(ctx); err != nil {
		w.logger.Error("metrics stage failed", "error", err)
	} else {
		w.logger.Info("metrics stage completed",
			"calculated", calc.Calculated,
			"stored", calc.Stored,
		)
	}

	w.logger.Info("pipeline pass completed", "duration", time.Since(startTime))
}

func (w *Worker) runCleanup(ctx context.Context) {
	deleted, err := w.metrics.Cleanup(ctx)
	if err != nil {
		w.logger.Error("metric cleanup failed", "error", err)
		return
	}
	w.logger.Info("metric cleanup completed", "deleted", deleted)
}

func (w *Worker) acquireLock(ctx context.Context) bool {
	if w.lock == nil {
		return true
	}
	acquired, err := w.lock.Acquire(ctx, pipelineLockName, w.lockTTL)
	if err != nil {
		w.logger.Error("failed to acquire pipeline lock", "error", err)
		return false
	}
	return acquired
}

func (w *Worker) releaseLock(ctx context.Context) {
	if w.lock == nil {
		return
	}
	if err := w.lock.Release(ctx, pipelineLockName); err != nil {
		w.logger.Error("failed to release pipeline lock", "error", err)
	}
}
