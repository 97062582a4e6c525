package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a cycle is requested while another one is
// still running.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Runner is one full pipeline pass.
type Runner interface {
	GenerateActions(ctx context.Context) error
}

// Engine drives the pipeline on a fixed interval. Cycles never overlap: if a
// run is still going when the next tick fires, the tick is skipped and the
// skipped work is picked up by the watermark on the following cycle.
type Engine struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
	mu       sync.Mutex
}

// New creates an engine driving the given runner.
func New(runner Runner, interval time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// RunOnce executes a single pipeline cycle. It returns ErrRunInProgress when
// another cycle holds the lock.
func (e *Engine) RunOnce(ctx context.Context) error {
	if !e.mu.TryLock() {
		return ErrRunInProgress
	}
	defer e.mu.Unlock()

	started := time.Now()
	err := e.runner.GenerateActions(ctx)
	elapsed := time.Since(started)

	if err != nil {
		e.logger.Error("Pipeline cycle failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}

	e.logger.Info("Pipeline cycle finished", zap.Duration("elapsed", elapsed))
	return nil
}

// Start runs one cycle immediately, then keeps cycling on the configured
// interval until ctx is cancelled. Cycle errors are logged and the loop keeps
// going; the watermark makes the next cycle retry the failed work.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Engine started", zap.Duration("interval", e.interval))

	if err := e.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		e.logger.Error("Initial pipeline cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine stopped")
			return
		case <-ticker.C:
			err := e.RunOnce(ctx)
			if errors.Is(err, ErrRunInProgress) {
				e.logger.Warn("Previous cycle still running, skipping tick")
			}
		}
	}
}
