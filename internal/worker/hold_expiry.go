package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// HoldReleaser is the slice of the workflow engine the sweeper drives.
type HoldReleaser interface {
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

// HoldExpiryWorker periodically releases products whose approved hold has
// passed its end time.
type HoldExpiryWorker struct {
	engine   HoldReleaser
	interval time.Duration
	logger   *logrus.Logger
}

const defaultSweepInterval = time.Minute

func NewHoldExpiryWorker(engine HoldReleaser, interval time.Duration, logger *logrus.Logger) *HoldExpiryWorker {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HoldExpiryWorker{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until the context is cancelled, sweeping once per interval.
func (w *HoldExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("hold expiry worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("hold expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *HoldExpiryWorker) sweep(ctx context.Context) {
	released, err := w.engine.ReleaseExpiredHolds(ctx)
	if err != nil {
		w.logger.WithError(err).WithField("released", released).Warn("hold expiry sweep finished with errors")
		return
	}
	if released > 0 {
		w.logger.WithField("released", released).Info("released expired holds")
	}
}
