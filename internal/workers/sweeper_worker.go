package workers

import (
	"context"
	"time"

	boardPort "postboard/internal/ports/board"

	"go.uber.org/zap"
)

// SweeperWorker removes boards that have been idle longer than TTL from
// stores that do not expire entries on their own.
type SweeperWorker struct {
	Store    boardPort.Sweeper
	TTL      time.Duration
	Interval time.Duration
	Logger   *zap.Logger

	now func() time.Time
}

func NewSweeperWorker(store boardPort.Sweeper, ttl, interval time.Duration, logger *zap.Logger) *SweeperWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweeperWorker{
		Store:    store,
		TTL:      ttl,
		Interval: interval,
		Logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (w *SweeperWorker) Run(ctx context.Context) error {
	w.Logger.Info("SweeperWorker started", zap.Duration("ttl", w.TTL), zap.Duration("interval", w.Interval))
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("SweeperWorker stopped")
			return nil
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes idle boards and returns how many were removed.
func (w *SweeperWorker) SweepOnce(ctx context.Context) int {
	removed, err := w.Store.Sweep(ctx, w.now().Add(-w.TTL))
	if err != nil {
		w.Logger.Error("Error sweeping idle boards", zap.Error(err))
		return 0
	}
	if removed > 0 {
		w.Logger.Info("Swept idle boards", zap.Int("count", removed))
	}
	return removed
}
