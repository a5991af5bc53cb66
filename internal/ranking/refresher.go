// Package ranking runs the background leaderboard cache refresher.
package ranking

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelter-training/maps-trainer/internal/training"
)

// Refresher periodically rewrites the cached leaderboard so dashboard loads
// rarely hit the database. A failed cycle is logged and retried on the next
// tick; reads fall back to the database either way.
type Refresher struct {
	service  *training.Service
	interval time.Duration
}

// NewRefresher creates a refresher worker.
func NewRefresher(service *training.Service, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Refresher{
		service:  service,
		interval: interval,
	}
}

// Start begins the refresher in a goroutine. It stops when ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Refresher) run(ctx context.Context) {
	slog.Info("leaderboard refresher started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Warm the cache immediately on start
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("leaderboard refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.service.RefreshLeaderboard(ctx); err != nil {
		slog.Error("failed to refresh leaderboard cache", "error", err)
		return
	}
	slog.Debug("leaderboard cache refreshed")
}
