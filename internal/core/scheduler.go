package core

// scheduler.go runs background maintenance for import sessions.
//
// Stores with native expiry (Redis) need nothing. Stores that implement
// Sweeper are swept on a ticker until the context is cancelled; a failed
// or empty sweep never stops the loop.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired sessions are evicted.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper evicts expired sessions every interval until ctx is
// cancelled. It returns immediately when the session store expires entries
// on its own.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	sweeper, ok := s.sessions.(Sweeper)
	if !ok {
		slog.Debug("session store expires entries natively, sweeper not started")
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("session sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			start := time.Now()
			if removed := sweeper.Sweep(now); removed > 0 {
				slog.Info("expired import sessions removed",
					"removed", removed,
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
