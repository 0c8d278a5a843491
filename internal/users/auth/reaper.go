// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/metrics"
)

// Reaper periodically purges expired session rows.
//
// Reads already ignore expired rows; the reaper only keeps the table small.
type Reaper struct {
	sessions SessionRepository
	interval time.Duration
	metrics  *metrics.Registry
	logger   *slog.Logger
}

// NewReaper builds a reaper. A non-positive interval disables it.
func NewReaper(sessions SessionRepository, interval time.Duration, registry *metrics.Registry, logger *slog.Logger) *Reaper {
	return &Reaper{sessions: sessions, interval: interval, metrics: registry, logger: logger}
}

// Run blocks until context is cancelled, sweeping once per interval.
func (reaper *Reaper) Run(context context.Context) {
	if reaper.interval <= 0 {
		return
	}

	ticker := time.NewTicker(reaper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reaper.Sweep(context)
		case <-context.Done():
			return
		}
	}
}

// Sweep runs one purge and returns the number of rows removed.
func (reaper *Reaper) Sweep(context context.Context) int64 {
	count, err := reaper.sessions.DeleteExpired(context)
	if err != nil {
		reaper.logger.ErrorContext(context, "session_reaper_failed", slog.Any("error", err))
		return 0
	}

	reaper.metrics.AddReapedSessions(count)
	if count > 0 {
		reaper.logger.InfoContext(context, "session_reaper_swept", slog.Int64("deleted", count))
	}
	return count
}
