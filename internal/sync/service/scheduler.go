package service

import (
	"context"
	"time"

	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/utils/logger"

	"go.uber.org/zap"
)

// Scheduler runs catalog syncs on a fixed interval until its context
// is cancelled.
type Scheduler struct {
	syncService *SyncService
	interval    time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(syncService *SyncService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{syncService: syncService, interval: interval}
}

// Run blocks and syncs the catalog every interval. A sync already
// running elsewhere is skipped quietly; other failures are logged and
// retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info(ctx, "sync scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "sync scheduler stopped")
			return
		case <-ticker.C:
			if err := s.syncService.SyncCatalog(ctx); err != nil {
				if pkgerrors.Is(err, pkgerrors.SyncInProgress) {
					logger.Info(ctx, "catalog sync already running, skipped")
					continue
				}
				logger.Error(ctx, "scheduled catalog sync failed", zap.Error(err))
			}
		}
	}
}
