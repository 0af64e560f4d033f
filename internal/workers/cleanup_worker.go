package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"saaskit_backend/internal/logger"
	"saaskit_backend/internal/repositories"
)

// CleanupWorker sweeps expired sessions, one-time credential tokens
// and overdue subscriptions. Expiry is already enforced at read time;
// the sweep just keeps the tables from growing without bound.
type CleanupWorker struct {
	db          *gorm.DB
	sessionRepo repositories.SessionRepository
	tokenRepo   repositories.TokenRepository
	billingRepo repositories.BillingRepository
	interval    time.Duration
}

func NewCleanupWorker(db *gorm.DB) *CleanupWorker {
	return &CleanupWorker{
		db:          db,
		sessionRepo: repositories.NewSessionRepository(),
		tokenRepo:   repositories.NewTokenRepository(),
		billingRepo: repositories.NewBillingRepository(),
		interval:    1 * time.Hour,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *CleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CleanupWorker) sweep() {
	if n, err := w.sessionRepo.DeleteExpired(w.db); err != nil {
		logger.WorkerLog("cleanup", "delete expired sessions", err)
	} else if n > 0 {
		logger.Info("Deleted expired sessions", "count", n)
	}

	if n, err := w.tokenRepo.DeleteExpired(w.db); err != nil {
		logger.WorkerLog("cleanup", "delete expired credential tokens", err)
	} else if n > 0 {
		logger.Info("Deleted expired credential tokens", "count", n)
	}

	if n, err := w.billingRepo.ExpireOverdue(w.db); err != nil {
		logger.WorkerLog("cleanup", "expire overdue subscriptions", err)
	} else if n > 0 {
		logger.Info("Marked subscriptions expired", "count", n)
	}
}
