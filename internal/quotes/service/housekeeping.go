package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically prunes expired ledger entries so the
// token_records table does not grow without bound.
type HousekeepingService struct {
	Ledger   *LedgerService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the pruning worker. An interval of 0 or
// less defaults to 1 hour.
func NewHousekeepingService(ledger *LedgerService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Ledger:   ledger,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress prune finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Prune immediately on startup
	s.prune()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) prune() {
	ctx := context.Background()
	n, err := s.Ledger.PruneExpired(ctx, time.Now())
	if err != nil {
		s.Logger.Error("failed to prune expired token records", "error", err)
		return
	}
	s.Logger.Debug("housekeeping prune complete", "deleted", n)
}
