package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rithlabs/rith/internal/rith/store"
)

// HousekeepingService periodically deletes expired grants and tokens so the
// tables do not grow without bound. Redemption and resolution never depend on
// the sweep; it is purely hygiene.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweep. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes expired records. The two deletions are independent; a
// failure in one does not stop the other.
func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	if err := s.Store.Grants().DeleteExpiredGrants(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired grants", "error", err)
	}
	if err := s.Store.Tokens().DeleteExpiredTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	}
}
