package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Expirer is the part of Service the sweeper drives.
type Expirer interface {
	ExpireListings(ctx context.Context) (int, error)
}

// ExpirySweeper periodically flips overdue available listings to expired.
type ExpirySweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewExpirySweeper(expirer Expirer, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick until ctx is done or
// Stop is called.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
	s.logger.Info("listing expiry sweeper started", "interval", s.interval)
}

// Stop ends the loop and waits for an in-progress sweep to finish.
func (s *ExpirySweeper) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	s.logger.Info("listing expiry sweeper stopped")
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	n, err := s.expirer.ExpireListings(ctx)
	if err != nil {
		s.logger.Error("listing expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired listings", "count", n)
	}
}
