package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-gin-order-service/internal/core/metrics"
)

// RevocationSweeper prunes expired revocations on its own ticker.
type RevocationSweeper struct {
	store    *RevocationStore
	interval time.Duration
	log      *zap.Logger
	clock    Clock

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewRevocationSweeper(store *RevocationStore, interval time.Duration, log *zap.Logger, clock Clock) *RevocationSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RevocationSweeper{store: store, interval: interval, log: log, clock: clock, stop: make(chan struct{})}
}

// Start runs the loop until ctx is cancelled or Stop is called.
func (s *RevocationSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *RevocationSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *RevocationSweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps once; failures are logged and left for the next tick.
func (s *RevocationSweeper) RunOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := s.store.Sweep(sweepCtx, s.clock.now())
	if err != nil {
		metrics.SweepFailures.Inc()
		s.log.Error("revocation sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("revocation sweep", zap.Int64("deleted", n))
	}
}
