// Package sweeper runs the booking expiry pass on a fixed interval.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
)

// Expirer is the part of the booking service the sweeper drives.
type Expirer interface {
	ExpireElapsed(ctx context.Context) (booking.SweepResult, error)
}

type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	log      zerolog.Logger

	// mu keeps a manual run and a tick of this process from overlapping.
	mu sync.Mutex
}

func New(expirer Expirer, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		log:      log,
	}
}

// Start sweeps once right away and then on every tick until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) (booking.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.expirer.ExpireElapsed(ctx)
	if err != nil {
		return res, err
	}

	ev := s.log.Debug()
	if res.Expired > 0 || res.Failed > 0 {
		ev = s.log.Info()
	}
	ev.Int("scanned", res.Scanned).
		Int("expired", res.Expired).
		Int("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("sweep finished")

	return res, nil
}
