package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/thejerf/abtime"
)

// SweeperTickID identifies the sweeper ticker on a manual clock.
const SweeperTickID = 1

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionSweeper periodically deletes expired sessions.
type SessionSweeper struct {
	sessions expiredPurger
	clock    abtime.AbstractTime
	interval time.Duration
	logger   logging.Logger
}

func NewSessionSweeper(sessions expiredPurger, clock abtime.AbstractTime, interval time.Duration, logger logging.Logger) *SessionSweeper {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &SessionSweeper{sessions: sessions, clock: clock, interval: interval, logger: logger.With("module", "sweeper")}
}

// Run sweeps every interval until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	tick := s.clock.Tick(s.interval, SweeperTickID)
	s.logger.Info(ctx, "session sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "session sweeper stopped")
			return
		case <-tick:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single purge and logs the outcome.
func (s *SessionSweeper) Sweep(ctx context.Context) {
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error(ctx, "session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "expired sessions purged", "count", n)
	}
}
