package fallback

import (
	"context"
	"time"

	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

type idleStore interface {
	RemoveIdle(cutoff time.Time) []string
}

// Sweeper periodically drops conversations idle longer than the timeout.
type Sweeper struct {
	store     idleStore
	logger    *logging.Logger
	interval  time.Duration
	idle      time.Duration
	now       func() time.Time
	onRemoved func(keys []string)
}

func NewSweeper(store idleStore, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: 10 * time.Minute,
		idle:     30 * time.Minute,
		now:      time.Now,
	}
}

func (s *Sweeper) WithInterval(d time.Duration) *Sweeper {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *Sweeper) WithIdleTimeout(d time.Duration) *Sweeper {
	if d > 0 {
		s.idle = d
	}
	return s
}

// OnRemoved registers a hook called with every non-empty batch of expired keys.
func (s *Sweeper) OnRemoved(fn func(keys []string)) *Sweeper {
	s.onRemoved = fn
	return s
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

// Sweep removes conversations last updated before now minus the idle timeout.
func (s *Sweeper) Sweep(now time.Time) []string {
	if s.store == nil {
		return nil
	}
	removed := s.store.RemoveIdle(now.Add(-s.idle))
	if len(removed) == 0 {
		return nil
	}
	s.logger.Info("expired idle conversations", "count", len(removed))
	if s.onRemoved != nil {
		s.onRemoved(removed)
	}
	return removed
}
