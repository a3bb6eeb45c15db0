package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"propertyhub/internal/auth/repository"
)

// UnconfirmedSweeper periodically removes accounts whose owners never
// followed the confirmation link.
type UnconfirmedSweeper struct {
	userRepo repository.UserRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewUnconfirmedSweeper creates a sweeper. A ttl of zero disables it.
func NewUnconfirmedSweeper(userRepo repository.UserRepository, ttl, interval time.Duration) *UnconfirmedSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &UnconfirmedSweeper{
		userRepo: userRepo,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *UnconfirmedSweeper) Start() {
	if s.ttl <= 0 {
		log.Println("[AccountSweeper] UNCONFIRMED_TTL is 0, sweeper disabled")
		close(s.done)
		return
	}

	log.Printf("[AccountSweeper] Starting (ttl: %s, interval: %s)", s.ttl, s.interval)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.Sweep(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stopChan:
				log.Println("[AccountSweeper] Sweeper stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep, or for ctx.
func (s *UnconfirmedSweeper) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopChan) })

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep removes unconfirmed accounts older than the ttl once.
func (s *UnconfirmedSweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := s.userRepo.DeleteUnconfirmedBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		log.Printf("[AccountSweeper] Error removing unconfirmed accounts: %v", err)
		return 0
	}
	if removed > 0 {
		log.Printf("[AccountSweeper] Removed %d unconfirmed accounts", removed)
	}
	return removed
}
