package services

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// SessionReaper terminates sessions idle beyond the ttl and reports how many
// it reaped. Satisfied by the session registry.
type SessionReaper interface {
	CleanupExpired(ttl time.Duration) int
}

// SessionSweeper periodically reaps sessions idle beyond the TTL. A single
// goroutine drives the ticker; the running flag skips a tick if the previous
// sweep has not finished, so overlapping sweeps cannot happen.
type SessionSweeper struct {
	registry SessionReaper
	interval time.Duration
	ttl      time.Duration

	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func NewSessionSweeper(registry SessionReaper, interval, ttl time.Duration) *SessionSweeper {
	return &SessionSweeper{
		registry: registry,
		interval: interval,
		ttl:      ttl,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Call once at startup.
func (s *SessionSweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop ends the sweep loop. Idempotent.
func (s *SessionSweeper) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *SessionSweeper) sweep() {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("Session sweep still in progress, skipping tick")
		return
	}
	defer s.running.Store(false)

	defer func() {
		if err := recover(); err != nil {
			log.Printf("Session sweep panicked: %v", err)
		}
	}()

	reaped := s.registry.CleanupExpired(s.ttl)
	if reaped > 0 {
		log.Printf("Cleaned up %d expired sessions", reaped)
	}
}
