package services

import (
	"sync"
	"time"
)

// RateLimiter gates requests with a sliding window per identity (user id when
// authenticated, caller IP otherwise). Stale identities are reclaimed by a
// background sweep rather than probabilistically on the hot path, so Allow
// stays O(window entries) for one identity.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	done    chan struct{}
	once    sync.Once

	// now is swappable for tests.
	now func() time.Time
}

type rateBucket struct {
	times  []time.Time
	window time.Duration
}

const rateLimiterSweepInterval = 5 * time.Minute

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*rateBucket),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether another request for identity fits within limit
// requests per window, recording the attempt when it does. Rejected attempts
// are not counted against the window.
func (rl *RateLimiter) Allow(identity string, limit int, window time.Duration) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[identity]
	if !ok {
		bucket = &rateBucket{}
		rl.buckets[identity] = bucket
	}
	bucket.window = window

	// Drop timestamps that fell out of the trailing window.
	cutoff := now.Add(-window)
	fresh := bucket.times[:0]
	for _, t := range bucket.times {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	bucket.times = fresh

	if len(bucket.times) >= limit {
		return false
	}

	bucket.times = append(bucket.times, now)
	return true
}

// Stop ends the background sweep. Idempotent.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep drops identities whose entries have all aged out. Memory reclamation
// only; Allow discards stale entries itself, so correctness never depends on
// the sweep running.
func (rl *RateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for identity, bucket := range rl.buckets {
		stale := true
		cutoff := now.Add(-bucket.window)
		for _, t := range bucket.times {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.buckets, identity)
		}
	}
}
