package services

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// newTestLimiter returns a limiter with a controllable clock and no
// background sweep goroutine racing the test.
func newTestLimiter(start time.Time) (*RateLimiter, *time.Time) {
	clock := start
	rl := &RateLimiter{
		buckets: make(map[string]*rateBucket),
		done:    make(chan struct{}),
	}
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllowWithinLimit(t *testing.T) {
	rl, clock := newTestLimiter(time.Now())
	window := time.Second

	for i := 1; i <= 3; i++ {
		if !rl.Allow("user-1", 3, window) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if rl.Allow("user-1", 3, window) {
		t.Fatal("call 4 should be rejected")
	}

	// Past the window the identity is fresh again.
	*clock = clock.Add(window + time.Millisecond)
	if !rl.Allow("user-1", 3, window) {
		t.Fatal("call after the window should be allowed")
	}
}

func TestAllowIsPerIdentity(t *testing.T) {
	rl, _ := newTestLimiter(time.Now())

	for i := 0; i < 3; i++ {
		rl.Allow("user-1", 3, time.Second)
	}
	if rl.Allow("user-1", 3, time.Second) {
		t.Error("user-1 should be throttled")
	}
	if !rl.Allow("user-2", 3, time.Second) {
		t.Error("user-2 must not share user-1's window")
	}
}

func TestSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(time.Now())
	window := time.Second

	rl.Allow("u", 2, window)
	*clock = clock.Add(600 * time.Millisecond)
	rl.Allow("u", 2, window)

	if rl.Allow("u", 2, window) {
		t.Fatal("third call inside the window should be rejected")
	}

	// Only the first entry has aged out; one slot opens.
	*clock = clock.Add(500 * time.Millisecond)
	if !rl.Allow("u", 2, window) {
		t.Fatal("slot should open once the oldest entry expires")
	}
	if rl.Allow("u", 2, window) {
		t.Fatal("window is full again")
	}
}

func TestSweepDropsStaleIdentities(t *testing.T) {
	rl, clock := newTestLimiter(time.Now())

	rl.Allow("stale", 5, time.Second)
	rl.Allow("fresh", 5, time.Hour)

	*clock = clock.Add(time.Minute)
	rl.sweep()

	rl.mu.Lock()
	_, staleKept := rl.buckets["stale"]
	_, freshKept := rl.buckets["fresh"]
	rl.mu.Unlock()

	if staleKept {
		t.Error("stale identity survived the sweep")
	}
	if !freshKept {
		t.Error("fresh identity was dropped")
	}
}

func TestAllowConcurrent(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rl.Allow(fmt.Sprintf("user-%d", i%5), 100, time.Second)
		}(i)
	}
	wg.Wait()
}
