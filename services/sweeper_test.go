package services

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingReaper struct {
	calls atomic.Int32
}

func (r *countingReaper) CleanupExpired(ttl time.Duration) int {
	r.calls.Add(1)
	return 1
}

type panickingReaper struct{}

func (panickingReaper) CleanupExpired(time.Duration) int {
	panic("boom")
}

func TestSweeperRunsOnInterval(t *testing.T) {
	reaper := &countingReaper{}
	sweeper := NewSessionSweeper(reaper, 10*time.Millisecond, time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for reaper.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never ran a sweep")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSweepRecoversFromPanic(t *testing.T) {
	sweeper := NewSessionSweeper(panickingReaper{}, time.Hour, time.Hour)

	sweeper.sweep()

	// The running flag must be released so the next tick sweeps again.
	if sweeper.running.Load() {
		t.Error("running flag stuck after a panicking sweep")
	}
	sweeper.sweep()
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewSessionSweeper(&countingReaper{}, time.Hour, time.Hour)
	sweeper.Start()
	sweeper.Stop()
	sweeper.Stop()
}
