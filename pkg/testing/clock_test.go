package testing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFakeClockFiresDueTimersInOrder(t *testing.T) {
	c := NewFakeClock()
	var fired []string
	post := func(fn func()) { fn() }
	schedule := c.Scheduler(post)

	schedule(20*time.Millisecond, func() { fired = append(fired, "b") })
	schedule(10*time.Millisecond, func() { fired = append(fired, "a") })
	cancel := schedule(10*time.Millisecond, func() { fired = append(fired, "cancelled") })
	schedule(30*time.Millisecond, func() { fired = append(fired, "c") })
	cancel()

	c.Advance(20 * time.Millisecond)
	if diff := cmp.Diff([]string{"a", "b"}, fired); diff != "" {
		t.Errorf("fired mismatch (-want +got):\n%s", diff)
	}
	if got := c.PendingTimers(); got != 1 {
		t.Errorf("PendingTimers = %d, want 1", got)
	}
	start := NewFakeClock().Now()
	if got := c.Now().Sub(start); got != 20*time.Millisecond {
		t.Errorf("clock advanced by %v, want 20ms", got)
	}
}

func TestSchedulerPostsCallbacks(t *testing.T) {
	c := NewFakeClock()
	var queued []func()
	schedule := c.Scheduler(func(fn func()) { queued = append(queued, fn) })
	ran := false
	schedule(time.Second, func() { ran = true })

	c.Advance(time.Second)
	if ran {
		t.Fatal("callback ran before being drained")
	}
	if len(queued) != 1 {
		t.Fatalf("posted %d callbacks, want 1", len(queued))
	}
	queued[0]()
	if !ran {
		t.Error("posted callback did not run the timer func")
	}
}
