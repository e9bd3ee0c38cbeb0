package testing

import (
	"sort"
	"sync"
	"time"

	"github.com/go-drift/litho/pkg/transition"
)

// FakeClock provides controllable time for deterministic transition tests.
// Timers scheduled through Scheduler fire only when Advance moves past
// their deadline. All methods are safe for concurrent use.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	at  time.Time
	seq int
	fn  func()
}

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and hands every timer that became
// due to its post func, earliest deadline first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	kept := c.timers[:0]
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	c.timers = kept
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.fn()
	}
}

// Set sets the clock to an exact time without firing timers.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// PendingTimers returns the number of timers not yet fired or cancelled.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Scheduler returns a transition scheduler driven by this clock. Due
// callbacks are handed to post, normally the main thread's Post.
func (c *FakeClock) Scheduler(post func(func())) transition.Scheduler {
	return func(d time.Duration, fn func()) func() {
		c.mu.Lock()
		c.seq++
		t := &fakeTimer{at: c.now.Add(d), seq: c.seq, fn: func() { post(fn) }}
		c.timers = append(c.timers, t)
		c.mu.Unlock()
		return func() { c.cancel(t) }
	}
}

func (c *FakeClock) cancel(t *fakeTimer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
