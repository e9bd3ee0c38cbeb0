package litho

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// MainThread runs callbacks on the thread that owns views. Mounting,
// commits and dynamic value pushes happen there.
type MainThread interface {
	// Post schedules fn. It is safe to call from any goroutine.
	Post(fn func())
	// IsCurrent reports whether the caller runs on the main thread.
	IsCurrent() bool
}

// Looper is a manual FIFO main thread. The goroutine running Drain or Run
// acts as the main thread for the duration of the call; other goroutines
// calling them wait until it returns.
type Looper struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}

	run   sync.Mutex
	owner atomic.Uint64
}

// NewLooper returns an empty looper.
func NewLooper() *Looper {
	return &Looper{notify: make(chan struct{}, 1)}
}

// Post appends fn to the queue.
func (l *Looper) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// IsCurrent reports whether the caller is the goroutine running Drain or
// Run.
func (l *Looper) IsCurrent() bool {
	id := l.owner.Load()
	return id != 0 && id == goid()
}

// enter makes the calling goroutine the main thread until the returned func
// runs. Nested calls from the owner are no-ops.
func (l *Looper) enter() (leave func()) {
	id := goid()
	if l.owner.Load() == id {
		return func() {}
	}
	l.run.Lock()
	l.owner.Store(id)
	return func() {
		l.owner.Store(0)
		l.run.Unlock()
	}
}

// goid returns the id of the calling goroutine from its stack header,
// "goroutine N [...]".
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// Notify returns a channel that receives after a Post. It is buffered, so
// posts made while nobody listens are coalesced.
func (l *Looper) Notify() <-chan struct{} { return l.notify }

// Pending returns the number of queued callbacks.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs the callbacks queued when it was called and returns how many
// ran. Callbacks posted meanwhile wait for the next drain.
func (l *Looper) Drain() int {
	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}
	defer l.enter()()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// RunUntilIdle drains until the queue stays empty and returns the number of
// callbacks run.
func (l *Looper) RunUntilIdle() int {
	total := 0
	for {
		n := l.Drain()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Run executes fn as a main thread callback right away.
func (l *Looper) Run(fn func()) {
	defer l.enter()()
	fn()
}
