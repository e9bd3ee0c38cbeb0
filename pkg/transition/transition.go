// Package transition keeps items with a transition key mounted while they
// disappear.
//
// When a keyed item leaves the render tree, the extension takes a mount ref
// on it so it stays mounted, and releases the ref once its disappear
// duration elapses. An item that comes back before then is kept without a
// remount.
package transition

import (
	"sort"
	"sync"
	"time"

	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
)

// Item is the transition record of one keyed render unit.
type Item struct {
	Key      string
	ID       uint64
	Duration time.Duration
}

// Input is implemented by render tree data carrying transition items.
type Input interface {
	TransitionItems() []Item
}

// Scheduler runs fn after d on the main thread. The returned func cancels
// the call.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// TimerScheduler runs callbacks through post after a real timer fires.
func TimerScheduler(post func(func())) Scheduler {
	return func(d time.Duration, fn func()) func() {
		t := time.AfterFunc(d, func() { post(fn) })
		return func() { t.Stop() }
	}
}

type disappearing struct {
	item   Item
	cancel func()
}

type extState struct {
	mu      sync.Mutex
	current map[string]Item
	running map[string]*disappearing
}

// Extension holds refs on disappearing items.
type Extension struct {
	mount.BaseExtension
	schedule Scheduler
}

// NewExtension returns an extension using schedule for disappear timers. A
// nil schedule keeps items until EndAll.
func NewExtension(schedule Scheduler) *Extension {
	return &Extension{schedule: schedule}
}

func (e *Extension) Name() string { return "transitions" }

func (e *Extension) CreateState() any {
	return &extState{current: make(map[string]Item), running: make(map[string]*disappearing)}
}

func stateOf(s *mount.ExtensionState) *extState { return s.Data.(*extState) }

func (e *Extension) BeforeMount(s *mount.ExtensionState, tree *mount.RenderTree, _ graphics.Rect) {
	st := stateOf(s)
	next := make(map[string]Item)
	if in, ok := tree.Data().(Input); ok {
		for _, it := range in.TransitionItems() {
			next[it.Key] = it
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for key := range next {
		if d, ok := st.running[key]; ok {
			e.stopLocked(s, st, key, d)
		}
	}
	for key, prev := range st.current {
		if _, ok := next[key]; ok || prev.Duration <= 0 {
			continue
		}
		if !s.MountState().IsMounted(prev.ID) {
			continue
		}
		s.AcquireMountRef(prev.ID, false)
		d := &disappearing{item: prev}
		st.running[key] = d
		if e.schedule != nil {
			key := key
			d.cancel = e.schedule(prev.Duration, func() { e.end(s, key) })
		}
	}
	st.current = next
}

func (e *Extension) stopLocked(s *mount.ExtensionState, st *extState, key string, d *disappearing) {
	if d.cancel != nil {
		d.cancel()
	}
	delete(st.running, key)
	if s.OwnsReference(d.item.ID) {
		s.ReleaseMountRef(d.item.ID, !s.MountState().IsMounting())
	}
}

func (e *Extension) end(s *mount.ExtensionState, key string) {
	st := stateOf(s)
	st.mu.Lock()
	defer st.mu.Unlock()
	if d, ok := st.running[key]; ok {
		e.stopLocked(s, st, key, d)
	}
}

// Disappearing returns the keys of items currently kept while disappearing.
func (e *Extension) Disappearing(s *mount.ExtensionState) []string {
	st := stateOf(s)
	st.mu.Lock()
	defer st.mu.Unlock()
	keys := make([]string, 0, len(st.running))
	for k := range st.running {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EndAll finishes every running disappearance now.
func (e *Extension) EndAll(s *mount.ExtensionState) {
	st := stateOf(s)
	st.mu.Lock()
	defer st.mu.Unlock()
	for key, d := range st.running {
		e.stopLocked(s, st, key, d)
	}
}

func (e *Extension) OnUnmount(s *mount.ExtensionState) {
	st := stateOf(s)
	st.mu.Lock()
	defer st.mu.Unlock()
	for key, d := range st.running {
		if d.cancel != nil {
			d.cancel()
		}
		delete(st.running, key)
	}
	s.ReleaseAllAcquiredReferences()
	clear(st.current)
}

var _ mount.Extension = (*Extension)(nil)
