// Package dynamic provides observable values that are pushed into mounted
// content outside the normal layout and commit cycle.
//
// Values must be Set on the main thread. Listeners are held by explicit
// Attach and Detach calls; a value never outlives its subscribers by way of
// garbage collection.
package dynamic

import (
	"slices"
	"sync"
)

// Listener is notified synchronously when an observable changes.
type Listener interface {
	OnValueChange(o Observable)
}

// Observable is the type-erased view of a dynamic value used by the
// dynamic props manager.
type Observable interface {
	Current() any
	Attach(l Listener)
	Detach(l Listener)
}

// listeners is a copy-on-notify listener list.
type listeners struct {
	mu   sync.Mutex
	list []Listener
}

func (ls *listeners) attach(l Listener) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if slices.Contains(ls.list, l) {
		return false
	}
	ls.list = append(ls.list, l)
	return len(ls.list) == 1
}

func (ls *listeners) detach(l Listener) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	i := slices.Index(ls.list, l)
	if i < 0 {
		return false
	}
	ls.list = slices.Delete(ls.list, i, i+1)
	return len(ls.list) == 0
}

func (ls *listeners) snapshot() []Listener {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return slices.Clone(ls.list)
}

func (ls *listeners) count() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.list)
}

// Value is a mutable observable of T.
type Value[T any] struct {
	mu        sync.Mutex
	value     T
	listeners listeners
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores val and notifies every listener, even when val equals the
// previous value.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.value = val
	v.mu.Unlock()
	for _, l := range v.listeners.snapshot() {
		l.OnValueChange(v)
	}
}

// Current returns the current value as any.
func (v *Value[T]) Current() any {
	return v.Get()
}

// Attach subscribes l. Attaching the same listener twice is a no-op.
func (v *Value[T]) Attach(l Listener) {
	v.listeners.attach(l)
}

// Detach unsubscribes l.
func (v *Value[T]) Detach(l Listener) {
	v.listeners.detach(l)
}

// ListenerCount returns the number of subscribed listeners.
func (v *Value[T]) ListenerCount() int {
	return v.listeners.count()
}
