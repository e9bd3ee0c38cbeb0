// Package state tracks component state by global key: the committed values
// of the current tree and the queue of updates not yet applied by a layout.
//
// A layout computation works on a Snapshot. Resolving a stateful component
// in the snapshot applies its queued updates in order. Committing the
// snapshot back publishes the computed values and drops the updates the
// snapshot consumed, leaving updates enqueued after it for the next layout.
package state

import (
	"maps"
	"sort"
	"sync"
)

// Update transforms a previous state value into a new one.
type Update func(prev any) any

type pendingUpdate struct {
	seq uint64
	fn  Update
}

// Handler holds committed state values and pending updates.
type Handler struct {
	mu        sync.Mutex
	committed map[string]any
	pending   map[string][]pendingUpdate
	seq       uint64

	// snapshot bookkeeping
	consumedSeq uint64
	touched     map[string]struct{}
}

// NewHandler returns an empty handler.
func NewHandler() *Handler {
	return &Handler{
		committed: make(map[string]any),
		pending:   make(map[string][]pendingUpdate),
	}
}

// Enqueue queues fn for the component with the given global key and returns
// the update's sequence number.
func (h *Handler) Enqueue(key string, fn Update) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.pending[key] = append(h.pending[key], pendingUpdate{seq: h.seq, fn: fn})
	return h.seq
}

// HasPendingUpdates reports whether any update is queued.
func (h *Handler) HasPendingUpdates() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) > 0
}

// KeysForPendingUpdates returns the set of keys with queued updates.
func (h *Handler) KeysForPendingUpdates() map[string]struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make(map[string]struct{}, len(h.pending))
	for k := range h.pending {
		keys[k] = struct{}{}
	}
	return keys
}

// Snapshot returns an independent copy for a layout computation.
func (h *Handler) Snapshot() *Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Handler{
		committed:   maps.Clone(h.committed),
		pending:     make(map[string][]pendingUpdate, len(h.pending)),
		seq:         h.seq,
		consumedSeq: h.seq,
		touched:     make(map[string]struct{}),
	}
	for k, v := range h.pending {
		s.pending[k] = append([]pendingUpdate(nil), v...)
	}
	return s
}

// Resolve returns the state for key, applying any queued updates. When no
// state exists yet, initial is called to create it.
func (h *Handler) Resolve(key string, initial func() any) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	value, ok := h.committed[key]
	if !ok && initial != nil {
		value = initial()
	}
	for _, u := range h.pending[key] {
		value = u.fn(value)
	}
	delete(h.pending, key)
	h.committed[key] = value
	if h.touched != nil {
		h.touched[key] = struct{}{}
	}
	return value
}

// Carry records value for key without applying updates. It is used when a
// subtree is copied or reused without being resolved again.
func (h *Handler) Carry(key string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.committed[key] = value
	if h.touched != nil {
		h.touched[key] = struct{}{}
	}
}

// Get returns the committed state for key.
func (h *Handler) Get(key string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.committed[key]
	return v, ok
}

// Commit publishes the values computed by snapshot s. Updates the snapshot
// consumed are dropped; later ones stay queued. State for keys that s did not
// touch is pruned, since those components left the tree.
func (h *Handler) Commit(s *Handler) {
	s.mu.Lock()
	values := make(map[string]any, len(s.touched))
	for k := range s.touched {
		values[k] = s.committed[k]
	}
	consumed := s.consumedSeq
	s.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.committed = values
	for k, queue := range h.pending {
		kept := queue[:0]
		for _, u := range queue {
			if u.seq > consumed {
				kept = append(kept, u)
			}
		}
		if len(kept) == 0 {
			delete(h.pending, k)
		} else {
			h.pending[k] = kept
		}
	}
}

// Keys returns the committed keys in sorted order.
func (h *Handler) Keys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.committed))
	for k := range h.committed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
