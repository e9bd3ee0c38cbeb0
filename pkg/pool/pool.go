// Package pool keeps recyclable mount content per rendering context and
// content type.
//
// A Registry owns every pool. One lock guards the pools map and the set of
// destroyed contexts, and operations on an individual pool run under that
// same lock. Content is reset before it enters a pool, so reacquired content
// always presents canonical property values.
package pool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/view"
)

// Descriptor identifies a content type and its pool capacity.
type Descriptor interface {
	// PoolKey identifies the content type. Content released under a key
	// must be mountable by any descriptor with the same key.
	PoolKey() any
	// PoolSize bounds the pool. Zero disables pooling for the type.
	PoolSize() int
}

// Creator creates fresh content for a context.
type Creator func(ctx Context) any

// ContentPool is a free list of content of one type.
type ContentPool interface {
	Acquire() any
	Release(content any) bool
	Size() int
	MaxSize() int
	Name() string
}

// DefaultPool is a bounded LIFO free list.
type DefaultPool struct {
	name string
	max  int
	free []any
}

// NewDefaultPool returns an empty pool holding at most maxSize items.
func NewDefaultPool(name string, maxSize int) *DefaultPool {
	return &DefaultPool{name: name, max: maxSize}
}

// Acquire pops content, or returns nil when empty.
func (p *DefaultPool) Acquire() any {
	if len(p.free) == 0 {
		return nil
	}
	c := p.free[len(p.free)-1]
	p.free[len(p.free)-1] = nil
	p.free = p.free[:len(p.free)-1]
	return c
}

// Release pushes content if capacity allows and reports whether it was kept.
func (p *DefaultPool) Release(content any) bool {
	if len(p.free) >= p.max {
		return false
	}
	p.free = append(p.free, content)
	return true
}

func (p *DefaultPool) Size() int    { return len(p.free) }
func (p *DefaultPool) MaxSize() int { return p.max }
func (p *DefaultPool) Name() string { return p.name }

// Stat describes one pool for diagnostics.
type Stat struct {
	Context string
	Name    string
	Size    int
	MaxSize int
}

// Registry holds the pools of every context.
type Registry struct {
	mu        sync.Mutex
	pools     map[Context]map[any]ContentPool
	destroyed map[Context]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pools:     make(map[Context]map[any]ContentPool),
		destroyed: make(map[Context]struct{}),
	}
}

// poolLocked returns the pool for (ctx, d), creating it when create is set.
// It returns nil when pooling is disabled for d or the context is destroyed.
func (r *Registry) poolLocked(ctx Context, d Descriptor, create bool) ContentPool {
	if d.PoolSize() <= 0 || ctx == nil {
		return nil
	}
	if _, ok := r.destroyed[RootOf(ctx)]; ok {
		return nil
	}
	byType := r.pools[ctx]
	if byType == nil {
		if !create {
			return nil
		}
		byType = make(map[any]ContentPool)
		r.pools[ctx] = byType
	}
	p := byType[d.PoolKey()]
	if p == nil && create {
		p = NewDefaultPool(fmt.Sprint(d.PoolKey()), d.PoolSize())
		byType[d.PoolKey()] = p
	}
	return p
}

// Acquire returns pooled content for d, or nil when none is available.
func (r *Registry) Acquire(ctx Context, d Descriptor) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.poolLocked(ctx, d, false)
	if p == nil {
		return nil
	}
	return p.Acquire()
}

// Release resets content and returns it to the pool for d. It reports
// whether the pool kept it.
func (r *Registry) Release(ctx Context, d Descriptor, content any) bool {
	if content == nil {
		return false
	}
	if rs, ok := content.(view.Resetter); ok {
		rs.ResetForPool()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.poolLocked(ctx, d, true)
	if p == nil {
		return false
	}
	return p.Release(content)
}

// Prefill creates up to size items with creator and releases them into the
// pool for d. It returns how many items the pool kept.
func (r *Registry) Prefill(ctx Context, size int, d Descriptor, creator Creator) int {
	kept := 0
	for range size {
		if !r.Release(ctx, d, creator(ctx)) {
			break
		}
		kept++
	}
	return kept
}

// OnContextCreated registers a fresh context. Registering a context that
// already owns pools is a configuration error.
func (r *Registry) OnContextCreated(ctx Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[ctx]; ok {
		errors.ConfigPanic("pool.Registry.OnContextCreated", fmt.Errorf("%w: %s", errors.ErrPoolExists, ctx.Name()))
	}
	delete(r.destroyed, ctx)
}

// OnContextDestroyed drops the pools of ctx and of every context wrapping it,
// then marks the root of ctx destroyed so no new pools are created for it.
func (r *Registry) OnContextDestroyed(ctx Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.pools {
		if chainReaches(c, ctx) {
			delete(r.pools, c)
		}
	}
	r.destroyed[RootOf(ctx)] = struct{}{}
}

// IsDestroyed reports whether the root of ctx was destroyed.
func (r *Registry) IsDestroyed(ctx Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.destroyed[RootOf(ctx)]
	return ok
}

// Clear drops every pool and forgets destroyed contexts.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.pools)
	clear(r.destroyed)
}

// Stats lists all pools sorted by context and name.
func (r *Registry) Stats() []Stat {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Stat
	for ctx, byType := range r.pools {
		for _, p := range byType {
			out = append(out, Stat{Context: ctx.Name(), Name: p.Name(), Size: p.Size(), MaxSize: p.MaxSize()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		return out[i].Name < out[j].Name
	})
	return out
}
