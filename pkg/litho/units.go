package litho

import (
	"hash/fnv"
	"reflect"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynprops"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/view"
)

// Output kinds, mixed into render unit ids.
const (
	outputHost       = "host"
	outputBackground = "background"
	outputContent    = "content"
)

// unitID derives a render unit id from the head key of a node and the
// output kind, so the same logical output keeps its id across layouts.
func unitID(key, kind string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	return h.Sum64()
}

type hostPoolKey struct{}

type backgroundPoolKey struct{}

// hostUnit mounts a view.Host that wraps a node's outputs. Its component
// carries the common dynamic props bound to the host.
type hostUnit struct {
	id       uint64
	key      string
	comp     component.Component
	ctx      *component.Context
	testKey  string
	poolSize int
}

func (u *hostUnit) PoolKey() any                      { return hostPoolKey{} }
func (u *hostUnit) PoolSize() int                     { return u.poolSize }
func (u *hostUnit) ID() uint64                        { return u.id }
func (u *hostUnit) RenderType() mount.RenderType      { return mount.RenderView }
func (u *hostUnit) Description() string               { return "Host(" + u.key + ")" }
func (u *hostUnit) CreateContent(pool.Context) any    { return view.NewHost() }
func (u *hostUnit) Bind(content, data any)            {}
func (u *hostUnit) Unbind(content, data any)          {}
func (u *hostUnit) Component() component.Component    { return u.comp }
func (u *hostUnit) ScopedContext() *component.Context { return u.ctx }
func (u *hostUnit) DynamicPropsScope() dynprops.Scope { return dynprops.ScopeCommon }

func (u *hostUnit) Mount(content, data any) {
	if h, ok := content.(*view.Host); ok {
		h.TestKey = u.testKey
	}
}

func (u *hostUnit) Unmount(content, data any) {
	if h, ok := content.(*view.Host); ok {
		h.TestKey = ""
	}
}

func (u *hostUnit) ShouldUpdate(prev mount.RenderUnit, _, _ any) bool {
	p, ok := prev.(*hostUnit)
	return !ok || p.testKey != u.testKey
}

// backgroundUnit mounts a color drawable behind a node's content.
type backgroundUnit struct {
	id       uint64
	key      string
	color    graphics.Color
	poolSize int
}

func (u *backgroundUnit) PoolKey() any                 { return backgroundPoolKey{} }
func (u *backgroundUnit) PoolSize() int                { return u.poolSize }
func (u *backgroundUnit) ID() uint64                   { return u.id }
func (u *backgroundUnit) RenderType() mount.RenderType { return mount.RenderDrawable }
func (u *backgroundUnit) Description() string          { return "Background(" + u.key + ")" }
func (u *backgroundUnit) Bind(content, data any)       {}
func (u *backgroundUnit) Unbind(content, data any)     {}

func (u *backgroundUnit) CreateContent(pool.Context) any {
	return view.NewColorDrawable(graphics.ColorTransparent)
}

func (u *backgroundUnit) Mount(content, data any) {
	content.(*view.ColorDrawable).Color = u.color
}

func (u *backgroundUnit) Unmount(content, data any) {
	content.(*view.ColorDrawable).Color = graphics.ColorTransparent
}

func (u *backgroundUnit) ShouldUpdate(prev mount.RenderUnit, _, _ any) bool {
	p, ok := prev.(*backgroundUnit)
	return !ok || p.color != u.color
}

// contentUnit mounts the content of a mountable component. Callback
// failures are routed to the component's error boundary.
type contentUnit struct {
	id      uint64
	comp    component.Component
	m       component.Mountable
	ctx     *component.Context
	scope   dynprops.Scope
	testKey string
}

func newContentUnit(id uint64, c component.Component, ctx *component.Context, scope dynprops.Scope) *contentUnit {
	p := c.CommonProps()
	return &contentUnit{id: id, comp: c, m: c.(component.Mountable), ctx: ctx, scope: scope, testKey: p.TestKey}
}

func (u *contentUnit) PoolKey() any                      { return reflect.TypeOf(u.comp) }
func (u *contentUnit) PoolSize() int                     { return u.m.PoolSize() }
func (u *contentUnit) ID() uint64                        { return u.id }
func (u *contentUnit) Component() component.Component    { return u.comp }
func (u *contentUnit) ScopedContext() *component.Context { return u.ctx }
func (u *contentUnit) DynamicPropsScope() dynprops.Scope { return u.scope }

func (u *contentUnit) RenderType() mount.RenderType {
	if u.comp.Kind() == component.KindMountView {
		return mount.RenderView
	}
	return mount.RenderDrawable
}

func (u *contentUnit) Description() string {
	return component.TypeName(u.comp) + "(" + u.ctx.GlobalKey() + ")"
}

func (u *contentUnit) CreateContent(ctx pool.Context) any {
	return u.m.CreateMountContent(ctx)
}

func (u *contentUnit) Mount(content, data any) {
	u.ctx.Guard("Mount", func() error { return u.m.Mount(u.ctx, content) })
	if v, ok := content.(*view.View); ok {
		v.TestKey = u.testKey
	}
}

func (u *contentUnit) Unmount(content, data any) {
	u.ctx.Guard("Unmount", func() error { return u.m.Unmount(u.ctx, content) })
	if v, ok := content.(*view.View); ok {
		v.TestKey = ""
	}
}

func (u *contentUnit) Bind(content, data any) {
	if b, ok := u.comp.(component.Binder); ok {
		u.ctx.Guard("Bind", func() error { return b.Bind(u.ctx, content) })
	}
}

func (u *contentUnit) Unbind(content, data any) {
	if b, ok := u.comp.(component.Binder); ok {
		u.ctx.Guard("Unbind", func() error { return b.Unbind(u.ctx, content) })
	}
}

func (u *contentUnit) ShouldUpdate(prev mount.RenderUnit, _, _ any) bool {
	p, ok := prev.(*contentUnit)
	if !ok {
		return true
	}
	return p.testKey != u.testKey || component.ShouldUpdate(p.comp, u.comp)
}

var (
	_ dynprops.Source  = (*hostUnit)(nil)
	_ dynprops.Source  = (*contentUnit)(nil)
	_ mount.RenderUnit = (*backgroundUnit)(nil)
)
