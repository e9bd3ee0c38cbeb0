// Package component defines the declarative unit of the framework.
//
// A Component is an immutable value created by application code on every
// render. Its capability set is a closed variant reported by Kind: layout
// components render other components, containers lay out children, and
// mount components produce view or drawable content. Optional behavior
// (state, measurement, binding, error boundaries) is expressed by the
// narrower interfaces in this package, discovered with type assertions.
//
// Components are compared by pointer identity, so implementations must be
// pointer types.
package component

import (
	"reflect"
	"sync"

	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/state"
)

// Kind is the capability variant of a component.
type Kind uint8

const (
	// KindLayout components implement Renderer or SizeDependent.
	KindLayout Kind = iota
	// KindContainer components implement Container.
	KindContainer
	// KindMountView components implement Mountable and produce a view.
	KindMountView
	// KindMountDrawable components implement Mountable and produce a
	// drawable.
	KindMountDrawable
)

func (k Kind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindContainer:
		return "container"
	case KindMountView:
		return "mount-view"
	case KindMountDrawable:
		return "mount-drawable"
	default:
		return "unknown"
	}
}

// IsMountable reports whether the kind produces mount content.
func (k Kind) IsMountable() bool {
	return k == KindMountView || k == KindMountDrawable
}

// Component is the declarative unit.
type Component interface {
	Kind() Kind
	// CommonProps returns the props shared by every component. Embedding
	// Props provides it.
	CommonProps() *Props
	// IsEquivalentTo is a structural equality used to skip content updates.
	IsEquivalentTo(other Component) bool
	// ShallowCopy returns a copy sharing all referenced values.
	ShallowCopy() Component
}

// Renderer is implemented by KindLayout components.
type Renderer interface {
	Render(c *Context) Component
}

// SizeDependent is implemented by KindLayout components that need their
// size constraints to render. They resolve lazily during measurement.
type SizeDependent interface {
	RenderWithSize(c *Context, width, height flex.SizeSpec) Component
}

// Container is implemented by KindContainer components.
type Container interface {
	ChildComponents() []Component
	// ContainerStyle writes direction, justify and alignment to s.
	ContainerStyle(s *flex.Style)
}

// Mountable is implemented by KindMountView and KindMountDrawable
// components.
type Mountable interface {
	CreateMountContent(ctx pool.Context) any
	// PoolSize bounds the content pool for this component type.
	PoolSize() int
	Mount(c *Context, content any) error
	Unmount(c *Context, content any) error
}

// Binder is implemented by mount components with bind-time work.
type Binder interface {
	Bind(c *Context, content any) error
	Unbind(c *Context, content any) error
}

// Measurer is implemented by mount components that size from content.
// Specs exclude padding and border.
type Measurer interface {
	Measure(c *Context, width, height flex.SizeSpec) (int, int)
}

// BoundsDefiner is told the final bounds of its node after layout.
type BoundsDefiner interface {
	OnBoundsDefined(c *Context, bounds graphics.Rect)
}

// Stateful components own state keyed by their global key.
type Stateful interface {
	InitialState(c *Context) any
}

// Attachable components are told when they enter and leave the committed
// tree.
type Attachable interface {
	OnAttached(c *Context) error
	OnDetached(c *Context) error
}

// DynamicPropsBinder components push custom dynamic values into their
// content. BindDynamicProp receives the index into DynamicProps.
type DynamicPropsBinder interface {
	DynamicProps() []dynamic.Observable
	BindDynamicProp(index int, value any, content any) error
}

// ErrorBoundary components receive errors raised by their descendants.
type ErrorBoundary interface {
	OnError(c *Context, err error)
}

// UpdateChecker overrides the default content-update predicate, which is
// !IsEquivalentTo.
type UpdateChecker interface {
	ShouldUpdate(prev Component) bool
}

// Provider is implemented by render units that carry a component.
type Provider interface {
	Component() Component
	ScopedContext() *Context
}

// StateUpdater receives state updates from component contexts.
type StateUpdater interface {
	EnqueueStateUpdate(key string, fn state.Update, async bool)
}

// Copy returns a shallow copy of *c. Components use it to implement
// ShallowCopy.
func Copy[T any](c *T) *T {
	cp := *c
	return &cp
}

// ShouldUpdate reports whether content showing prev must be updated to
// show next.
func ShouldUpdate(prev, next Component) bool {
	if prev == next {
		return false
	}
	if prev == nil || next == nil {
		return true
	}
	if uc, ok := next.(UpdateChecker); ok {
		return uc.ShouldUpdate(prev)
	}
	return !next.IsEquivalentTo(prev)
}

var typeNames sync.Map

// TypeName returns the simple type name of c, used in global keys.
func TypeName(c Component) string {
	t := reflect.TypeOf(c)
	if name, ok := typeNames.Load(t); ok {
		return name.(string)
	}
	name := t.String()
	if t.Kind() == reflect.Pointer {
		name = t.Elem().Name()
	}
	typeNames.Store(t, name)
	return name
}

// SameType reports whether a and b have the same dynamic type.
func SameType(a, b Component) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}
