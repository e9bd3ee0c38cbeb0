// Package node builds the internal node tree from components, reconciles it
// against the previous tree, and lays it out.
//
// An InternalNode is the layout-tree record of one chain of components: a
// head (the outermost component), zero or more wrapping layout components
// and a tail that is a container or mountable. Index 0 of the component list
// is the tail and the last index is the head. Nodes are mutable while they
// are built and frozen before they are shared; a frozen node may be reused
// by a later tree as-is.
package node

import (
	"sync/atomic"
	"time"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
)

var nextNodeID atomic.Uint64

// InternalNode is one node of the layout tree.
type InternalNode struct {
	id         uint64
	components []component.Component
	contexts   []*component.Context
	children   []*InternalNode
	style      flex.Style

	background     graphics.Color
	touchExpansion graphics.Edges
	transitionKey  string
	disappear      time.Duration
	visibility     *component.Props
	visibilityCtx  *component.Context
	wrapInView     bool

	holder          bool
	frozen          bool
	disabled        bool
	hideDescendants bool
}

func newInternalNode() *InternalNode {
	return &InternalNode{id: nextNodeID.Add(1)}
}

// ID returns a process-unique id. Copies get new ids; reused nodes keep
// theirs.
func (n *InternalNode) ID() uint64 { return n.id }

func (n *InternalNode) checkMutable(op string) {
	if n.frozen {
		errors.Invariantf(op, errors.ErrFrozenNode, "node %s", n.HeadKey())
	}
}

// AppendComponent pushes c as the new head of the chain.
func (n *InternalNode) AppendComponent(c component.Component, ctx *component.Context) {
	n.checkMutable("node.AppendComponent")
	n.components = append(n.components, c)
	n.contexts = append(n.contexts, ctx)
	n.applyProps(c.CommonProps(), ctx)
}

// applyProps folds the common props of a newly appended head into the node.
// Set props of outer components win.
func (n *InternalNode) applyProps(p *component.Props, ctx *component.Context) {
	p.ApplyLayout(&n.style)
	n.disabled = n.disabled || p.Disabled
	n.hideDescendants = n.hideDescendants || p.HideDescendants
	if p.Background.A() != 0 {
		n.background = p.Background
	}
	if !p.TouchExpansion.IsZero() {
		n.touchExpansion = p.TouchExpansion
	}
	if p.TransitionKey != "" {
		n.transitionKey, n.disappear = p.TransitionKey, p.DisappearDuration
	}
	if p.HasVisibilityHandlers() {
		n.visibility, n.visibilityCtx = p, ctx
	}
	n.wrapInView = n.wrapInView || p.NeedsHostView()
}

// restyle recomputes every props-derived field from the chain.
func (n *InternalNode) restyle() {
	n.style = flex.DefaultStyle()
	if cont, ok := n.TailComponent().(component.Container); ok {
		cont.ContainerStyle(&n.style)
	}
	n.background, n.touchExpansion = 0, graphics.Edges{}
	n.transitionKey, n.disappear = "", 0
	n.visibility, n.visibilityCtx, n.wrapInView = nil, nil, false
	n.disabled, n.hideDescendants = false, false
	for i, c := range n.components {
		n.applyProps(c.CommonProps(), n.contexts[i])
	}
}

// AddChild appends child.
func (n *InternalNode) AddChild(child *InternalNode) {
	n.checkMutable("node.AddChild")
	n.children = append(n.children, child)
}

// UpdateStyle lets fn modify the flex style.
func (n *InternalNode) UpdateStyle(fn func(s *flex.Style)) {
	n.checkMutable("node.UpdateStyle")
	fn(&n.style)
}

// SetStyle replaces the flex style.
func (n *InternalNode) SetStyle(s flex.Style) *InternalNode {
	n.checkMutable("node.SetStyle")
	n.style = s
	return n
}

func (n *InternalNode) Width(v flex.Value) *InternalNode {
	n.checkMutable("node.Width")
	n.style.Width = v
	return n
}

func (n *InternalNode) Height(v flex.Value) *InternalNode {
	n.checkMutable("node.Height")
	n.style.Height = v
	return n
}

func (n *InternalNode) FlexGrow(g float64) *InternalNode {
	n.checkMutable("node.FlexGrow")
	n.style.FlexGrow = g
	return n
}

func (n *InternalNode) Padding(e graphics.Edges) *InternalNode {
	n.checkMutable("node.Padding")
	n.style.Padding = e
	return n
}

// SetBackground paints c behind the node's content.
func (n *InternalNode) SetBackground(c graphics.Color) *InternalNode {
	n.checkMutable("node.SetBackground")
	n.background = c
	return n
}

// SetTransitionKey keys the node for transitions. Once it leaves the tree
// its content stays mounted for disappear.
func (n *InternalNode) SetTransitionKey(key string, disappear time.Duration) *InternalNode {
	n.checkMutable("node.SetTransitionKey")
	n.transitionKey, n.disappear = key, disappear
	return n
}

func (n *InternalNode) SetTouchExpansion(e graphics.Edges) *InternalNode {
	n.checkMutable("node.SetTouchExpansion")
	n.touchExpansion = e
	return n
}

// SetVisibilityHandlers takes the handlers of p, dispatched through ctx.
func (n *InternalNode) SetVisibilityHandlers(p *component.Props, ctx *component.Context) *InternalNode {
	n.checkMutable("node.SetVisibilityHandlers")
	n.visibility, n.visibilityCtx = p, ctx
	return n
}

// WrapInView forces a host view around the node's content.
func (n *InternalNode) WrapInView() *InternalNode {
	n.checkMutable("node.WrapInView")
	n.wrapInView = true
	return n
}

// Freeze marks the subtree immutable. Disabled and hidden-descendant flags
// are inherited from the parent.
func (n *InternalNode) Freeze(parent *InternalNode) {
	if n.frozen {
		return
	}
	if parent != nil {
		n.disabled = n.disabled || parent.disabled
		n.hideDescendants = n.hideDescendants || parent.hideDescendants
	}
	n.frozen = true
	for _, c := range n.children {
		c.Freeze(n)
	}
}

// IsFrozen reports whether the node is immutable.
func (n *InternalNode) IsFrozen() bool { return n.frozen }

// Components returns the chain, tail first.
func (n *InternalNode) Components() []component.Component { return n.components }

// Contexts returns the scoped contexts parallel to Components.
func (n *InternalNode) Contexts() []*component.Context { return n.contexts }

// HeadComponent returns the outermost component, or nil for an empty node.
func (n *InternalNode) HeadComponent() component.Component {
	if len(n.components) == 0 {
		return nil
	}
	return n.components[len(n.components)-1]
}

// HeadContext returns the context of the head component.
func (n *InternalNode) HeadContext() *component.Context {
	if len(n.contexts) == 0 {
		return nil
	}
	return n.contexts[len(n.contexts)-1]
}

// HeadKey returns the global key of the head component.
func (n *InternalNode) HeadKey() string {
	if ctx := n.HeadContext(); ctx != nil {
		return ctx.GlobalKey()
	}
	return ""
}

// TailComponent returns the innermost component.
func (n *InternalNode) TailComponent() component.Component {
	if len(n.components) == 0 {
		return nil
	}
	return n.components[0]
}

// TailContext returns the context of the tail component.
func (n *InternalNode) TailContext() *component.Context {
	if len(n.contexts) == 0 {
		return nil
	}
	return n.contexts[0]
}

// TailKey returns the global key of the tail component.
func (n *InternalNode) TailKey() string {
	if ctx := n.TailContext(); ctx != nil {
		return ctx.GlobalKey()
	}
	return ""
}

// Keys returns the global keys of the chain, tail first.
func (n *InternalNode) Keys() []string {
	keys := make([]string, len(n.contexts))
	for i, c := range n.contexts {
		keys[i] = c.GlobalKey()
	}
	return keys
}

// Children returns the child nodes.
func (n *InternalNode) Children() []*InternalNode { return n.children }

// ChildCount returns the number of children.
func (n *InternalNode) ChildCount() int { return len(n.children) }

// ChildAt returns the child at i.
func (n *InternalNode) ChildAt(i int) *InternalNode { return n.children[i] }

// Style returns the flex style.
func (n *InternalNode) Style() flex.Style { return n.style }

// IsNestedTreeHolder reports whether the head renders with size.
func (n *InternalNode) IsNestedTreeHolder() bool { return n.holder }

// Disabled reports whether the node or an ancestor is disabled.
func (n *InternalNode) Disabled() bool { return n.disabled }

// HideDescendants reports whether the node or an ancestor hides its
// descendants from accessibility.
func (n *InternalNode) HideDescendants() bool { return n.hideDescendants }

// TransitionKey returns the outermost transition key in the chain.
func (n *InternalNode) TransitionKey() string { return n.transitionKey }

// DisappearDuration returns how long content outlives the node's removal.
func (n *InternalNode) DisappearDuration() time.Duration { return n.disappear }

// Background returns the background color; transparent means none.
func (n *InternalNode) Background() graphics.Color { return n.background }

// TouchExpansion returns the hit area expansion per edge.
func (n *InternalNode) TouchExpansion() graphics.Edges { return n.touchExpansion }

// VisibilityHandlers returns the props carrying the node's visibility
// handlers and the context they run in, or nil.
func (n *InternalNode) VisibilityHandlers() (*component.Props, *component.Context) {
	return n.visibility, n.visibilityCtx
}

// NeedsHostView reports whether the node's output must be wrapped in a host
// view. A mount view is its own host. Transition keyed nodes are wrapped so
// the whole output can be held while it disappears.
func (n *InternalNode) NeedsHostView() bool {
	if tail := n.TailComponent(); tail != nil && tail.Kind() == component.KindMountView {
		return false
	}
	return n.wrapInView || n.transitionKey != ""
}

// HasDynamicProps reports whether any component of the chain sets a common
// dynamic prop.
func (n *InternalNode) HasDynamicProps() bool {
	for _, c := range n.components {
		if c.CommonProps().HasDynamicProps() {
			return true
		}
	}
	return false
}

// clean returns an unfrozen copy without components or children.
func (n *InternalNode) clean() *InternalNode {
	c := newInternalNode()
	c.holder = n.holder
	return c
}

// Walk calls fn for n and every descendant in pre-order.
func (n *InternalNode) Walk(fn func(*InternalNode)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
