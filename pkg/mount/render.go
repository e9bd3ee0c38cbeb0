// Package mount applies render trees to a host view hierarchy.
//
// A RenderTree is the flattened output of a layout: one RenderTreeNode per
// piece of mount content, parents before children, every parent a host. A
// MountState keeps the mounted content in step with the latest tree,
// mounting only the items that intersect the visible rect, reusing content
// whose render unit did not change and recycling released content through
// content pools. Mount extensions observe and influence every item's life
// cycle through a Delegate.
package mount

import (
	"fmt"

	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
)

// RenderType is the kind of content a unit produces.
type RenderType uint8

const (
	RenderView RenderType = iota
	RenderDrawable
)

func (t RenderType) String() string {
	if t == RenderDrawable {
		return "drawable"
	}
	return "view"
}

// RenderUnit describes one piece of mount content and how to bind data to
// it. Units are immutable; a changed unit means changed data.
type RenderUnit interface {
	pool.Descriptor

	// ID is stable across layouts for the same logical item.
	ID() uint64
	RenderType() RenderType
	// Description names the unit in diagnostics.
	Description() string

	CreateContent(ctx pool.Context) any

	Mount(content, data any)
	Unmount(content, data any)
	Bind(content, data any)
	Unbind(content, data any)

	// ShouldUpdate reports whether content mounted with prev must be
	// rebound to show this unit.
	ShouldUpdate(prev RenderUnit, prevData, nextData any) bool
}

// RenderTreeNode is one mountable item of a render tree.
type RenderTreeNode struct {
	unit   RenderUnit
	data   any
	bounds graphics.Rect
	parent *RenderTreeNode

	children []*RenderTreeNode
	position int
	absolute graphics.Rect
}

// NewRenderTreeNode creates a node with bounds relative to parent and adds
// it to the parent's children.
func NewRenderTreeNode(parent *RenderTreeNode, unit RenderUnit, data any, bounds graphics.Rect) *RenderTreeNode {
	n := &RenderTreeNode{unit: unit, data: data, bounds: bounds, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

func (n *RenderTreeNode) Unit() RenderUnit              { return n.unit }
func (n *RenderTreeNode) LayoutData() any               { return n.data }
func (n *RenderTreeNode) Bounds() graphics.Rect         { return n.bounds }
func (n *RenderTreeNode) AbsoluteBounds() graphics.Rect { return n.absolute }
func (n *RenderTreeNode) Parent() *RenderTreeNode       { return n.parent }
func (n *RenderTreeNode) Children() []*RenderTreeNode   { return n.children }
func (n *RenderTreeNode) ChildCount() int               { return len(n.children) }

// Position returns the node's index in the flattened tree.
func (n *RenderTreeNode) Position() int { return n.position }

// RenderTree is an immutable flattened tree of render nodes.
type RenderTree struct {
	root  *RenderTreeNode
	flat  []*RenderTreeNode
	index map[uint64]int
	data  any
}

// NewRenderTree flattens the tree under root. data is made available to
// extensions through Data. Duplicate unit ids are an invariant violation.
func NewRenderTree(root *RenderTreeNode, data any) *RenderTree {
	t := &RenderTree{root: root, index: make(map[uint64]int), data: data}
	var visit func(n *RenderTreeNode, ox, oy int)
	visit = func(n *RenderTreeNode, ox, oy int) {
		n.position = len(t.flat)
		n.absolute = n.bounds.Translate(ox, oy)
		id := n.unit.ID()
		if prev, dup := t.index[id]; dup {
			errors.Invariant("mount.NewRenderTree", fmt.Errorf("%w: %d (%s and %s)",
				errors.ErrDuplicateRenderUnit, id, t.flat[prev].unit.Description(), n.unit.Description()))
		}
		t.index[id] = n.position
		t.flat = append(t.flat, n)
		for _, c := range n.children {
			visit(c, n.absolute.X, n.absolute.Y)
		}
	}
	if root != nil {
		visit(root, 0, 0)
	}
	return t
}

// Root returns the root node.
func (t *RenderTree) Root() *RenderTreeNode { return t.root }

// Count returns the number of nodes.
func (t *RenderTree) Count() int { return len(t.flat) }

// At returns the node at position i.
func (t *RenderTree) At(i int) *RenderTreeNode { return t.flat[i] }

// Nodes returns all nodes in position order.
func (t *RenderTree) Nodes() []*RenderTreeNode { return t.flat }

// Lookup returns the node for a unit id.
func (t *RenderTree) Lookup(id uint64) (*RenderTreeNode, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.flat[i], true
}

// Data returns the producer data extensions read their input from.
func (t *RenderTree) Data() any { return t.data }
