// Package flex is the geometry engine: a tree of nodes with flexbox styles,
// leaf measurement callbacks, and a single CalculateLayout entry point after
// which every node's position and size can be read back.
//
// It implements a practical subset of flexbox: row and column directions,
// justify and align, grow/shrink/basis, min/max, padding, margin, border
// and absolute positioning. No wrapping, no baseline alignment.
package flex

// MeasureFunc reports the content size of a leaf for the given constraints.
// Specs exclude the node's padding and border.
type MeasureFunc func(width, height SizeSpec) (int, int)

type measureKey struct {
	w, h           SizeSpec
	ownerW, ownerH int
}

type measureResult struct {
	w, h int
}

// Node represents an element in the layout tree.
type Node struct {
	Style Style

	// Context carries caller data, typically the internal node this flex
	// node mirrors.
	Context any

	children []*Node
	parent   *Node
	measure  MeasureFunc

	x, y, width, height int
	hasLayout           bool

	cache map[measureKey]measureResult
}

// NewNode creates a new node with the given style.
func NewNode(style Style) *Node {
	return &Node{Style: style}
}

// AddChild appends children.
func (n *Node) AddChild(children ...*Node) {
	for _, child := range children {
		child.parent = n
		n.children = append(n.children, child)
	}
	n.cache = nil
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at index i.
func (n *Node) ChildAt(i int) *Node {
	return n.children[i]
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetMeasureFunc installs a measurement callback. Only leaves are measured.
func (n *Node) SetMeasureFunc(fn MeasureFunc) {
	n.measure = fn
	n.cache = nil
}

// HasMeasureFunc reports whether the node has a measurement callback.
func (n *Node) HasMeasureFunc() bool {
	return n.measure != nil
}

// AdoptMeasurements copies cached measurements from a node computed in a
// previous pass. The caller guarantees both nodes mirror the same unchanged
// subtree.
func (n *Node) AdoptMeasurements(prev *Node) {
	if prev == nil || len(prev.cache) == 0 {
		return
	}
	if n.cache == nil {
		n.cache = make(map[measureKey]measureResult, len(prev.cache))
	}
	for k, v := range prev.cache {
		n.cache[k] = v
	}
}

// CachedMeasurements returns the number of cached measurements.
func (n *Node) CachedMeasurements() int {
	return len(n.cache)
}

// LayoutX returns the computed x offset relative to the parent.
func (n *Node) LayoutX() int { return n.x }

// LayoutY returns the computed y offset relative to the parent.
func (n *Node) LayoutY() int { return n.y }

// LayoutWidth returns the computed width.
func (n *Node) LayoutWidth() int { return n.width }

// LayoutHeight returns the computed height.
func (n *Node) LayoutHeight() int { return n.height }

// HasLayout reports whether CalculateLayout has positioned this node.
func (n *Node) HasLayout() bool { return n.hasLayout }

// CalculateLayout lays out the tree rooted at n. A negative width or height
// leaves that axis unconstrained.
func (n *Node) CalculateLayout(width, height int) {
	ws, hs := UnspecifiedSpec(), UnspecifiedSpec()
	if width >= 0 {
		ws = ExactSpec(width)
	}
	if height >= 0 {
		hs = ExactSpec(height)
	}
	n.CalculateLayoutWithSpecs(ws, hs)
}

// CalculateLayoutWithSpecs lays out the tree rooted at n under the given
// root constraints.
func (n *Node) CalculateLayoutWithSpecs(width, height SizeSpec) {
	w, h := n.calculate(width, height, width.Owner(), height.Owner(), true)
	n.x, n.y = n.Style.Margin.Left, n.Style.Margin.Top
	n.width, n.height = w, h
	n.hasLayout = true
}
