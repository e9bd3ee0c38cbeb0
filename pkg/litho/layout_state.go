package litho

import (
	"fmt"
	"strings"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynprops"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
	"github.com/go-drift/litho/pkg/node"
	"github.com/go-drift/litho/pkg/state"
	"github.com/go-drift/litho/pkg/transition"
	"github.com/go-drift/litho/pkg/visibility"
)

// LayoutState is the immutable result of one layout computation: the
// resolved node tree, its geometry and the render tree mounted from it.
type LayoutState struct {
	version uint64
	root    component.Component

	rootNode *node.InternalNode
	result   *node.LayoutResult
	width    int
	height   int

	widthSpec, heightSpec flex.SizeSpec

	renderTree  *mount.RenderTree
	visibility  []visibility.Output
	transitions []transition.Item
	attachables map[string]*component.Context

	state *state.Handler
	stats node.Stats
}

// Version returns the request version the state was computed for.
func (ls *LayoutState) Version() uint64 { return ls.version }

// Root returns the root component.
func (ls *LayoutState) Root() component.Component { return ls.root }

// RootNode returns the resolved node tree.
func (ls *LayoutState) RootNode() *node.InternalNode { return ls.rootNode }

// Result returns the root layout result, or nil when nothing rendered.
func (ls *LayoutState) Result() *node.LayoutResult { return ls.result }

func (ls *LayoutState) Width() int  { return ls.width }
func (ls *LayoutState) Height() int { return ls.height }

// Specs returns the size specs the layout was computed with.
func (ls *LayoutState) Specs() (width, height flex.SizeSpec) { return ls.widthSpec, ls.heightSpec }

// RenderTree returns the tree to mount.
func (ls *LayoutState) RenderTree() *mount.RenderTree { return ls.renderTree }

// Stats returns the reconciliation counters of the computation.
func (ls *LayoutState) Stats() node.Stats { return ls.stats }

func (ls *LayoutState) VisibilityOutputs() []visibility.Output { return ls.visibility }

func (ls *LayoutState) TransitionItems() []transition.Item { return ls.transitions }

// Bounds returns the full bounds of the laid out tree.
func (ls *LayoutState) Bounds() graphics.Rect {
	return graphics.NewRect(0, 0, ls.width, ls.height)
}

// Dump renders the layout tree, one node per line, with absolute bounds.
func (ls *LayoutState) Dump() string {
	var b strings.Builder
	if ls.result == nil {
		return ""
	}
	var walk func(r *node.LayoutResult, x, y, depth int)
	walk = func(r *node.LayoutResult, x, y, depth int) {
		x, y = x+r.X, y+r.Y
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", depth), r.Node.HeadKey(),
			graphics.NewRect(x, y, r.Width, r.Height))
		if r.Nested != nil {
			walk(r.Nested, x, y, depth+1)
		}
		for _, c := range r.Children {
			walk(c, x, y, depth+1)
		}
	}
	walk(ls.result, 0, 0, 0)
	return b.String()
}

// DumpRenderTree renders the render tree, one unit per line, with bounds
// relative to the host.
func (ls *LayoutState) DumpRenderTree() string {
	var b strings.Builder
	for _, n := range ls.renderTree.Nodes() {
		depth := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			depth++
		}
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", depth), n.Unit().Description(), n.Bounds())
	}
	return b.String()
}

// outputBuilder flattens a layout result tree into render tree nodes.
type outputBuilder struct {
	ls       *LayoutState
	poolSize int
}

func buildOutputs(ls *LayoutState, poolSize int) {
	b := &outputBuilder{ls: ls, poolSize: poolSize}
	var root *mount.RenderTreeNode
	if ls.result != nil {
		root = b.visit(ls.result, nil, 0, 0, ls.result.X, ls.result.Y)
	}
	ls.renderTree = mount.NewRenderTree(root, ls)
}

// visit adds the outputs of r, whose absolute origin is (x, y), below host,
// whose absolute origin is (hx, hy). It returns the host created for r, if
// any.
func (b *outputBuilder) visit(r *node.LayoutResult, host *mount.RenderTreeNode, hx, hy, x, y int) *mount.RenderTreeNode {
	n := r.Node
	key := n.HeadKey()
	abs := graphics.NewRect(x, y, r.Width, r.Height)

	parent, px, py := host, hx, hy
	var created, first *mount.RenderTreeNode
	if host == nil || n.NeedsHostView() {
		dyn, dynCtx := dynamicPropsOwner(n)
		unit := &hostUnit{
			id:       unitID(key, outputHost),
			key:      key,
			comp:     dyn,
			ctx:      dynCtx,
			testKey:  testKeyOf(n),
			poolSize: b.poolSize,
		}
		created = mount.NewRenderTreeNode(host, unit, nil, abs.Translate(-hx, -hy))
		parent, px, py = created, x, y
		first = created
	}

	if bg := n.Background(); bg.A() != 0 {
		unit := &backgroundUnit{id: unitID(key, outputBackground), key: key, color: bg, poolSize: b.poolSize}
		bn := mount.NewRenderTreeNode(parent, unit, nil, abs.Translate(-px, -py))
		if first == nil {
			first = bn
		}
	}

	if tail := n.TailComponent(); tail != nil && tail.Kind().IsMountable() {
		scope := dynprops.ScopeAll
		if created != nil {
			scope = dynprops.ScopeCustom
		}
		unit := newContentUnit(unitID(key, outputContent), tail, n.TailContext(), scope)
		if created == nil {
			unit.testKey = testKeyOf(n)
		}
		inner := insetRect(abs, r.Padding(), n.Style().Border)
		cn := mount.NewRenderTreeNode(parent, unit, nil, inner.Translate(-px, -py))
		if first == nil {
			first = cn
		}
	}

	if props, ctx := n.VisibilityHandlers(); props != nil {
		b.ls.visibility = append(b.ls.visibility, visibility.Output{Key: key, Bounds: abs, Props: props, Context: ctx})
	}
	if tk := n.TransitionKey(); tk != "" && first != nil {
		b.ls.transitions = append(b.ls.transitions, transition.Item{
			Key:      tk,
			ID:       first.Unit().ID(),
			Duration: n.DisappearDuration(),
		})
	}
	for i, c := range n.Components() {
		if _, ok := c.(component.Attachable); ok {
			ctx := n.Contexts()[i]
			b.ls.attachables[ctx.GlobalKey()] = ctx
		}
	}

	if r.Nested != nil {
		b.visit(r.Nested, parent, px, py, x+r.Nested.X, y+r.Nested.Y)
	}
	for _, c := range r.Children {
		b.visit(c, parent, px, py, x+c.X, y+c.Y)
	}
	return created
}

// testKeyOf returns the outermost test key of the chain.
func testKeyOf(n *node.InternalNode) string {
	comps := n.Components()
	for i := len(comps) - 1; i >= 0; i-- {
		if k := comps[i].CommonProps().TestKey; k != "" {
			return k
		}
	}
	return ""
}

// dynamicPropsOwner returns the outermost component of the chain with
// common dynamic props, or the head.
func dynamicPropsOwner(n *node.InternalNode) (component.Component, *component.Context) {
	comps, ctxs := n.Components(), n.Contexts()
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].CommonProps().HasDynamicProps() {
			return comps[i], ctxs[i]
		}
	}
	return n.HeadComponent(), n.HeadContext()
}

func insetRect(r graphics.Rect, padding, border graphics.Edges) graphics.Rect {
	l := padding.Left + border.Left
	t := padding.Top + border.Top
	w := max(r.Width-l-padding.Right-border.Right, 0)
	h := max(r.Height-t-padding.Bottom-border.Bottom, 0)
	return graphics.NewRect(r.X+l, r.Y+t, w, h)
}
