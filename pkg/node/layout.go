package node

import (
	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
)

// LayoutResult is the computed geometry of one node. Results are created
// per layout and never shared, even when their node is.
type LayoutResult struct {
	Node *InternalNode
	// X and Y are relative to the parent result.
	X, Y          int
	Width, Height int
	Children      []*LayoutResult
	// Nested is the laid out tree of a nested tree holder.
	Nested *LayoutResult

	flex *flex.Node
}

// Bounds returns the result's rect relative to its parent.
func (r *LayoutResult) Bounds() graphics.Rect {
	return graphics.NewRect(r.X, r.Y, r.Width, r.Height)
}

// Padding returns the node padding.
func (r *LayoutResult) Padding() graphics.Edges { return r.Node.style.Padding }

// Walk calls fn for r and every descendant result, nested trees included,
// with each result's absolute offset.
func (r *LayoutResult) Walk(fn func(res *LayoutResult, absX, absY int)) {
	r.walk(0, 0, fn)
}

func (r *LayoutResult) walk(px, py int, fn func(*LayoutResult, int, int)) {
	x, y := px+r.X, py+r.Y
	fn(r, x, y)
	if r.Nested != nil {
		r.Nested.walk(x, y, fn)
	}
	for _, c := range r.Children {
		c.walk(x, y, fn)
	}
}

type nestedKey struct {
	holder *InternalNode
	w, h   flex.SizeSpec
}

type nestedTree struct {
	root *InternalNode
	flex *flex.Node
}

// Layout computes the geometry of the tree rooted at root.
func (lc *LayoutContext) Layout(root *InternalNode, width, height flex.SizeSpec) (res *LayoutResult, err error) {
	defer lc.recoverCanceled(&err)
	if root == nil {
		return nil, nil
	}
	if lc.Previous != nil && lc.prevFlex == nil {
		lc.prevFlex = make(map[*InternalNode]*flex.Node)
		lc.Previous.Walk(func(r *LayoutResult, _, _ int) {
			if r.flex != nil {
				lc.prevFlex[r.Node] = r.flex
			}
		})
	}
	f := lc.buildFlex(root)
	f.CalculateLayoutWithSpecs(width, height)
	return lc.collect(f), nil
}

func (lc *LayoutContext) buildFlex(n *InternalNode) *flex.Node {
	f := flex.NewNode(n.style)
	f.Context = n
	switch {
	case n.holder:
		f.SetMeasureFunc(func(w, h flex.SizeSpec) (int, int) {
			nt := lc.resolveNested(n, w, h)
			if nt == nil {
				return w.Resolve(0), h.Resolve(0)
			}
			return nt.flex.LayoutWidth(), nt.flex.LayoutHeight()
		})
	case len(n.children) == 0:
		if m, ok := n.TailComponent().(component.Measurer); ok {
			ctx := n.TailContext()
			f.SetMeasureFunc(func(w, h flex.SizeSpec) (int, int) {
				var mw, mh int
				ctx.Guard("Measure", func() error {
					mw, mh = m.Measure(ctx, w, h)
					return nil
				})
				return mw, mh
			})
		}
	}
	for _, c := range n.children {
		f.AddChild(lc.buildFlex(c))
	}
	if prev := lc.prevFlex[n]; prev != nil && !n.holder {
		f.AdoptMeasurements(prev)
	}
	return f
}

// resolveNested renders and lays out the nested tree of holder under the
// given content specs. Results are memoized per computation.
func (lc *LayoutContext) resolveNested(holder *InternalNode, w, h flex.SizeSpec) *nestedTree {
	key := nestedKey{holder: holder, w: w, h: h}
	if nt, ok := lc.nested[key]; ok {
		return nt
	}
	lc.checkCanceled()
	sd := holder.HeadComponent().(component.SizeDependent)
	ctx := holder.HeadContext()
	var rendered component.Component
	ok := ctx.Guard("RenderWithSize", func() error {
		rendered = sd.RenderWithSize(ctx, w, h)
		return nil
	})
	var nt *nestedTree
	if ok && rendered != nil {
		if root := lc.resolve(component.NewContext(ctx, rendered, ctx.GlobalKey()+component.KeySeparator+component.TypeName(rendered))); root != nil {
			root.Freeze(holder)
			f := lc.buildFlex(root)
			f.CalculateLayoutWithSpecs(w, h)
			nt = &nestedTree{root: root, flex: f}
		}
	}
	lc.nested[key] = nt
	return nt
}

func (lc *LayoutContext) collect(f *flex.Node) *LayoutResult {
	n := f.Context.(*InternalNode)
	r := &LayoutResult{
		Node:   n,
		X:      f.LayoutX(),
		Y:      f.LayoutY(),
		Width:  f.LayoutWidth(),
		Height: f.LayoutHeight(),
		flex:   f,
	}
	if n.holder {
		inner := graphics.Edges{
			Top:    n.style.Padding.Top + n.style.Border.Top,
			Right:  n.style.Padding.Right + n.style.Border.Right,
			Bottom: n.style.Padding.Bottom + n.style.Border.Bottom,
			Left:   n.style.Padding.Left + n.style.Border.Left,
		}
		w := flex.ExactSpec(max(r.Width-inner.Horizontal(), 0))
		h := flex.ExactSpec(max(r.Height-inner.Vertical(), 0))
		if nt := lc.resolveNested(n, w, h); nt != nil {
			nested := lc.collect(nt.flex)
			nested.X += inner.Left
			nested.Y += inner.Top
			r.Nested = nested
		}
	}
	for i := range f.ChildCount() {
		r.Children = append(r.Children, lc.collect(f.ChildAt(i)))
	}
	for i, c := range n.components {
		if bd, ok := c.(component.BoundsDefiner); ok {
			ctx := n.contexts[i]
			bounds := r.Bounds()
			ctx.Guard("OnBoundsDefined", func() error {
				bd.OnBoundsDefined(ctx, bounds)
				return nil
			})
		}
	}
	return r
}
