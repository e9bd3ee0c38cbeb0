package node

import (
	"context"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/state"
)

// Stats counts the work of one layout computation.
type Stats struct {
	Created    int
	Copied     int
	Reused     int
	Reconciled int
	Recreated  int
}

// LayoutContext carries the inputs of one layout computation. It is used by
// a single goroutine.
type LayoutContext struct {
	ctx  context.Context
	tree *component.Tree

	// State is the snapshot state updates are applied to.
	State *state.Handler
	// PendingKeys holds the global keys with pending state updates when the
	// computation started.
	PendingKeys map[string]struct{}
	// Previous is the last committed layout. Measurements of reused nodes
	// are adopted from it.
	Previous *LayoutResult

	Stats Stats

	prevFlex map[*InternalNode]*flex.Node
	nested   map[nestedKey]*nestedTree
}

// NewLayoutContext returns a context for one computation. ctx cancels it.
func NewLayoutContext(ctx context.Context, tree *component.Tree, st *state.Handler) *LayoutContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if st == nil {
		st = state.NewHandler().Snapshot()
	}
	return &LayoutContext{
		ctx:         ctx,
		tree:        tree,
		State:       st,
		PendingKeys: st.KeysForPendingUpdates(),
		nested:      make(map[nestedKey]*nestedTree),
	}
}

// Tree returns the shared component tree data.
func (lc *LayoutContext) Tree() *component.Tree { return lc.tree }

type canceled struct{ err error }

func (lc *LayoutContext) checkCanceled() {
	if err := lc.ctx.Err(); err != nil {
		panic(canceled{err})
	}
}

func (lc *LayoutContext) recoverCanceled(errp *error) {
	if r := recover(); r != nil {
		if c, ok := r.(canceled); ok {
			*errp = c.err
			return
		}
		panic(r)
	}
}

// ResolveRoot creates the node tree for root from scratch. A nil node means
// root rendered nothing.
func (lc *LayoutContext) ResolveRoot(root component.Component) (n *InternalNode, err error) {
	defer lc.recoverCanceled(&err)
	n = lc.resolve(component.NewRootContext(lc.tree, root))
	if n != nil {
		n.Freeze(nil)
	}
	return n, nil
}

// resolve creates the node for the component ctx is scoped to.
func (lc *LayoutContext) resolve(ctx *component.Context) *InternalNode {
	lc.checkCanceled()
	c := ctx.Component()
	if s, ok := c.(component.Stateful); ok {
		ctx.AttachState(lc.State.Resolve(ctx.GlobalKey(), func() any { return s.InitialState(ctx) }))
	}

	switch c.Kind() {
	case component.KindLayout:
		if _, ok := c.(component.SizeDependent); ok {
			n := newInternalNode()
			n.holder = true
			n.AppendComponent(c, ctx)
			lc.Stats.Created++
			return n
		}
		r, ok := c.(component.Renderer)
		if !ok {
			return nil
		}
		var child component.Component
		if !ctx.Guard("Render", func() error {
			child = r.Render(ctx)
			return nil
		}) || child == nil {
			return nil
		}
		n := lc.resolve(ctx.Child(child))
		if n == nil {
			return nil
		}
		n.AppendComponent(c, ctx)
		return n

	case component.KindContainer:
		n := newInternalNode()
		lc.Stats.Created++
		cont, ok := c.(component.Container)
		if !ok {
			n.AppendComponent(c, ctx)
			return n
		}
		cont.ContainerStyle(&n.style)
		n.AppendComponent(c, ctx)
		for _, child := range cont.ChildComponents() {
			if child == nil {
				continue
			}
			if cn := lc.resolve(ctx.Child(child)); cn != nil {
				n.AddChild(cn)
			}
		}
		return n

	default:
		n := newInternalNode()
		lc.Stats.Created++
		n.AppendComponent(c, ctx)
		return n
	}
}
