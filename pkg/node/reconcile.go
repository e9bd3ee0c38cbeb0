package node

import (
	"strings"

	"github.com/go-drift/litho/pkg/component"
)

// Mode is how a node of the current tree is carried into the next one.
type Mode uint8

const (
	// ModeReuse keeps the node and its subtree as-is.
	ModeReuse Mode = iota
	// ModeCopy clones the subtree with updated components.
	ModeCopy
	// ModeReconcile clones the node and decides again for each child.
	ModeReconcile
	// ModeRecreate discards the node and resolves its head from scratch.
	ModeRecreate
)

func (m Mode) String() string {
	switch m {
	case ModeReuse:
		return "reuse"
	case ModeCopy:
		return "copy"
	case ModeReconcile:
		return "reconcile"
	case ModeRecreate:
		return "recreate"
	default:
		return "unknown"
	}
}

// ReconciliationModeFor decides how current is carried forward. Nodes touched by a
// pending update are recreated; ancestors of such nodes are reconciled;
// everything else is reused, or copied when reuse is off.
//
// Descendants are found by key prefix, so a key that merely shares a prefix
// with an unrelated sibling (for example "A,Text" and "A,Text!1") reconciles
// that sibling too. Reconciling is always safe, only slower.
func ReconciliationModeFor(ctx *component.Context, current *InternalNode, pending map[string]struct{}, reuse bool) Mode {
	if ctx == nil || current == nil || current.HeadComponent() == nil || current.holder {
		return ModeRecreate
	}
	for _, c := range current.contexts {
		if _, ok := pending[c.GlobalKey()]; ok {
			return ModeRecreate
		}
	}
	head := current.HeadKey()
	for key := range pending {
		if strings.HasPrefix(key, head) {
			return ModeReconcile
		}
	}
	if reuse {
		return ModeReuse
	}
	return ModeCopy
}

// ReconcileRoot carries current into a new tree rooted at root, recreating
// only what pending state updates touched.
func (lc *LayoutContext) ReconcileRoot(current *InternalNode, root component.Component) (n *InternalNode, err error) {
	defer lc.recoverCanceled(&err)
	ctx := component.NewRootContext(lc.tree, root)
	if current == nil || current.HeadKey() != ctx.GlobalKey() {
		lc.Stats.Recreated++
		n = lc.resolve(ctx)
	} else {
		n = lc.reconcile(ctx, current)
	}
	if n != nil {
		n.Freeze(nil)
	}
	return n, nil
}

// Reconcile carries current into the tree being built, as the child of
// parent with next as its head under nextKey.
func (lc *LayoutContext) Reconcile(parent *component.Context, current *InternalNode, next component.Component, nextKey string) (n *InternalNode, err error) {
	defer lc.recoverCanceled(&err)
	var ctx *component.Context
	if parent == nil {
		ctx = component.NewRootContext(lc.tree, next)
	} else {
		ctx = component.NewContext(parent, next, nextKey)
	}
	return lc.reconcile(ctx, current), nil
}

func (lc *LayoutContext) reconcile(ctx *component.Context, current *InternalNode) *InternalNode {
	lc.checkCanceled()
	mode := ReconciliationModeFor(ctx, current, lc.PendingKeys, lc.tree != nil && lc.tree.Config.ReuseInternalNodes)
	switch mode {
	case ModeReuse:
		lc.Stats.Reused++
		current.Walk(func(n *InternalNode) { lc.carryState(n.contexts) })
		return current
	case ModeCopy, ModeReconcile:
		return lc.copy(ctx, current, mode)
	default:
		lc.Stats.Recreated++
		return lc.resolve(ctx)
	}
}

// copy clones current with ctx's component as the new head. In ModeCopy the
// children are copied too; in ModeReconcile each child is decided again.
func (lc *LayoutContext) copy(ctx *component.Context, current *InternalNode, mode Mode) *InternalNode {
	if mode == ModeCopy {
		lc.Stats.Copied++
	} else {
		lc.Stats.Reconciled++
	}
	n := current.clean()

	last := len(current.components) - 1
	n.components = make([]component.Component, last+1)
	n.contexts = make([]*component.Context, last+1)
	n.components[last] = ctx.Component()
	n.contexts[last] = ctx
	for i := last - 1; i >= 0; i-- {
		c := current.components[i].ShallowCopy()
		n.components[i] = c
		n.contexts[i] = component.NewContext(n.contexts[i+1], c, current.contexts[i].GlobalKey())
	}
	n.restyle()
	for i, old := range current.contexts {
		if old.HasState() {
			n.contexts[i].AttachState(old.State())
		}
	}
	lc.carryState(n.contexts)

	tail := n.contexts[0]
	for _, child := range current.children {
		head := child.HeadComponent().ShallowCopy()
		cctx := component.NewContext(tail, head, child.HeadKey())
		var cn *InternalNode
		if mode == ModeCopy {
			cn = lc.copy(cctx, child, ModeCopy)
		} else {
			cn = lc.reconcile(cctx, child)
		}
		if cn != nil {
			n.children = append(n.children, cn)
		}
	}
	return n
}

func (lc *LayoutContext) carryState(ctxs []*component.Context) {
	for _, c := range ctxs {
		if c.HasState() {
			lc.State.Carry(c.GlobalKey(), c.State())
		}
	}
}
