package mount

import (
	"fmt"
	"sort"

	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/view"
)

// Host is content that holds other content.
type Host interface {
	MountChild(index int, content any)
	UnmountChild(content any) bool
	MoveChild(content any, index int)
}

// MountItem is a mounted piece of content.
type MountItem struct {
	node     *RenderTreeNode
	content  any
	parent   *MountItem
	children []*MountItem
	bound    bool
}

func (m *MountItem) Content() any                    { return m.content }
func (m *MountItem) RenderTreeNode() *RenderTreeNode { return m.node }
func (m *MountItem) RenderUnit() RenderUnit          { return m.node.unit }
func (m *MountItem) IsBound() bool                   { return m.bound }

// Stats counts mount work since the mount state was created.
type Stats struct {
	Mounted   int
	Unmounted int
	Updated   int
	Moved     int
	// Created counts content built with CreateContent, Reacquired content
	// taken from a pool, and Released content handed back to one.
	Created    int
	Reacquired int
	Released   int
}

// Acquired returns the number of content acquisitions.
func (s Stats) Acquired() int { return s.Created + s.Reacquired }

// Options configures a MountState.
type Options struct {
	// Incremental mounts only items intersecting the visible rect.
	Incremental bool
	Recycling   config.RecyclingMode
	Pools       *pool.Registry
	HostContext pool.Context
}

// MountState mounts render trees into a root host. It is used on the main
// thread only.
type MountState struct {
	root     any
	opts     Options
	delegate *Delegate

	tree         *RenderTree
	items        map[uint64]*MountItem
	rect         graphics.Rect
	mounting     bool
	needsRemount bool
	attached     bool
	stats        Stats
}

// New returns a mount state that mounts into root, typically a *view.Host.
func New(root any, opts Options) *MountState {
	ms := &MountState{
		root:     root,
		opts:     opts,
		items:    make(map[uint64]*MountItem),
		attached: true,
	}
	ms.delegate = newDelegate(ms)
	return ms
}

// Delegate returns the extension delegate.
func (ms *MountState) Delegate() *Delegate { return ms.delegate }

// RegisterExtension adds ext and returns its state.
func (ms *MountState) RegisterExtension(ext Extension) *ExtensionState {
	return ms.delegate.Register(ext)
}

// UnregisterExtension removes ext.
func (ms *MountState) UnregisterExtension(ext Extension) {
	ms.delegate.Unregister(ext)
}

// Tree returns the last mounted tree.
func (ms *MountState) Tree() *RenderTree { return ms.tree }

// VisibleRect returns the rect of the last mount pass.
func (ms *MountState) VisibleRect() graphics.Rect { return ms.rect }

// Stats returns the work counters.
func (ms *MountState) Stats() Stats { return ms.stats }

// IsMounting reports whether a mount pass is running.
func (ms *MountState) IsMounting() bool { return ms.mounting }

// NeedsRemount reports whether the next Mount must run even for the same
// tree and rect.
func (ms *MountState) NeedsRemount() bool { return ms.needsRemount }

// SetNeedsRemount forces the next Mount to run.
func (ms *MountState) SetNeedsRemount(v bool) { ms.needsRemount = v }

// IsMounted reports whether the item with id is mounted.
func (ms *MountState) IsMounted(id uint64) bool {
	_, ok := ms.items[id]
	return ok
}

// ContentFor returns the mounted content of id, or nil.
func (ms *MountState) ContentFor(id uint64) any {
	if item, ok := ms.items[id]; ok {
		return item.content
	}
	return nil
}

// ItemFor returns the mount item of id.
func (ms *MountState) ItemFor(id uint64) (*MountItem, bool) {
	item, ok := ms.items[id]
	return item, ok
}

// MountItemCount returns the number of mounted items, root included.
func (ms *MountState) MountItemCount() int { return len(ms.items) }

// Mount brings mounted content in line with tree for the visible rect.
// Mounting from inside a mount pass is an invariant violation.
func (ms *MountState) Mount(tree *RenderTree, rect graphics.Rect) {
	if tree == nil {
		return
	}
	if ms.mounting {
		errors.Invariant("mount.MountState.Mount", errors.ErrReentrantMount)
	}
	if tree == ms.tree && rect == ms.rect && !ms.needsRemount {
		return
	}
	ms.mounting = true
	defer func() { ms.mounting = false }()

	prev := ms.tree
	if prev != nil && (ms.needsRemount || prev.root.unit.ID() != tree.root.unit.ID()) {
		ms.unmountAll()
		prev = nil
	}
	ms.delegate.beforeMount(tree, rect)
	ms.tree = tree
	ms.rect = rect

	if prev != nil && prev != tree {
		ms.unmountRemoved(tree)
	}
	for _, node := range tree.flat {
		ms.delegate.beforeMountItem(node)
	}
	ms.mountRequired()
	ms.delegate.afterMount()
	ms.needsRemount = false
}

// NotifyVisibleBoundsChanged mounts items entering rect and unmounts items
// leaving it, without changing the tree.
func (ms *MountState) NotifyVisibleBoundsChanged(rect graphics.Rect) {
	if ms.tree == nil || ms.mounting {
		return
	}
	ms.mounting = true
	defer func() { ms.mounting = false }()
	ms.delegate.visibleBoundsChanged(rect)
	ms.rect = rect
	ms.mountRequired()
}

// unmountRemoved unmounts items that are not in tree, unless a ref holds
// them, one of their hosts or an item below them.
func (ms *MountState) unmountRemoved(tree *RenderTree) {
	for _, item := range ms.sortedItems() {
		if _, still := ms.items[item.node.unit.ID()]; !still {
			continue
		}
		if _, ok := tree.Lookup(item.node.unit.ID()); ok || item.parent == nil {
			continue
		}
		if ms.heldByRef(item) {
			continue
		}
		ms.unmountItem(item)
	}
}

func (ms *MountState) heldByRef(item *MountItem) bool {
	for it := item; it.parent != nil; it = it.parent {
		if ms.delegate.HasAcquiredRef(it.node.unit.ID()) {
			return true
		}
	}
	return ms.holdsRefBelow(item)
}

// holdsRefBelow reports whether a ref holds any item mounted under item.
func (ms *MountState) holdsRefBelow(item *MountItem) bool {
	for _, c := range item.children {
		if ms.delegate.HasAcquiredRef(c.node.unit.ID()) || ms.holdsRefBelow(c) {
			return true
		}
	}
	return false
}

func (ms *MountState) mountRequired() {
	required := ms.requiredSet()
	for i, node := range ms.tree.flat {
		item, mounted := ms.items[node.unit.ID()]
		switch {
		case required[i]:
			if !mounted {
				ms.mountNode(node)
			} else {
				ms.updateItem(item, node)
			}
		case mounted && !ms.holdsRefBelow(item):
			ms.unmountItem(item)
		}
	}
}

// requiredSet marks the nodes that must be mounted: required nodes and
// every host above one.
func (ms *MountState) requiredSet() []bool {
	flat := ms.tree.flat
	required := make([]bool, len(flat))
	for i := len(flat) - 1; i >= 0; i-- {
		node := flat[i]
		if !required[i] {
			required[i] = ms.isRequired(node)
		}
		if required[i] && node.parent != nil {
			required[node.parent.position] = true
		}
	}
	return required
}

func (ms *MountState) isRequired(node *RenderTreeNode) bool {
	if node.parent == nil || !ms.opts.Incremental {
		return true
	}
	if ms.delegate.HasAcquiredRef(node.unit.ID()) {
		return true
	}
	return node.absolute.Intersects(ms.rect)
}

// mountNode mounts node, mounting its parent hosts first.
func (ms *MountState) mountNode(node *RenderTreeNode) *MountItem {
	unit := node.unit
	if _, ok := ms.items[unit.ID()]; ok {
		errors.Invariant("mount.MountState.mountNode",
			fmt.Errorf("%w: %s", errors.ErrDoubleMount, unit.Description()))
	}
	item := &MountItem{node: node}
	if node.parent == nil {
		item.content = ms.root
	} else {
		parent, ok := ms.items[node.parent.unit.ID()]
		if !ok {
			parent = ms.mountNode(node.parent)
		}
		item.parent = parent
		parent.children = append(parent.children, item)
		item.content = ms.acquire(unit)
	}
	ms.items[unit.ID()] = item

	unit.Mount(item.content, node.data)
	ms.delegate.mountItem(ms.delegate.states, unit, item.content, node.data)
	if item.parent != nil {
		ms.hostOf(item.parent).MountChild(node.position, item.content)
		ms.applyBounds(item)
	}
	if ms.attached {
		ms.bindItem(item)
	}
	ms.stats.Mounted++
	return item
}

func (ms *MountState) bindItem(item *MountItem) {
	unit, data := item.node.unit, item.node.data
	unit.Bind(item.content, data)
	ms.delegate.bindItem(ms.delegate.states, unit, item.content, data)
	item.bound = true
}

func (ms *MountState) unbindItem(item *MountItem) {
	unit, data := item.node.unit, item.node.data
	ms.delegate.unbindItem(ms.delegate.states, unit, item.content, data)
	unit.Unbind(item.content, data)
	item.bound = false
}

func (ms *MountState) applyBounds(item *MountItem) {
	view.SetContentBounds(item.content, item.node.bounds)
	ms.delegate.boundsApplied(item.node, item.content)
}

func (ms *MountState) hostOf(item *MountItem) Host {
	h, ok := item.content.(Host)
	if !ok {
		errors.Invariant("mount.MountState.hostOf", fmt.Errorf("%w: %s is not a host",
			errors.ErrNotMounted, item.node.unit.Description()))
	}
	return h
}

// updateItem moves item to node, rebinding content when the unit changed.
func (ms *MountState) updateItem(item *MountItem, node *RenderTreeNode) {
	prev := item.node
	if prev == node {
		return
	}
	if item.parent != nil && (node.parent == nil || item.parent.node.unit.ID() != node.parent.unit.ID()) {
		ms.unmountItem(item)
		ms.mountNode(node)
		return
	}
	item.node = node
	if item.parent != nil && prev.position != node.position {
		ms.hostOf(item.parent).MoveChild(item.content, node.position)
		ms.stats.Moved++
	}

	prevUnit, nextUnit := prev.unit, node.unit
	if prevUnit != nextUnit {
		updateUnit := nextUnit.ShouldUpdate(prevUnit, prev.data, node.data)
		exts := ms.delegate.statesToUpdate(prevUnit, prev.data, nextUnit, node.data)
		if updateUnit || len(exts) > 0 {
			ms.stats.Updated++
			bound := item.bound
			if bound {
				ms.delegate.unbindItem(exts, prevUnit, item.content, prev.data)
				if updateUnit {
					prevUnit.Unbind(item.content, prev.data)
				}
			}
			ms.delegate.unmountItem(exts, prevUnit, item.content, prev.data)
			if updateUnit {
				prevUnit.Unmount(item.content, prev.data)
				nextUnit.Mount(item.content, node.data)
			}
			ms.delegate.mountItem(exts, nextUnit, item.content, node.data)
			if bound {
				if updateUnit {
					nextUnit.Bind(item.content, node.data)
				}
				ms.delegate.bindItem(exts, nextUnit, item.content, node.data)
			}
		}
	}
	if item.parent != nil && prev.bounds != node.bounds {
		ms.applyBounds(item)
	}
}

// unmountItem unmounts item after its children and releases its content.
// Unmounting an item that is not mounted is an invariant violation.
func (ms *MountState) unmountItem(item *MountItem) {
	if cur, ok := ms.items[item.node.unit.ID()]; !ok || cur != item {
		errors.Invariant("mount.MountState.unmountItem",
			fmt.Errorf("%w: %s", errors.ErrNotMounted, item.node.unit.Description()))
	}
	for i := len(item.children) - 1; i >= 0; i-- {
		ms.unmountItem(item.children[i])
	}
	unit, data := item.node.unit, item.node.data
	if item.bound {
		ms.unbindItem(item)
	}
	ms.delegate.unmountItem(ms.delegate.states, unit, item.content, data)
	unit.Unmount(item.content, data)
	delete(ms.items, unit.ID())
	ms.stats.Unmounted++
	if item.parent == nil {
		return
	}
	siblings := item.parent.children
	for i, it := range siblings {
		if it == item {
			item.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	ms.hostOf(item.parent).UnmountChild(item.content)
	ms.release(unit, item.content)
}

// sortedItems returns mounted items by position, latest first, so that
// children unmount before their hosts.
func (ms *MountState) sortedItems() []*MountItem {
	out := make([]*MountItem, 0, len(ms.items))
	for _, it := range ms.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].node.position > out[j].node.position
	})
	return out
}

func (ms *MountState) acquire(unit RenderUnit) any {
	if ms.opts.Pools != nil && ms.opts.Recycling != config.RecyclingNoPooling {
		if c := ms.opts.Pools.Acquire(ms.opts.HostContext, unit); c != nil {
			if ms.opts.Recycling != config.RecyclingNoViewReuse {
				ms.stats.Reacquired++
				return c
			}
		}
	}
	ms.stats.Created++
	return unit.CreateContent(ms.opts.HostContext)
}

func (ms *MountState) release(unit RenderUnit, content any) {
	if ms.opts.Pools == nil || ms.opts.Recycling == config.RecyclingNoPooling {
		return
	}
	if ms.opts.Pools.Release(ms.opts.HostContext, unit, content) {
		ms.stats.Released++
	}
}

func (ms *MountState) mountIfNeeded(id uint64) {
	if ms.mounting || ms.tree == nil || ms.IsMounted(id) {
		return
	}
	if node, ok := ms.tree.Lookup(id); ok {
		ms.mountNode(node)
	}
}

// unmountIfUnneeded unmounts the item of id once nothing requires it, then
// its removed hosts that nothing requires any more either.
func (ms *MountState) unmountIfUnneeded(id uint64) {
	if ms.mounting || ms.tree == nil {
		return
	}
	item, ok := ms.items[id]
	if !ok {
		return
	}
	required := ms.requiredSet()
	for item.parent != nil && !ms.needed(item, required) {
		parent := item.parent
		ms.unmountItem(item)
		item = parent
	}
}

func (ms *MountState) needed(item *MountItem, required []bool) bool {
	if ms.heldByRef(item) {
		return true
	}
	node, inTree := ms.tree.Lookup(item.node.unit.ID())
	return inTree && required[node.position]
}

// Attach binds every mounted item.
func (ms *MountState) Attach() {
	if ms.attached {
		return
	}
	ms.attached = true
	for _, node := range ms.tree.flatOrNil() {
		if item, ok := ms.items[node.unit.ID()]; ok && !item.bound {
			ms.bindItem(item)
		}
	}
}

// Detach unbinds every mounted item.
func (ms *MountState) Detach() {
	if !ms.attached {
		return
	}
	ms.attached = false
	for _, item := range ms.sortedItems() {
		if item.bound {
			ms.unbindItem(item)
		}
	}
	ms.delegate.unbind()
}

// IsAttached reports whether items are bound.
func (ms *MountState) IsAttached() bool { return ms.attached }

// UnmountAllItems unmounts everything, root included, and forgets the tree.
func (ms *MountState) UnmountAllItems() {
	if ms.tree == nil {
		return
	}
	ms.unmountAll()
	ms.needsRemount = true
}

func (ms *MountState) unmountAll() {
	if root, ok := ms.items[ms.tree.root.unit.ID()]; ok {
		ms.unmountItem(root)
	}
	for _, item := range ms.sortedItems() {
		if _, ok := ms.items[item.node.unit.ID()]; ok {
			ms.unmountItem(item)
		}
	}
	ms.delegate.unmount()
	ms.tree = nil
}

func (t *RenderTree) flatOrNil() []*RenderTreeNode {
	if t == nil {
		return nil
	}
	return t.flat
}
