package mount

import (
	"fmt"

	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
)

// Extension hooks into the mount life cycle. Item callbacks run in
// registration order for mount and bind, and in reverse order for unbind and
// unmount.
type Extension interface {
	Name() string
	// CreateState returns the extension's per-mount-state data, available
	// as ExtensionState.Data.
	CreateState() any

	// BeforeMount runs before a tree is mounted and may acquire refs.
	BeforeMount(s *ExtensionState, tree *RenderTree, rect graphics.Rect)
	// BeforeMountItem runs for every node of the tree, in position order,
	// before its mount decision.
	BeforeMountItem(s *ExtensionState, node *RenderTreeNode)
	AfterMount(s *ExtensionState)

	OnMountItem(s *ExtensionState, unit RenderUnit, content, data any)
	// ShouldUpdateItem reports whether the extension must rerun its item
	// callbacks when prev is replaced by next on the same content.
	ShouldUpdateItem(s *ExtensionState, prev RenderUnit, prevData any, next RenderUnit, nextData any) bool
	OnBindItem(s *ExtensionState, unit RenderUnit, content, data any)
	OnUnbindItem(s *ExtensionState, unit RenderUnit, content, data any)
	OnUnmountItem(s *ExtensionState, unit RenderUnit, content, data any)
	OnBoundsAppliedToItem(s *ExtensionState, node *RenderTreeNode, content any)

	// OnUnbind runs when the host detaches; OnUnmount when every item is
	// unmounted.
	OnUnbind(s *ExtensionState)
	OnUnmount(s *ExtensionState)
}

// VisibleBoundsListener is implemented by extensions that react to visible
// rect changes without a new tree.
type VisibleBoundsListener interface {
	OnVisibleBoundsChanged(s *ExtensionState, rect graphics.Rect)
}

// BaseExtension implements every Extension hook as a no-op.
type BaseExtension struct{}

func (BaseExtension) CreateState() any                                            { return nil }
func (BaseExtension) BeforeMount(*ExtensionState, *RenderTree, graphics.Rect)     {}
func (BaseExtension) BeforeMountItem(*ExtensionState, *RenderTreeNode)            {}
func (BaseExtension) AfterMount(*ExtensionState)                                  {}
func (BaseExtension) OnMountItem(*ExtensionState, RenderUnit, any, any)           {}
func (BaseExtension) OnBindItem(*ExtensionState, RenderUnit, any, any)            {}
func (BaseExtension) OnUnbindItem(*ExtensionState, RenderUnit, any, any)          {}
func (BaseExtension) OnUnmountItem(*ExtensionState, RenderUnit, any, any)         {}
func (BaseExtension) OnBoundsAppliedToItem(*ExtensionState, *RenderTreeNode, any) {}
func (BaseExtension) OnUnbind(*ExtensionState)                                    {}
func (BaseExtension) OnUnmount(*ExtensionState)                                   {}
func (BaseExtension) ShouldUpdateItem(*ExtensionState, RenderUnit, any, RenderUnit, any) bool {
	return false
}

// ExtensionState is an extension's handle on one mount state. It records
// the mount refs the extension holds.
type ExtensionState struct {
	ext      Extension
	delegate *Delegate
	owned    map[uint64]struct{}

	// Data is owned by the extension, initialized from CreateState.
	Data any
}

// Extension returns the extension the state belongs to.
func (s *ExtensionState) Extension() Extension { return s.ext }

// MountState returns the mount state the extension is registered with.
func (s *ExtensionState) MountState() *MountState { return s.delegate.owner }

// AcquireMountRef takes a ref on id, keeping the item mounted. With mount
// set, an item that is not mounted is mounted right away.
func (s *ExtensionState) AcquireMountRef(id uint64, mount bool) {
	if _, ok := s.owned[id]; ok {
		return
	}
	s.owned[id] = struct{}{}
	if mount {
		s.delegate.AcquireAndMountRef(id)
	} else {
		s.delegate.AcquireMountRef(id)
	}
}

// ReleaseMountRef drops a ref taken with AcquireMountRef. With unmount set,
// an item no longer required is unmounted right away. Releasing a ref the
// extension does not hold is an invariant violation.
func (s *ExtensionState) ReleaseMountRef(id uint64, unmount bool) {
	if _, ok := s.owned[id]; !ok {
		errors.Invariant("mount.ExtensionState.ReleaseMountRef",
			fmt.Errorf("%w: %s releasing %d", errors.ErrUnownedRef, s.ext.Name(), id))
	}
	delete(s.owned, id)
	if unmount {
		s.delegate.ReleaseAndUnmountRef(id)
	} else {
		s.delegate.ReleaseMountRef(id)
	}
}

// OwnsReference reports whether the extension holds a ref on id.
func (s *ExtensionState) OwnsReference(id uint64) bool {
	_, ok := s.owned[id]
	return ok
}

// ReleaseAllAcquiredReferences drops every ref the extension holds. Outside
// a mount pass, items no longer required are unmounted right away.
func (s *ExtensionState) ReleaseAllAcquiredReferences() {
	unmount := !s.delegate.owner.IsMounting()
	for id := range s.owned {
		delete(s.owned, id)
		if unmount {
			s.delegate.ReleaseAndUnmountRef(id)
		} else {
			s.delegate.ReleaseMountRef(id)
		}
	}
}

// ContentFor returns the mounted content of id, or nil.
func (s *ExtensionState) ContentFor(id uint64) any {
	return s.delegate.owner.ContentFor(id)
}

// Delegate dispatches life cycle callbacks to extensions and counts mount
// refs.
type Delegate struct {
	owner  *MountState
	states []*ExtensionState
	refs   map[uint64]int
}

func newDelegate(owner *MountState) *Delegate {
	return &Delegate{owner: owner, refs: make(map[uint64]int)}
}

// Register adds ext and returns its state. Registering twice returns the
// existing state.
func (d *Delegate) Register(ext Extension) *ExtensionState {
	if s := d.StateOf(ext); s != nil {
		return s
	}
	s := &ExtensionState{ext: ext, delegate: d, owned: make(map[uint64]struct{}), Data: ext.CreateState()}
	d.states = append(d.states, s)
	return s
}

// Unregister removes ext, releasing its refs.
func (d *Delegate) Unregister(ext Extension) {
	for i, s := range d.states {
		if s.ext == ext {
			s.ReleaseAllAcquiredReferences()
			d.states = append(d.states[:i], d.states[i+1:]...)
			return
		}
	}
}

// StateOf returns the state of ext, or nil.
func (d *Delegate) StateOf(ext Extension) *ExtensionState {
	for _, s := range d.states {
		if s.ext == ext {
			return s
		}
	}
	return nil
}

// Extensions returns the registered extensions in order.
func (d *Delegate) Extensions() []Extension {
	out := make([]Extension, len(d.states))
	for i, s := range d.states {
		out[i] = s.ext
	}
	return out
}

// RefCount returns the number of refs held on id.
func (d *Delegate) RefCount(id uint64) int { return d.refs[id] }

// HasAcquiredRef reports whether any ref is held on id.
func (d *Delegate) HasAcquiredRef(id uint64) bool { return d.refs[id] > 0 }

// AcquireMountRef increments the ref count of id.
func (d *Delegate) AcquireMountRef(id uint64) {
	d.refs[id]++
}

// AcquireAndMountRef increments the ref count of id and mounts the item if
// it is in the current tree and not mounted.
func (d *Delegate) AcquireAndMountRef(id uint64) {
	d.AcquireMountRef(id)
	d.owner.mountIfNeeded(id)
}

// ReleaseMountRef decrements the ref count of id. Releasing at zero is an
// invariant violation.
func (d *Delegate) ReleaseMountRef(id uint64) {
	if d.refs[id] <= 0 {
		errors.Invariant("mount.Delegate.ReleaseMountRef", fmt.Errorf("%w: %d", errors.ErrUnownedRef, id))
	}
	d.refs[id]--
	if d.refs[id] == 0 {
		delete(d.refs, id)
	}
}

// ReleaseAndUnmountRef decrements the ref count of id and unmounts the item
// once no ref holds it and it is not otherwise required.
func (d *Delegate) ReleaseAndUnmountRef(id uint64) {
	d.ReleaseMountRef(id)
	if d.refs[id] == 0 {
		d.owner.unmountIfUnneeded(id)
	}
}

func (d *Delegate) beforeMount(tree *RenderTree, rect graphics.Rect) {
	for _, s := range d.states {
		s.ext.BeforeMount(s, tree, rect)
	}
}

func (d *Delegate) beforeMountItem(node *RenderTreeNode) {
	for _, s := range d.states {
		s.ext.BeforeMountItem(s, node)
	}
}

func (d *Delegate) afterMount() {
	for _, s := range d.states {
		s.ext.AfterMount(s)
	}
}

func (d *Delegate) visibleBoundsChanged(rect graphics.Rect) {
	for _, s := range d.states {
		if l, ok := s.ext.(VisibleBoundsListener); ok {
			l.OnVisibleBoundsChanged(s, rect)
		}
	}
}

func (d *Delegate) mountItem(states []*ExtensionState, unit RenderUnit, content, data any) {
	for _, s := range states {
		s.ext.OnMountItem(s, unit, content, data)
	}
}

func (d *Delegate) bindItem(states []*ExtensionState, unit RenderUnit, content, data any) {
	for _, s := range states {
		s.ext.OnBindItem(s, unit, content, data)
	}
}

func (d *Delegate) unbindItem(states []*ExtensionState, unit RenderUnit, content, data any) {
	for i := len(states) - 1; i >= 0; i-- {
		states[i].ext.OnUnbindItem(states[i], unit, content, data)
	}
}

func (d *Delegate) unmountItem(states []*ExtensionState, unit RenderUnit, content, data any) {
	for i := len(states) - 1; i >= 0; i-- {
		states[i].ext.OnUnmountItem(states[i], unit, content, data)
	}
}

func (d *Delegate) boundsApplied(node *RenderTreeNode, content any) {
	for _, s := range d.states {
		s.ext.OnBoundsAppliedToItem(s, node, content)
	}
}

// statesToUpdate returns the extensions that must rerun item callbacks.
func (d *Delegate) statesToUpdate(prev RenderUnit, prevData any, next RenderUnit, nextData any) []*ExtensionState {
	var out []*ExtensionState
	for _, s := range d.states {
		if s.ext.ShouldUpdateItem(s, prev, prevData, next, nextData) {
			out = append(out, s)
		}
	}
	return out
}

func (d *Delegate) unbind() {
	for _, s := range d.states {
		s.ext.OnUnbind(s)
	}
}

func (d *Delegate) unmount() {
	for _, s := range d.states {
		s.ext.OnUnmount(s)
	}
}
