// Package visibility dispatches visibility events for mounted components as
// the visible rect of their host changes.
//
// An output is visible while its absolute bounds intersect the visible
// rect. Focused means the output covers at least half of the viewport, or is
// entirely visible when it is smaller than half. A full impression is
// reported once every edge of the output has been seen.
package visibility

import (
	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
)

// Output is the visibility record of one component with handlers.
type Output struct {
	Key     string
	Bounds  graphics.Rect
	Props   *component.Props
	Context *component.Context
}

// Input is implemented by render tree data carrying visibility outputs.
type Input interface {
	VisibilityOutputs() []Output
}

type edge uint8

const (
	edgeTop edge = 1 << iota
	edgeBottom
	edgeLeft
	edgeRight

	allEdges = edgeTop | edgeBottom | edgeLeft | edgeRight
)

type item struct {
	focused        bool
	fullImpression bool
	seen           edge
	visibleRect    graphics.Rect
	output         Output
}

type extState struct {
	outputs []Output
	items   map[string]*item
	hidden  bool
}

// Extension dispatches visibility events.
type Extension struct {
	mount.BaseExtension
}

// NewExtension returns a visibility extension.
func NewExtension() *Extension { return &Extension{} }

func (e *Extension) Name() string { return "visibility" }

func (e *Extension) CreateState() any { return &extState{items: make(map[string]*item)} }

func stateOf(s *mount.ExtensionState) *extState { return s.Data.(*extState) }

func (e *Extension) BeforeMount(s *mount.ExtensionState, tree *mount.RenderTree, _ graphics.Rect) {
	st := stateOf(s)
	st.outputs = nil
	if in, ok := tree.Data().(Input); ok {
		st.outputs = in.VisibilityOutputs()
	}
}

func (e *Extension) AfterMount(s *mount.ExtensionState) {
	process(stateOf(s), s.MountState().VisibleRect())
}

func (e *Extension) OnVisibleBoundsChanged(s *mount.ExtensionState, rect graphics.Rect) {
	process(stateOf(s), rect)
}

func (e *Extension) OnUnbind(s *mount.ExtensionState) { clearAll(stateOf(s)) }

func (e *Extension) OnUnmount(s *mount.ExtensionState) { clearAll(stateOf(s)) }

// SetVisibilityHint reports whether the host is visible at all. Hiding the
// host makes every output invisible; showing it processes rect again.
func (e *Extension) SetVisibilityHint(s *mount.ExtensionState, visible bool, rect graphics.Rect) {
	st := stateOf(s)
	st.hidden = !visible
	if visible {
		process(st, rect)
	} else {
		clearAll(st)
	}
}

// VisibleKeys returns the keys currently considered visible.
func VisibleKeys(s *mount.ExtensionState) map[string]struct{} {
	st := stateOf(s)
	out := make(map[string]struct{}, len(st.items))
	for k := range st.items {
		out[k] = struct{}{}
	}
	return out
}

func process(st *extState, rect graphics.Rect) {
	if st.hidden {
		return
	}
	current := make(map[string]struct{}, len(st.outputs))
	for _, out := range st.outputs {
		current[out.Key] = struct{}{}
		visible := out.Bounds.Intersect(rect)
		it := st.items[out.Key]
		isVisible := !visible.IsEmpty()
		if !isVisible {
			if it != nil {
				dispatchGone(it)
				delete(st.items, out.Key)
			}
			continue
		}
		if it == nil {
			it = &item{output: out}
			st.items[out.Key] = it
			dispatch(out, out.Props.OnVisible, "OnVisible", visible)
		}
		it.output = out

		if visible != it.visibleRect {
			it.visibleRect = visible
			dispatch(out, out.Props.OnVisibilityChanged, "OnVisibilityChanged", visible)
		}

		focused := inFocusedRange(rect, out.Bounds, visible)
		if focused && !it.focused {
			it.focused = true
			dispatch(out, out.Props.OnFocused, "OnFocused", visible)
		} else if !focused && it.focused {
			it.focused = false
			dispatch(out, out.Props.OnUnfocused, "OnUnfocused", visible)
		}

		if !it.fullImpression {
			it.seen |= seenEdges(out.Bounds, visible)
			if it.seen == allEdges {
				it.fullImpression = true
				dispatch(out, out.Props.OnFullImpression, "OnFullImpression", visible)
			}
		}
	}
	for key, it := range st.items {
		if _, ok := current[key]; !ok {
			dispatchGone(it)
			delete(st.items, key)
		}
	}
}

func clearAll(st *extState) {
	for key, it := range st.items {
		dispatchGone(it)
		delete(st.items, key)
	}
}

func dispatchGone(it *item) {
	if it.focused {
		dispatch(it.output, it.output.Props.OnUnfocused, "OnUnfocused", graphics.Rect{})
	}
	dispatch(it.output, it.output.Props.OnVisibilityChanged, "OnVisibilityChanged", graphics.Rect{})
	dispatch(it.output, it.output.Props.OnInvisible, "OnInvisible", graphics.Rect{})
}

func inFocusedRange(viewport, bounds, visible graphics.Rect) bool {
	half := viewport.Area() / 2
	if bounds.Area() >= half {
		return visible.Area() >= half
	}
	return bounds == visible
}

func seenEdges(bounds, visible graphics.Rect) edge {
	var e edge
	if visible.IsEmpty() {
		return 0
	}
	if visible.Y == bounds.Y {
		e |= edgeTop
	}
	if visible.Bottom() == bounds.Bottom() {
		e |= edgeBottom
	}
	if visible.X == bounds.X {
		e |= edgeLeft
	}
	if visible.Right() == bounds.Right() {
		e |= edgeRight
	}
	return e
}

func dispatch(out Output, handler func(component.VisibilityEvent), name string, visible graphics.Rect) {
	if handler == nil {
		return
	}
	ev := component.VisibilityEvent{Key: out.Key, Bounds: out.Bounds, VisibleRect: visible}
	if out.Bounds.Width > 0 {
		ev.VisibleWidthRatio = float64(visible.Width) / float64(out.Bounds.Width)
	}
	if out.Bounds.Height > 0 {
		ev.VisibleHeightRatio = float64(visible.Height) / float64(out.Bounds.Height)
	}
	if out.Context == nil {
		handler(ev)
		return
	}
	out.Context.Guard(name, func() error {
		handler(ev)
		return nil
	})
}

var _ mount.Extension = (*Extension)(nil)
