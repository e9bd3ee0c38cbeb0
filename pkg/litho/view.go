package litho

import (
	"fmt"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/dynprops"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/trace"
	"github.com/go-drift/litho/pkg/transition"
	"github.com/go-drift/litho/pkg/view"
	"github.com/go-drift/litho/pkg/visibility"
)

// ViewOptions configures a LithoView.
type ViewOptions struct {
	// Config is copied into the view. The zero value means config.Default.
	Config config.Config
	Main   MainThread
	// Pools recycles mount content. Nil disables pooling.
	Pools       *pool.Registry
	HostContext pool.Context
	// Schedule drives disappear timers of the transitions extension.
	Schedule transition.Scheduler
	// Recorder receives trace events when tracing is enabled.
	Recorder *trace.Recorder
}

// LithoView hosts a ComponentTree: it mounts each committed LayoutState
// into its root host for the current visible rect. It is used on the main
// thread only.
type LithoView struct {
	cfg     config.Config
	main    MainThread
	pools   *pool.Registry
	hostCtx pool.Context

	host *view.Host
	ms   *mount.MountState
	tree *ComponentTree

	dynManager *dynprops.Manager
	visExt     *visibility.Extension
	visState   *mount.ExtensionState
	transExt   *transition.Extension
	transState *mount.ExtensionState

	layoutState    *LayoutState
	width, height  int
	viewport       graphics.Rect
	hasViewport    bool
	previousRect   graphics.Rect
	hasPrevious    bool
	transientCount int
	visibilityHint bool
	released       bool
}

// NewLithoView returns a view with the stock extensions the configuration
// enables.
func NewLithoView(opts ViewOptions) *LithoView {
	cfg := opts.Config
	if cfg.Schema == "" {
		cfg = config.Default()
	}
	main := opts.Main
	if main == nil {
		main = NewLooper()
	}
	v := &LithoView{
		cfg:            cfg,
		main:           main,
		pools:          opts.Pools,
		hostCtx:        opts.HostContext,
		host:           view.NewHost(),
		dynManager:     dynprops.NewManager(),
		visibilityHint: true,
	}
	v.ms = mount.New(v.host, mount.Options{
		Incremental: cfg.IncrementalMount,
		Recycling:   cfg.RecyclingMode,
		Pools:       opts.Pools,
		HostContext: opts.HostContext,
	})
	ext := cfg.Extensions
	if !ext.Enabled {
		return v
	}
	if ext.DynamicProps {
		v.ms.RegisterExtension(dynprops.NewExtension(v.dynManager))
	}
	if ext.Transitions {
		v.transExt = transition.NewExtension(opts.Schedule)
		v.transState = v.ms.RegisterExtension(v.transExt)
	}
	if ext.Visibility {
		v.visExt = visibility.NewExtension()
		v.visState = v.ms.RegisterExtension(v.visExt)
	}
	if ext.Tracing && opts.Recorder != nil {
		v.ms.RegisterExtension(trace.NewExtension(opts.Recorder))
	}
	return v
}

// Host returns the root host content is mounted into.
func (v *LithoView) Host() *view.Host { return v.host }

// ComponentTree returns the tree shown by the view, or nil.
func (v *LithoView) ComponentTree() *ComponentTree { return v.tree }

// LayoutState returns the mounted layout state, or nil.
func (v *LithoView) LayoutState() *LayoutState { return v.layoutState }

// MountState returns the view's mount state.
func (v *LithoView) MountState() *mount.MountState { return v.ms }

// MountDelegate returns the delegate extensions are registered with.
func (v *LithoView) MountDelegate() *mount.Delegate { return v.ms.Delegate() }

// DynamicPropsManager returns the manager binding dynamic values to the
// view's content.
func (v *LithoView) DynamicPropsManager() *dynprops.Manager { return v.dynManager }

// RegisterMountExtension adds e after the stock extensions. It panics with a
// configuration error when extensions are disabled.
func (v *LithoView) RegisterMountExtension(e mount.Extension) *mount.ExtensionState {
	if !v.cfg.Extensions.Enabled {
		errors.ConfigPanic("litho.LithoView.RegisterMountExtension",
			fmt.Errorf("%w: %s", errors.ErrExtensionsDisabled, e.Name()))
	}
	return v.ms.RegisterExtension(e)
}

// UnregisterMountExtension removes e, releasing its refs.
func (v *LithoView) UnregisterMountExtension(e mount.Extension) {
	v.ms.UnregisterExtension(e)
}

// SetComponentTree shows t. The previous tree, if any, stops notifying the
// view but is not released.
func (v *LithoView) SetComponentTree(t *ComponentTree) {
	if v.tree == t {
		return
	}
	if v.tree != nil {
		v.tree.detachView(v)
	}
	v.tree = t
	v.layoutState = nil
	v.hasPrevious = false
	if t == nil {
		v.ms.UnmountAllItems()
		return
	}
	t.attachView(v)
	if v.width > 0 || v.height > 0 {
		t.SetSizeSpec(flex.ExactSpec(v.width), flex.ExactSpec(v.height))
	}
	if ls := t.Committed(); ls != nil {
		v.onCommit(ls)
	}
}

// SetComponent shows c, creating a tree on first use, and lays out on the
// calling goroutine.
func (v *LithoView) SetComponent(c component.Component) {
	if v.tree == nil {
		v.SetComponentTree(v.newTree(c))
		return
	}
	v.tree.SetRoot(c)
}

// SetComponentAsync is SetComponent with a background layout.
func (v *LithoView) SetComponentAsync(c component.Component) {
	if v.tree == nil {
		t := v.newTree(nil)
		v.SetComponentTree(t)
		t.SetRootAsync(c)
		return
	}
	v.tree.SetRootAsync(c)
}

func (v *LithoView) newTree(root component.Component) *ComponentTree {
	return NewComponentTree(root, TreeOptions{Config: v.cfg, Main: v.main, HostContext: v.hostCtx})
}

// Measure lays the tree out under the given specs and returns its size.
func (v *LithoView) Measure(width, height flex.SizeSpec) (int, int) {
	if v.tree == nil {
		return width.Resolve(0), height.Resolve(0)
	}
	return v.tree.Measure(width, height)
}

// Layout sizes the view. The tree is laid out at exactly that size and the
// result mounted.
func (v *LithoView) Layout(width, height int) {
	v.width, v.height = width, height
	v.host.SetBounds(graphics.NewRect(0, 0, width, height))
	if v.tree == nil {
		return
	}
	v.tree.SetSizeSpec(flex.ExactSpec(width), flex.ExactSpec(height))
	if ls := v.tree.Committed(); ls != nil && ls != v.layoutState {
		v.onCommit(ls)
	} else {
		v.mountComponent()
	}
}

func (v *LithoView) onCommit(ls *LayoutState) {
	if v.released {
		return
	}
	v.layoutState = ls
	v.mountComponent()
}

// SetViewport sets the visible region in local coordinates and mounts what
// entered it.
func (v *LithoView) SetViewport(rect graphics.Rect) {
	v.viewport, v.hasViewport = rect, true
	v.mountComponent()
}

// ClearViewport makes the whole view visible.
func (v *LithoView) ClearViewport() {
	v.hasViewport = false
	v.mountComponent()
}

// Viewport returns the visible region and whether one is set.
func (v *LithoView) Viewport() (graphics.Rect, bool) { return v.viewport, v.hasViewport }

// NotifyVisibleBoundsChanged updates mounted content for rect, the visible
// part of the view in local coordinates.
func (v *LithoView) NotifyVisibleBoundsChanged(rect graphics.Rect) {
	v.viewport, v.hasViewport = rect, true
	v.mountComponent()
}

// NotifyVisibleBoundsChangedFull recomputes the visible rect from the
// viewport and mounts accordingly.
func (v *LithoView) NotifyVisibleBoundsChangedFull() {
	v.mountComponent()
}

// OnAttachedToWindow binds mounted content.
func (v *LithoView) OnAttachedToWindow() {
	v.ms.Attach()
	v.mountComponent()
}

// OnDetachedFromWindow unbinds mounted content.
func (v *LithoView) OnDetachedFromWindow() {
	v.ms.Detach()
}

// IsAttached reports whether mounted content is bound.
func (v *LithoView) IsAttached() bool { return v.ms.IsAttached() }

// SetHasTransientState counts transient state holders. While any exists
// the full bounds stay mounted.
func (v *LithoView) SetHasTransientState(has bool) {
	if has {
		v.transientCount++
		if v.transientCount == 1 {
			v.mountComponent()
		}
		return
	}
	if v.transientCount == 0 {
		return
	}
	v.transientCount--
	if v.transientCount == 0 {
		v.NotifyVisibleBoundsChangedFull()
	}
}

// HasTransientState reports whether a transient state holder exists.
func (v *LithoView) HasTransientState() bool { return v.transientCount > 0 }

// SetVisibilityHint pauses mounting while false. Hiding the view reports
// every visible output as invisible; showing it mounts again.
func (v *LithoView) SetVisibilityHint(visible bool) {
	if v.visibilityHint == visible {
		return
	}
	v.visibilityHint = visible
	if v.visExt != nil {
		v.visExt.SetVisibilityHint(v.visState, visible, v.visibleRect())
	}
	if visible {
		v.mountComponent()
	}
}

// SetMountStateDirty forgets the previous mount rect, so the next mount is
// a full mount.
func (v *LithoView) SetMountStateDirty() {
	v.hasPrevious = false
	v.ms.SetNeedsRemount(true)
}

// IsMountStateDirty reports whether the next mount is a full mount.
func (v *LithoView) IsMountStateDirty() bool { return !v.hasPrevious || v.ms.NeedsRemount() }

// UnmountAllItems unmounts every item, root host included.
func (v *LithoView) UnmountAllItems() {
	v.ms.UnmountAllItems()
	v.hasPrevious = false
}

// Release unmounts everything and releases the tree.
func (v *LithoView) Release() {
	if v.released {
		return
	}
	v.UnmountAllItems()
	if v.tree != nil {
		t := v.tree
		t.detachView(v)
		t.Release()
		v.tree = nil
	}
	v.layoutState = nil
	v.released = true
}

// Mount mounts ls for rect. It is the full mount path: the mount state
// diffs against what is mounted and the rect is remembered.
func (v *LithoView) Mount(ls *LayoutState, rect graphics.Rect) {
	v.layoutState = ls
	v.ms.Mount(ls.RenderTree(), rect)
	v.previousRect, v.hasPrevious = rect, true
}

// EndTransitions finishes every running disappearance.
func (v *LithoView) EndTransitions() {
	if v.transExt != nil {
		v.transExt.EndAll(v.transState)
	}
}

// DisappearingKeys returns the transition keys kept while disappearing.
func (v *LithoView) DisappearingKeys() []string {
	if v.transExt == nil {
		return nil
	}
	return v.transExt.Disappearing(v.transState)
}

// VisibleKeys returns the keys of outputs currently visible.
func (v *LithoView) VisibleKeys() map[string]struct{} {
	if v.visExt == nil {
		return nil
	}
	return visibility.VisibleKeys(v.visState)
}

// FindByTestKey returns mounted content with the given test key.
func (v *LithoView) FindByTestKey(key string) any {
	var found any
	var walk func(content any) bool
	walk = func(content any) bool {
		switch c := content.(type) {
		case *view.Host:
			if c.TestKey == key {
				found = c
				return true
			}
			for _, child := range c.Children() {
				if walk(child) {
					return true
				}
			}
		case *view.View:
			if c.TestKey == key {
				found = c
				return true
			}
		}
		return false
	}
	walk(v.host)
	return found
}

// Draw paints the mounted content onto c.
func (v *LithoView) Draw(c view.Canvas) {
	v.host.Draw(c, 0, 0)
}

func (v *LithoView) fullBounds() graphics.Rect {
	if v.width > 0 || v.height > 0 {
		return graphics.NewRect(0, 0, v.width, v.height)
	}
	if v.layoutState != nil {
		return v.layoutState.Bounds()
	}
	return graphics.Rect{}
}

func (v *LithoView) visibleRect() graphics.Rect {
	full := v.fullBounds()
	if v.transientCount > 0 || !v.cfg.IncrementalMount || !v.hasViewport {
		return full
	}
	return v.viewport.Intersect(full)
}

// mountComponent mounts the current layout state. It takes the fast path
// through NotifyVisibleBoundsChanged when only the rect changed.
func (v *LithoView) mountComponent() {
	ls := v.layoutState
	if ls == nil || !v.visibilityHint || v.released {
		return
	}
	rect := v.visibleRect()
	if v.hasPrevious && !v.ms.NeedsRemount() && v.ms.Tree() == ls.RenderTree() {
		if rect != v.previousRect {
			v.ms.NotifyVisibleBoundsChanged(rect)
			v.previousRect = rect
		}
		return
	}
	v.Mount(ls, rect)
}

// PrefillMountContentPool creates up to size contents for c's type in the
// pools of ctx and returns how many were kept.
func PrefillMountContentPool(reg *pool.Registry, ctx pool.Context, size int, c component.Component) int {
	m, ok := c.(component.Mountable)
	if !ok {
		return 0
	}
	d := newContentUnit(0, c, nil, dynprops.ScopeAll)
	return reg.Prefill(ctx, size, d, m.CreateMountContent)
}
