package litho

import (
	"context"
	"log"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/node"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/state"
)

// TreeOptions configures a ComponentTree.
type TreeOptions struct {
	// Config is copied into the tree. The zero value means config.Default.
	Config config.Config
	// Main receives commits. Nil creates a private Looper.
	Main MainThread
	// HostContext scopes content pools for components of the tree.
	HostContext pool.Context
}

// ComponentTree owns a root component, its state and its committed
// LayoutState. Layouts run on the calling goroutine or on background
// goroutines; commits run on the main thread in version order.
type ComponentTree struct {
	cfg   config.Config
	main  MainThread
	exec  *executor
	ctree *component.Tree
	state *state.Handler

	computing atomic.Int32

	mu         sync.Mutex
	root       component.Component
	widthSpec  flex.SizeSpec
	heightSpec flex.SizeSpec
	hasSize    bool
	version    uint64
	committed  *LayoutState
	cancel     context.CancelFunc
	released   bool
	view       *LithoView
	listeners  []func(*LayoutState)
}

type layoutRequest struct {
	version uint64
	root    component.Component
	w, h    flex.SizeSpec
	prev    *LayoutState
	state   *state.Handler
}

// NewComponentTree returns a tree for root. Nothing is laid out until a
// size is known.
func NewComponentTree(root component.Component, opts TreeOptions) *ComponentTree {
	cfg := opts.Config
	if cfg.Schema == "" {
		cfg = config.Default()
	}
	main := opts.Main
	if main == nil {
		main = NewLooper()
	}
	t := &ComponentTree{
		cfg:   cfg,
		main:  main,
		exec:  newExecutor(cfg.LayoutThreads),
		state: state.NewHandler(),
		root:  root,
	}
	t.ctree = &component.Tree{Config: cfg, Host: opts.HostContext, Updater: t}
	return t
}

// Config returns the tree's configuration.
func (t *ComponentTree) Config() config.Config { return t.cfg }

// Main returns the tree's main thread.
func (t *ComponentTree) Main() MainThread { return t.main }

// Root returns the current root component.
func (t *ComponentTree) Root() component.Component {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// Committed returns the committed LayoutState, or nil.
func (t *ComponentTree) Committed() *LayoutState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed
}

// Version returns the version of the latest layout request.
func (t *ComponentTree) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// CommittedVersion returns the version of the committed LayoutState.
func (t *ComponentTree) CommittedVersion() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed == nil {
		return 0
	}
	return t.committed.version
}

// StateFor returns the committed state of the component with key.
func (t *ComponentTree) StateFor(key string) (any, bool) { return t.state.Get(key) }

// StateKeys returns the keys with committed state.
func (t *ComponentTree) StateKeys() []string { return t.state.Keys() }

// HasPendingStateUpdates reports whether state updates wait for a layout.
func (t *ComponentTree) HasPendingStateUpdates() bool { return t.state.HasPendingUpdates() }

// AddListener registers fn to run on the main thread after every commit.
func (t *ComponentTree) AddListener(fn func(*LayoutState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// IsReleased reports whether Release was called.
func (t *ComponentTree) IsReleased() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

func (t *ComponentTree) checkReleased(op string) {
	t.mu.Lock()
	released := t.released
	t.mu.Unlock()
	if released {
		errors.Invariant(op, errors.ErrReleasedTree)
	}
}

// SetRoot replaces the root and lays out on the calling goroutine.
func (t *ComponentTree) SetRoot(root component.Component) {
	t.checkReleased("litho.ComponentTree.SetRoot")
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
	t.request(false)
}

// SetRootAsync replaces the root and lays out in the background.
func (t *ComponentTree) SetRootAsync(root component.Component) {
	t.checkReleased("litho.ComponentTree.SetRootAsync")
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
	t.request(true)
}

// SetSizeSpec sets the size constraints and lays out on the calling
// goroutine if they changed.
func (t *ComponentTree) SetSizeSpec(width, height flex.SizeSpec) {
	t.checkReleased("litho.ComponentTree.SetSizeSpec")
	if t.setSize(width, height) {
		t.request(false)
	}
}

// SetSizeSpecAsync is SetSizeSpec with a background layout.
func (t *ComponentTree) SetSizeSpecAsync(width, height flex.SizeSpec) {
	t.checkReleased("litho.ComponentTree.SetSizeSpecAsync")
	if t.setSize(width, height) {
		t.request(true)
	}
}

func (t *ComponentTree) setSize(width, height flex.SizeSpec) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasSize && t.widthSpec == width && t.heightSpec == height {
		return false
	}
	t.widthSpec, t.heightSpec, t.hasSize = width, height, true
	return true
}

// Measure lays out under the given specs and returns the resulting size.
// The layout is committed like any sync layout.
func (t *ComponentTree) Measure(width, height flex.SizeSpec) (int, int) {
	t.checkReleased("litho.ComponentTree.Measure")
	t.setSize(width, height)
	t.mu.Lock()
	if c := t.committed; c != nil && c.root == t.root && c.widthSpec == width && c.heightSpec == height &&
		!t.state.HasPendingUpdates() {
		t.mu.Unlock()
		return c.width, c.height
	}
	t.mu.Unlock()
	ls, err := t.request(false)
	if err != nil || ls == nil {
		return width.Resolve(0), height.Resolve(0)
	}
	return ls.width, ls.height
}

// EnqueueStateUpdate queues fn for the component with key and requests a
// layout. Updates enqueued while a layout runs are picked up by a layout
// posted to the main thread.
func (t *ComponentTree) EnqueueStateUpdate(key string, fn state.Update, async bool) {
	if t.IsReleased() {
		log.Printf("litho: dropping state update for %s on a released tree", key)
		return
	}
	t.state.Enqueue(key, fn)
	if t.computing.Load() > 0 {
		t.main.Post(func() { t.request(async) })
		return
	}
	t.request(async)
}

// UpdateStateSync enqueues fn and lays out on the calling goroutine.
func (t *ComponentTree) UpdateStateSync(key string, fn state.Update) {
	t.EnqueueStateUpdate(key, fn, false)
}

// UpdateStateAsync enqueues fn and lays out in the background.
func (t *ComponentTree) UpdateStateAsync(key string, fn state.Update) {
	t.EnqueueStateUpdate(key, fn, true)
}

// WaitIdle blocks until background layouts have finished. Their commits
// may still be queued on the main thread.
func (t *ComponentTree) WaitIdle() { t.exec.Wait() }

// request starts a layout of the current root and size. A sync request
// returns the computed state, committed inline when called on the main
// thread.
func (t *ComponentTree) request(async bool) (*LayoutState, error) {
	t.mu.Lock()
	if t.released || t.root == nil || !t.hasSize {
		t.mu.Unlock()
		return nil, nil
	}
	t.version++
	req := layoutRequest{
		version: t.version,
		root:    t.root,
		w:       t.widthSpec,
		h:       t.heightSpec,
		prev:    t.committed,
		state:   t.state.Snapshot(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	if t.cfg.CancelSupersededLayouts {
		if t.cancel != nil {
			t.cancel()
		}
		t.cancel = cancel
	}
	t.mu.Unlock()

	if async {
		t.exec.Go(func() {
			defer cancel()
			ls, err := t.calculate(ctx, req)
			if err != nil {
				t.abandon(req.version, err)
				return
			}
			t.main.Post(func() { t.commit(ls) })
		})
		return nil, nil
	}
	defer cancel()
	ls, err := t.calculate(ctx, req)
	if err != nil {
		t.abandon(req.version, err)
		return nil, err
	}
	if t.main.IsCurrent() {
		t.commit(ls)
	} else {
		t.main.Post(func() { t.commit(ls) })
	}
	return ls, nil
}

func (t *ComponentTree) calculate(ctx context.Context, req layoutRequest) (*LayoutState, error) {
	t.computing.Add(1)
	defer t.computing.Add(-1)

	lc := node.NewLayoutContext(ctx, t.ctree, req.state)
	if t.cfg.LayoutCaching && req.prev != nil {
		lc.Previous = req.prev.result
	}
	var (
		root *node.InternalNode
		err  error
	)
	if t.cfg.Reconciliation && req.prev != nil && req.prev.root == req.root && req.prev.rootNode != nil {
		root, err = lc.ReconcileRoot(req.prev.rootNode, req.root)
	} else {
		root, err = lc.ResolveRoot(req.root)
	}
	if err != nil {
		return nil, err
	}
	res, err := lc.Layout(root, req.w, req.h)
	if err != nil {
		return nil, err
	}
	ls := &LayoutState{
		version:     req.version,
		root:        req.root,
		rootNode:    root,
		result:      res,
		widthSpec:   req.w,
		heightSpec:  req.h,
		attachables: make(map[string]*component.Context),
		state:       req.state,
		stats:       lc.Stats,
	}
	if res != nil {
		ls.width, ls.height = res.Width, res.Height
	} else {
		ls.width, ls.height = req.w.Resolve(0), req.h.Resolve(0)
	}
	buildOutputs(ls, t.cfg.DefaultPoolSize)
	t.debugf("computed layout v%d %dx%d %+v", ls.version, ls.width, ls.height, ls.stats)
	return ls, nil
}

// abandon drops a failed layout. Superseded layouts are expected; anything
// else is reported.
func (t *ComponentTree) abandon(version uint64, err error) {
	if errors.Is(err, context.Canceled) {
		t.debugf("layout v%d abandoned: %v", version, err)
		return
	}
	errors.ReportLayout("litho.ComponentTree.calculate", version, err)
}

// commit publishes ls unless a newer state is committed. It runs on the
// main thread.
func (t *ComponentTree) commit(ls *LayoutState) {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		log.Printf("litho: dropping layout v%d for a released tree", ls.version)
		return
	}
	if t.committed != nil && ls.version <= t.committed.version {
		t.mu.Unlock()
		t.debugf("skipping stale layout v%d", ls.version)
		return
	}
	prev := t.committed
	t.committed = ls
	t.state.Commit(ls.state)
	v := t.view
	listeners := slices.Clone(t.listeners)
	t.mu.Unlock()

	t.debugf("committed layout v%d", ls.version)
	dispatchAttach(prev, ls)
	if v != nil {
		v.onCommit(ls)
	}
	for _, fn := range listeners {
		fn(ls)
	}
}

// dispatchAttach tells attachables that entered the tree and those that
// left it.
func dispatchAttach(prev, next *LayoutState) {
	var before, after map[string]*component.Context
	if prev != nil {
		before = prev.attachables
	}
	if next != nil {
		after = next.attachables
	}
	for _, key := range slices.Sorted(maps.Keys(before)) {
		if _, ok := after[key]; !ok {
			ctx := before[key]
			a := ctx.Component().(component.Attachable)
			ctx.Guard("OnDetached", func() error { return a.OnDetached(ctx) })
		}
	}
	for _, key := range slices.Sorted(maps.Keys(after)) {
		if _, ok := before[key]; !ok {
			ctx := after[key]
			a := ctx.Component().(component.Attachable)
			ctx.Guard("OnAttached", func() error { return a.OnAttached(ctx) })
		}
	}
}

// Release detaches every attachable and makes further use of the tree an
// invariant violation. Pending commits are dropped.
func (t *ComponentTree) Release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	if t.cancel != nil {
		t.cancel()
	}
	committed := t.committed
	v := t.view
	t.view = nil
	t.mu.Unlock()

	dispatchAttach(committed, nil)
	if v != nil && v.tree == t {
		v.tree = nil
	}
}

func (t *ComponentTree) attachView(v *LithoView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = v
}

func (t *ComponentTree) detachView(v *LithoView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view == v {
		t.view = nil
	}
}

func (t *ComponentTree) debugf(format string, args ...any) {
	if t.cfg.Debug {
		log.Printf("litho: "+format, args...)
	}
}
