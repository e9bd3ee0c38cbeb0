package testing

import (
	"testing"
	"time"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/litho"
	"github.com/go-drift/litho/pkg/mount"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/trace"
	"github.com/go-drift/litho/pkg/view"
)

const (
	// DefaultTestWidth is the default width of the test view in cells.
	DefaultTestWidth = 80
	// DefaultTestHeight is the default height of the test view in cells.
	DefaultTestHeight = 24
	// maxDrainRounds bounds Drain when callbacks keep scheduling layouts.
	maxDrainRounds = 100
)

// Tester drives a LithoView on a private main looper. Layouts run inline
// on the calling goroutine and their commits are applied by Drain, so a
// test observes exactly the state a real main thread would after each step.
type Tester struct {
	looper   *litho.Looper
	pools    *pool.Registry
	ctx      pool.Context
	clock    *FakeClock
	recorder *trace.Recorder
	view     *litho.LithoView
	cfg      config.Config
	width    int
	height   int
}

// DefaultConfig returns the default configuration with inline layouts and
// tracing enabled.
func DefaultConfig() config.Config {
	cfg := config.Default()
	cfg.LayoutThreads = 0
	cfg.Extensions.Tracing = true
	return cfg
}

// NewTester creates a tester for cfg. The zero Config means DefaultConfig.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester(cfg config.Config) *Tester {
	if cfg.Schema == "" {
		cfg = DefaultConfig()
	}
	t := &Tester{
		looper:   litho.NewLooper(),
		pools:    pool.NewRegistry(),
		ctx:      pool.NewRootContext("tester"),
		clock:    NewFakeClock(),
		cfg:      cfg,
		width:    DefaultTestWidth,
		height:   DefaultTestHeight,
		recorder: trace.NewRecorder(1024),
	}
	t.recorder.Now = t.clock.Now
	t.pools.OnContextCreated(t.ctx)
	t.view = litho.NewLithoView(litho.ViewOptions{
		Config:      cfg,
		Main:        t.looper,
		Pools:       t.pools,
		HostContext: t.ctx,
		Schedule:    t.clock.Scheduler(t.looper.Post),
		Recorder:    t.recorder,
	})
	t.looper.Run(func() { t.view.Layout(t.width, t.height) })
	return t
}

// NewTesterWithT creates a tester with DefaultConfig that cleans up via
// t.Cleanup(). This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	return NewTesterWithConfig(t, DefaultConfig())
}

// NewTesterWithConfig is NewTesterWithT for a custom configuration.
func NewTesterWithConfig(t *testing.T, cfg config.Config) *Tester {
	tester := NewTester(cfg)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup releases the view and destroys the tester's content pools.
func (t *Tester) Cleanup() {
	t.looper.Run(t.view.Release)
	t.looper.RunUntilIdle()
	t.pools.OnContextDestroyed(t.ctx)
	t.recorder.Close()
}

// View returns the LithoView under test.
func (t *Tester) View() *litho.LithoView { return t.view }

// Tree returns the view's component tree, or nil before SetRoot.
func (t *Tester) Tree() *litho.ComponentTree { return t.view.ComponentTree() }

// Looper returns the tester's main thread.
func (t *Tester) Looper() *litho.Looper { return t.looper }

// Pools returns the content pool registry.
func (t *Tester) Pools() *pool.Registry { return t.pools }

// HostContext returns the root context pools are scoped to.
func (t *Tester) HostContext() pool.Context { return t.ctx }

// Clock returns the fake clock driving transition timers.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Recorder returns the trace recorder of the view.
func (t *Tester) Recorder() *trace.Recorder { return t.recorder }

// Config returns the tester's configuration.
func (t *Tester) Config() config.Config { return t.cfg }

// MountState returns the view's mount state.
func (t *Tester) MountState() *mount.MountState { return t.view.MountState() }

// SetRoot shows c, lays it out on the calling goroutine and mounts it.
func (t *Tester) SetRoot(c component.Component) {
	t.looper.Run(func() { t.view.SetComponent(c) })
	t.Drain()
}

// SetRootAsync shows c with a background layout. Nothing is committed
// until Drain.
func (t *Tester) SetRootAsync(c component.Component) {
	t.looper.Run(func() { t.view.SetComponentAsync(c) })
}

// Layout resizes the view and mounts the resulting layout.
func (t *Tester) Layout(width, height int) {
	t.width, t.height = width, height
	t.looper.Run(func() { t.view.Layout(width, height) })
	t.Drain()
}

// Drain waits for background layouts and runs main thread callbacks until
// neither produces more work. It returns the number of callbacks run.
func (t *Tester) Drain() int {
	total := 0
	for range maxDrainRounds {
		if tree := t.Tree(); tree != nil {
			tree.WaitIdle()
		}
		n := t.looper.RunUntilIdle()
		total += n
		if n == 0 {
			break
		}
	}
	return total
}

// Advance moves the fake clock forward and drains the callbacks of timers
// that fired.
func (t *Tester) Advance(d time.Duration) {
	t.clock.Advance(d)
	t.Drain()
}

// SetViewport restricts the visible region of the view.
func (t *Tester) SetViewport(rect graphics.Rect) {
	t.looper.Run(func() { t.view.SetViewport(rect) })
	t.Drain()
}

// ClearViewport makes the whole view visible again.
func (t *Tester) ClearViewport() {
	t.looper.Run(t.view.ClearViewport)
	t.Drain()
}

// Viewport returns the visible region and whether one is set.
func (t *Tester) Viewport() (graphics.Rect, bool) { return t.view.Viewport() }

// FindByTestKey returns mounted content tagged with key, or nil.
func (t *Tester) FindByTestKey(key string) any { return t.view.FindByTestKey(key) }

// MountedCount returns the number of mounted items, root host included.
func (t *Tester) MountedCount() int { return t.view.MountState().MountItemCount() }

// LayoutState returns the layout state the view last mounted.
func (t *Tester) LayoutState() *litho.LayoutState { return t.view.LayoutState() }

// Render draws the mounted content onto a grid the size of the view and
// returns it as text.
func (t *Tester) Render() string {
	g := view.NewGrid(t.width, t.height)
	t.view.Draw(g)
	return g.String()
}
