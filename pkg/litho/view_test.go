package litho_test

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/litho"
	"github.com/go-drift/litho/pkg/mount"
	lithotest "github.com/go-drift/litho/pkg/testing"
	"github.com/go-drift/litho/pkg/view"
	"github.com/go-drift/litho/pkg/widget"
)

func mustPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want one wrapping %v", r, target)
		}
	}()
	fn()
}

// counter renders its state as text.
type counter struct {
	component.Props
}

func (c *counter) Kind() component.Kind             { return component.KindLayout }
func (c *counter) ShallowCopy() component.Component { return component.Copy(c) }

func (c *counter) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*counter)
	return ok && c.Props.IsEquivalentTo(&o.Props)
}

func (c *counter) InitialState(*component.Context) any { return 0 }

func (c *counter) Render(ctx *component.Context) component.Component {
	return &widget.Text{Text: fmt.Sprintf("count %d", ctx.State())}
}

func increment(v any) any { return v.(int) + 1 }

func rows(n int) *widget.Column {
	col := &widget.Column{}
	for i := range n {
		key := fmt.Sprintf("r%d", i)
		col.Children = append(col.Children, &widget.Surface{
			Props: component.Props{Key: key, TestKey: key, Height: flex.Px(1)},
		})
	}
	return col
}

func TestSetRootMountsContent(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(&widget.Text{Text: "hello", Props: component.Props{TestKey: "greeting"}})

	if tester.FindByTestKey("greeting") == nil {
		t.Fatal("greeting is not mounted")
	}
	if got := tester.Render(); !strings.HasPrefix(got, "hello") {
		t.Errorf("Render = %q, want hello on the first line", got)
	}
	if tester.Tree().CommittedVersion() == 0 {
		t.Error("no layout was committed")
	}
}

func TestAsyncStateUpdatesKeepUnaffectedContent(t *testing.T) {
	cfg := lithotest.DefaultConfig()
	cfg.LayoutThreads = 1
	tester := lithotest.NewTesterWithConfig(t, cfg)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&counter{Props: component.Props{Key: "count"}},
		&widget.Surface{Props: component.Props{TestKey: "static", Height: flex.Px(1)}},
	}})

	static := tester.FindByTestKey("static")
	if static == nil {
		t.Fatal("static surface is not mounted")
	}
	before := tester.MountState().Stats()

	tree := tester.Tree()
	tester.Looper().Run(func() {
		tree.UpdateStateAsync("Column,$count", increment)
		tree.UpdateStateAsync("Column,$count", increment)
	})
	tester.Drain()

	if got, _ := tree.StateFor("Column,$count"); got != 2 {
		t.Errorf("counter state = %v, want 2", got)
	}
	if got := tester.Render(); !strings.Contains(got, "count 2") {
		t.Errorf("Render = %q, want count 2", got)
	}
	if tester.FindByTestKey("static") != static {
		t.Error("unaffected surface got new content")
	}
	if got := tester.MountState().Stats().Unmounted; got != before.Unmounted {
		t.Errorf("state updates unmounted %d items", got-before.Unmounted)
	}
}

func TestDynamicAlphaWithoutRelayout(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	alpha := dynamic.New[float32](0.8)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&widget.Surface{Props: component.Props{TestKey: "s", Height: flex.Px(1), Alpha: alpha}},
	}})

	v, ok := tester.FindByTestKey("s").(*view.View)
	if !ok {
		t.Fatalf("content = %T, want *view.View", tester.FindByTestKey("s"))
	}
	if got := v.Alpha(); got != 0.8 {
		t.Fatalf("alpha = %v, want 0.8", got)
	}
	version := tester.Tree().CommittedVersion()

	tester.Looper().Run(func() { alpha.Set(0.5) })
	if got := v.Alpha(); got != 0.5 {
		t.Errorf("alpha after Set = %v, want 0.5", got)
	}
	if got := tester.Tree().CommittedVersion(); got != version {
		t.Errorf("committed version moved from %d to %d", version, got)
	}
}

func TestDynamicAlphaOnDrawableUsesHost(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	alpha := dynamic.New[float32](0.4)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&widget.Text{Text: "x", Props: component.Props{TestKey: "t", Alpha: alpha}},
	}})

	h, ok := tester.FindByTestKey("t").(*view.Host)
	if !ok {
		t.Fatalf("content = %T, want the wrapping *view.Host", tester.FindByTestKey("t"))
	}
	if got := h.Alpha(); got != 0.4 {
		t.Errorf("host alpha = %v, want 0.4", got)
	}
}

func TestShrinkingViewportUnmountsOnce(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(rows(5))
	if got := tester.MountedCount(); got != 6 {
		t.Fatalf("MountedCount = %d, want root host and 5 rows", got)
	}

	tester.SetViewport(graphics.NewRect(0, 0, 80, 3))
	if got := tester.MountedCount(); got != 4 {
		t.Fatalf("MountedCount = %d, want root host and 3 rows", got)
	}
	before := tester.MountState().Stats()

	tester.SetViewport(graphics.NewRect(0, 0, 80, 2))
	after := tester.MountState().Stats()
	if got := after.Unmounted - before.Unmounted; got != 1 {
		t.Errorf("unmounted %d items, want 1", got)
	}
	if got := after.Acquired() - before.Acquired(); got != 0 {
		t.Errorf("acquired %d contents, want 0", got)
	}
	if tester.FindByTestKey("r2") != nil {
		t.Error("r2 is still mounted")
	}
	if tester.FindByTestKey("r1") == nil {
		t.Error("r1 was unmounted")
	}

	tester.ClearViewport()
	if got := tester.MountedCount(); got != 6 {
		t.Errorf("MountedCount after ClearViewport = %d, want 6", got)
	}
}

func TestTransientStateMountsEverything(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(rows(4))
	tester.SetViewport(graphics.NewRect(0, 0, 80, 1))
	v := tester.View()

	tester.Looper().Run(func() { v.SetHasTransientState(true) })
	if got := tester.MountedCount(); got != 5 {
		t.Errorf("MountedCount with transient state = %d, want 5", got)
	}
	tester.Looper().Run(func() { v.SetHasTransientState(false) })
	if got := tester.MountedCount(); got != 2 {
		t.Errorf("MountedCount after transient state = %d, want 2", got)
	}
}

func TestPooledContentIsReset(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&widget.Surface{Props: component.Props{
			Key: "a", TestKey: "a", Height: flex.Px(1), Alpha: dynamic.New[float32](0.3),
		}},
	}})
	first, ok := tester.FindByTestKey("a").(*view.View)
	if !ok {
		t.Fatal("surface a is not mounted")
	}
	before := tester.MountState().Stats()

	tester.SetRoot(&widget.Column{Children: []component.Component{
		&widget.Surface{Props: component.Props{Key: "b", TestKey: "b", Height: flex.Px(1)}},
	}})
	if got := tester.FindByTestKey("b"); got != any(first) {
		t.Fatalf("surface b content = %p, want the pooled %p", got, first)
	}
	if got := first.Alpha(); got != view.DefaultAlpha {
		t.Errorf("reacquired content alpha = %v, want %v", got, view.DefaultAlpha)
	}
	if got := tester.MountState().Stats().Reacquired - before.Reacquired; got < 1 {
		t.Errorf("reacquired %d contents, want at least 1", got)
	}
}

func TestPrefillMountContentPool(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	n := litho.PrefillMountContentPool(tester.Pools(), tester.HostContext(), 2, &widget.Surface{})
	if n != 2 {
		t.Fatalf("PrefillMountContentPool = %d, want 2", n)
	}
	tester.SetRoot(rows(1))
	if got := tester.MountState().Stats().Reacquired; got < 1 {
		t.Errorf("Reacquired = %d, want the prefilled content to be used", got)
	}
}

func transitionRows(withA bool) component.Component {
	col := &widget.Column{}
	if withA {
		col.Children = append(col.Children, &widget.Row{
			Props: component.Props{
				Key: "a", TestKey: "a", Height: flex.Px(1),
				TransitionKey: "a", DisappearDuration: 300 * time.Millisecond,
			},
			Children: []component.Component{&widget.Text{Text: "alpha"}},
		})
	}
	col.Children = append(col.Children, &widget.Row{
		Props:    component.Props{Key: "b", TestKey: "b", Height: flex.Px(1)},
		Children: []component.Component{&widget.Text{Text: "beta"}},
	})
	return col
}

func TestDisappearingItemStaysMounted(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(transitionRows(true))
	if tester.FindByTestKey("a") == nil {
		t.Fatal("row a is not mounted")
	}

	tester.SetRoot(transitionRows(false))
	if tester.FindByTestKey("a") == nil {
		t.Fatal("disappearing row was unmounted right away")
	}
	if diff := cmp.Diff([]string{"a"}, tester.View().DisappearingKeys()); diff != "" {
		t.Errorf("DisappearingKeys mismatch (-want +got):\n%s", diff)
	}

	tester.Advance(299 * time.Millisecond)
	if tester.FindByTestKey("a") == nil {
		t.Fatal("row a unmounted before its duration elapsed")
	}
	tester.Advance(time.Millisecond)
	if tester.FindByTestKey("a") != nil {
		t.Error("row a still mounted after its duration")
	}
	if got := tester.View().DisappearingKeys(); len(got) != 0 {
		t.Errorf("DisappearingKeys = %v, want none", got)
	}
}

func TestReturningItemKeepsContent(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(transitionRows(true))
	host := tester.FindByTestKey("a")

	tester.SetRoot(transitionRows(false))
	tester.SetRoot(transitionRows(true))
	if got := tester.View().DisappearingKeys(); len(got) != 0 {
		t.Errorf("DisappearingKeys = %v, want none", got)
	}
	if tester.FindByTestKey("a") != host {
		t.Error("returning row got new content")
	}
	if got := tester.Clock().PendingTimers(); got != 0 {
		t.Errorf("PendingTimers = %d, want the disappear timer cancelled", got)
	}
}

func TestEndTransitions(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(transitionRows(true))
	tester.SetRoot(transitionRows(false))

	tester.Looper().Run(tester.View().EndTransitions)
	if tester.FindByTestKey("a") != nil {
		t.Error("row a still mounted after EndTransitions")
	}
}

func TestVisibilityEvents(t *testing.T) {
	var log []string
	col := &widget.Column{}
	for i := range 4 {
		col.Children = append(col.Children, &widget.Surface{Props: component.Props{
			Key:         fmt.Sprintf("r%d", i),
			Height:      flex.Px(1),
			OnVisible:   func(ev component.VisibilityEvent) { log = append(log, "visible "+ev.Key) },
			OnInvisible: func(ev component.VisibilityEvent) { log = append(log, "invisible "+ev.Key) },
		}})
	}
	tester := lithotest.NewTesterWithT(t)
	tester.SetViewport(graphics.NewRect(0, 0, 80, 2))
	tester.SetRoot(col)

	want := []string{"visible Column,$r0", "visible Column,$r1"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Fatalf("initial events mismatch (-want +got):\n%s", diff)
	}

	log = nil
	tester.SetViewport(graphics.NewRect(0, 1, 80, 2))
	want = []string{"invisible Column,$r0", "visible Column,$r2"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("scroll events mismatch (-want +got):\n%s", diff)
	}
	keys := slices.Sorted(maps.Keys(tester.View().VisibleKeys()))
	if diff := cmp.Diff([]string{"Column,$r1", "Column,$r2"}, keys); diff != "" {
		t.Errorf("VisibleKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibilityHint(t *testing.T) {
	var log []string
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&widget.Surface{Props: component.Props{
			Key:         "s",
			Height:      flex.Px(1),
			OnVisible:   func(ev component.VisibilityEvent) { log = append(log, "visible") },
			OnInvisible: func(ev component.VisibilityEvent) { log = append(log, "invisible") },
		}},
	}})
	v := tester.View()
	tester.Looper().Run(func() { v.SetVisibilityHint(false) })
	tester.Looper().Run(func() { v.SetVisibilityHint(true) })

	if diff := cmp.Diff([]string{"visible", "invisible", "visible"}, log); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

// lifecycle records attach and detach callbacks.
type lifecycle struct {
	component.Props
	log *[]string
}

func (l *lifecycle) Kind() component.Kind                      { return component.KindLayout }
func (l *lifecycle) ShallowCopy() component.Component          { return component.Copy(l) }
func (l *lifecycle) IsEquivalentTo(o component.Component) bool { return o == component.Component(l) }

func (l *lifecycle) Render(*component.Context) component.Component {
	return &widget.Text{Text: "x"}
}

func (l *lifecycle) OnAttached(c *component.Context) error {
	*l.log = append(*l.log, "attached "+c.GlobalKey())
	return nil
}

func (l *lifecycle) OnDetached(c *component.Context) error {
	*l.log = append(*l.log, "detached "+c.GlobalKey())
	return nil
}

func TestAttachAndDetach(t *testing.T) {
	var log []string
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&lifecycle{Props: component.Props{Key: "l"}, log: &log},
	}})
	tester.SetRoot(&widget.Column{})

	want := []string{"attached Column,$l", "detached Column,$l"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

// failing panics while rendering.
type failing struct {
	component.Props
}

func (f *failing) Kind() component.Kind                      { return component.KindLayout }
func (f *failing) ShallowCopy() component.Component          { return component.Copy(f) }
func (f *failing) IsEquivalentTo(o component.Component) bool { return o == component.Component(f) }

func (f *failing) Render(*component.Context) component.Component {
	panic("boom")
}

func TestErrorBoundaryRendersFallback(t *testing.T) {
	var reported []error
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(&widget.ErrorBoundary{
		Child: &failing{},
		Fallback: func(err error) component.Component {
			return &widget.Text{Text: "failed"}
		},
		Report: func(err error) { reported = append(reported, err) },
	})

	if got := tester.Render(); !strings.HasPrefix(got, "failed") {
		t.Errorf("Render = %q, want the fallback", got)
	}
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	var cbErr *errors.CallbackError
	if !errors.As(reported[0], &cbErr) || cbErr.Callback != "Render" {
		t.Errorf("reported %v, want a Render callback error", reported[0])
	}
}

func TestStaleCommitIsSkipped(t *testing.T) {
	cfg := lithotest.DefaultConfig()
	looper := litho.NewLooper()
	tree := litho.NewComponentTree(nil, litho.TreeOptions{Config: cfg, Main: looper})
	a, b := &widget.Text{Text: "a"}, &widget.Text{Text: "b"}

	looper.Run(func() {
		tree.SetSizeSpec(flex.ExactSpec(10), flex.ExactSpec(1))
		tree.SetRootAsync(a)
		tree.SetRoot(b)
	})
	looper.RunUntilIdle()

	if got := tree.Committed().Root(); got != component.Component(b) {
		t.Errorf("committed root = %v, want the newer b", got)
	}
	if got, want := tree.CommittedVersion(), tree.Version(); got != want {
		t.Errorf("CommittedVersion = %d, want %d", got, want)
	}
}

func TestListenersSeeCommits(t *testing.T) {
	looper := litho.NewLooper()
	tree := litho.NewComponentTree(&widget.Text{Text: "x"}, litho.TreeOptions{
		Config: lithotest.DefaultConfig(),
		Main:   looper,
	})
	var versions []uint64
	tree.AddListener(func(ls *litho.LayoutState) { versions = append(versions, ls.Version()) })

	looper.Run(func() { tree.SetSizeSpec(flex.ExactSpec(4), flex.ExactSpec(1)) })
	looper.Run(func() { tree.SetRoot(&widget.Text{Text: "y"}) })

	if diff := cmp.Diff([]uint64{1, 2}, versions); diff != "" {
		t.Errorf("committed versions mismatch (-want +got):\n%s", diff)
	}
	w, h := tree.Measure(flex.AtMostSpec(10), flex.UnspecifiedSpec())
	if w != 1 || h != 1 {
		t.Errorf("Measure = %dx%d, want 1x1", w, h)
	}
}

func TestReleasedTreePanics(t *testing.T) {
	tree := litho.NewComponentTree(nil, litho.TreeOptions{Config: lithotest.DefaultConfig()})
	tree.Release()
	if !tree.IsReleased() {
		t.Fatal("IsReleased = false after Release")
	}
	mustPanic(t, errors.ErrReleasedTree, func() {
		tree.SetRoot(&widget.Text{Text: "x"})
	})
}

type noopExtension struct {
	mount.BaseExtension
}

func (*noopExtension) Name() string { return "noop" }

func TestRegisterExtensionWhenDisabledPanics(t *testing.T) {
	cfg := lithotest.DefaultConfig()
	cfg.Extensions.Enabled = false
	tester := lithotest.NewTesterWithConfig(t, cfg)
	mustPanic(t, errors.ErrExtensionsDisabled, func() {
		tester.View().RegisterMountExtension(&noopExtension{})
	})
}

func TestDetachUnbindsContent(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(rows(2))
	v := tester.View()

	tester.Looper().Run(v.OnDetachedFromWindow)
	if v.IsAttached() {
		t.Fatal("view still attached")
	}
	tester.Looper().Run(v.OnAttachedToWindow)
	if !v.IsAttached() || tester.MountedCount() != 3 {
		t.Errorf("after reattach attached=%v mounted=%d, want true and 3", v.IsAttached(), tester.MountedCount())
	}
}

func TestReleaseUnmountsEverything(t *testing.T) {
	tester := lithotest.NewTester(lithotest.DefaultConfig())
	tester.SetRoot(rows(3))
	tree := tester.Tree()

	tester.Cleanup()
	if got := tester.MountedCount(); got != 0 {
		t.Errorf("MountedCount after release = %d, want 0", got)
	}
	if !tree.IsReleased() {
		t.Error("tree not released with its view")
	}
}

func TestDumpRenderTree(t *testing.T) {
	tester := lithotest.NewTesterWithT(t)
	tester.SetRoot(rows(2))
	dump := tester.LayoutState().DumpRenderTree()
	for _, want := range []string{"Column,$r0", "Column,$r1"} {
		if !strings.Contains(dump, want) {
			t.Errorf("DumpRenderTree missing %q:\n%s", want, dump)
		}
	}
	if kinds := tester.Recorder().Kinds(); !slices.Contains(kinds, "mount") {
		t.Errorf("trace kinds = %v, want mount events", kinds)
	}
}

// ruler is a text that counts its measurements.
type ruler struct {
	widget.Text
	calls *int
}

func (r *ruler) ShallowCopy() component.Component { return component.Copy(r) }

func (r *ruler) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*ruler)
	return ok && r.Text.IsEquivalentTo(&o.Text)
}

func (r *ruler) Measure(c *component.Context, width, height flex.SizeSpec) (int, int) {
	*r.calls++
	return r.Text.Measure(c, width, height)
}

func TestReusedSiblingKeepsGeometryAndMeasurements(t *testing.T) {
	cfg := lithotest.DefaultConfig()
	cfg.ReuseInternalNodes = true
	cfg.LayoutCaching = true
	tester := lithotest.NewTesterWithConfig(t, cfg)
	var calls int
	tester.SetRoot(&widget.Column{Children: []component.Component{
		&counter{Props: component.Props{Key: "count"}},
		&ruler{Text: widget.Text{Text: "ruler"}, calls: &calls},
	}})

	before := tester.LayoutState()
	sibling := before.Result().Children[1]
	measured := calls
	if measured == 0 {
		t.Fatal("ruler was never measured")
	}

	tree := tester.Tree()
	tester.Looper().Run(func() { tree.UpdateStateSync("Column,$count", increment) })
	tester.Drain()

	after := tester.LayoutState()
	if after == before {
		t.Fatal("state update committed no new layout")
	}
	if got := after.Stats().Reused; got != 1 {
		t.Errorf("Reused = %d, want the ruler node", got)
	}
	got := after.Result().Children[1]
	if got.Node != sibling.Node {
		t.Error("unaffected sibling node was not reused")
	}
	if got.Bounds() != sibling.Bounds() {
		t.Errorf("sibling bounds = %v, want %v", got.Bounds(), sibling.Bounds())
	}
	if calls != measured {
		t.Errorf("reused sibling measured %d more times, want 0", calls-measured)
	}
	if !strings.Contains(tester.Render(), "count 1") {
		t.Errorf("Render = %q, want count 1", tester.Render())
	}
}
