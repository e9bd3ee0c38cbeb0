package node

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/state"
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

func TestFrozenNodeRejectsMutation(t *testing.T) {
	n := resolve(t, testTree(true), state.NewHandler(), &widget.Text{Text: "x"})
	if !n.IsFrozen() {
		t.Fatal("resolved root is not frozen")
	}
	mustPanic(t, errors.ErrFrozenNode, func() { n.FlexGrow(1) })
	mustPanic(t, errors.ErrFrozenNode, func() { n.AddChild(newInternalNode()) })
}

func TestFreezeInheritsFlags(t *testing.T) {
	root := &widget.Column{
		Props:    component.Props{Disabled: true},
		Children: []component.Component{&widget.Text{Text: "x"}},
	}
	n := resolve(t, testTree(true), state.NewHandler(), root)
	if !n.ChildAt(0).Disabled() {
		t.Error("child of a disabled node is not disabled")
	}
}

func TestChainFoldsProps(t *testing.T) {
	inner := &widget.Text{Props: component.Props{Background: graphics.ColorRed, TransitionKey: "inner"}}
	root := &wrapper{
		Props: component.Props{TransitionKey: "outer", DisappearDuration: time.Second},
		child: inner,
	}
	n := resolve(t, testTree(true), state.NewHandler(), root)

	if got := len(n.Components()); got != 2 {
		t.Fatalf("chain length = %d, want 2", got)
	}
	if n.HeadComponent() != component.Component(root) || n.TailComponent() != component.Component(inner) {
		t.Error("head must be the wrapper and tail the text")
	}
	if got := n.TransitionKey(); got != "outer" {
		t.Errorf("TransitionKey = %q, want the outer key", got)
	}
	if got := n.DisappearDuration(); got != time.Second {
		t.Errorf("DisappearDuration = %v, want 1s", got)
	}
	if got := n.Background(); got != graphics.ColorRed {
		t.Errorf("Background = %v, want red", got)
	}
	if !n.NeedsHostView() {
		t.Error("transition keyed drawable must be wrapped in a host view")
	}
}

// wrapper renders child unchanged.
type wrapper struct {
	component.Props
	child component.Component
}

func (w *wrapper) Kind() component.Kind                      { return component.KindLayout }
func (w *wrapper) ShallowCopy() component.Component          { return component.Copy(w) }
func (w *wrapper) IsEquivalentTo(o component.Component) bool { return o == component.Component(w) }
func (w *wrapper) Render(*component.Context) component.Component {
	return w.child
}

func TestRenderingNothingResolvesToNil(t *testing.T) {
	n := resolve(t, testTree(true), state.NewHandler(), &wrapper{})
	if n != nil {
		t.Errorf("ResolveRoot = %v, want nil", n)
	}
}

func TestCanceledLayoutIsAbandoned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lc := NewLayoutContext(ctx, testTree(true), nil)
	n, err := lc.ResolveRoot(feed())
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != nil {
		t.Error("canceled layout returned a node")
	}
}

func TestLayoutColumn(t *testing.T) {
	root := &widget.Column{Children: []component.Component{
		&widget.Text{Text: "hi"},
		&widget.SolidColor{Props: component.Props{Height: flex.Px(2)}},
	}}
	lc := NewLayoutContext(context.Background(), testTree(true), nil)
	n, err := lc.ResolveRoot(root)
	if err != nil {
		t.Fatal(err)
	}
	res, err := lc.Layout(n, flex.ExactSpec(10), flex.UnspecifiedSpec())
	if err != nil {
		t.Fatal(err)
	}

	if res.Width != 10 || res.Height != 3 {
		t.Errorf("root size = %dx%d, want 10x3", res.Width, res.Height)
	}
	if len(res.Children) != 2 {
		t.Fatalf("got %d child results, want 2", len(res.Children))
	}
	if got := res.Children[1].Bounds(); got.Y != 1 || got.Height != 2 {
		t.Errorf("second child bounds = %v, want y=1 height=2", got)
	}

	var visited int
	res.Walk(func(*LayoutResult, int, int) { visited++ })
	if visited != 3 {
		t.Errorf("Walk visited %d results, want 3", visited)
	}
}

func TestLayoutResolvesNestedTree(t *testing.T) {
	var widths []flex.SizeSpec
	root := &widget.Column{Children: []component.Component{
		&widget.SizeAware{
			Props: component.Props{Height: flex.Px(1)},
			Build: func(w, h flex.SizeSpec) component.Component {
				widths = append(widths, w)
				return &widget.Text{Text: "nested"}
			},
		},
	}}
	lc := NewLayoutContext(context.Background(), testTree(true), nil)
	n, err := lc.ResolveRoot(root)
	if err != nil {
		t.Fatal(err)
	}
	if !n.ChildAt(0).IsNestedTreeHolder() {
		t.Fatal("size aware child is not a nested tree holder")
	}
	res, err := lc.Layout(n, flex.ExactSpec(12), flex.UnspecifiedSpec())
	if err != nil {
		t.Fatal(err)
	}

	nested := res.Children[0].Nested
	if nested == nil {
		t.Fatal("holder has no nested result")
	}
	if txt, ok := nested.Node.TailComponent().(*widget.Text); !ok || txt.Text != "nested" {
		t.Errorf("nested tail = %v, want the built text", nested.Node.TailComponent())
	}
	if !slices.Contains(widths, flex.ExactSpec(12)) {
		t.Errorf("Build width specs = %+v, want one exactly 12", widths)
	}
}
