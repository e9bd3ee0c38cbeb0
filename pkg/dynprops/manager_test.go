package dynprops

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/view"
	"github.com/go-drift/litho/pkg/widget"
)

// gauge pushes a custom dynamic level into its content.
type gauge struct {
	component.Props
	level *dynamic.Value[int]
	got   []any
}

func (g *gauge) Kind() component.Kind                      { return component.KindMountView }
func (g *gauge) ShallowCopy() component.Component          { return component.Copy(g) }
func (g *gauge) IsEquivalentTo(o component.Component) bool { return o == component.Component(g) }

func (g *gauge) DynamicProps() []dynamic.Observable { return []dynamic.Observable{g.level} }

func (g *gauge) BindDynamicProp(index int, value any, content any) error {
	g.got = append(g.got, value)
	return nil
}

func TestAlphaFollowsValue(t *testing.T) {
	alpha := dynamic.New[float32](0.8)
	c := &widget.Surface{Props: component.Props{Alpha: alpha}}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(c, nil, content)
	if got := content.Alpha(); got != 0.8 {
		t.Fatalf("alpha after bind = %v, want 0.8", got)
	}
	alpha.Set(0.5)
	if got := content.Alpha(); got != 0.5 {
		t.Errorf("alpha after Set = %v, want 0.5", got)
	}
}

func TestBindIsIdempotent(t *testing.T) {
	alpha := dynamic.New[float32](0.3)
	c := &widget.Surface{Props: component.Props{Alpha: alpha}}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(c, nil, content)
	m.OnBindComponentToContent(c, nil, content)
	if got := m.DependentCount(alpha); got != 1 {
		t.Errorf("DependentCount = %d, want 1", got)
	}
	if got := alpha.ListenerCount(); got != 1 {
		t.Errorf("ListenerCount = %d, want 1", got)
	}
	if got := content.Alpha(); got != 0.3 {
		t.Errorf("alpha = %v, want 0.3", got)
	}
}

func TestUnbindResetsAndStopsUpdates(t *testing.T) {
	alpha := dynamic.New[float32](0.4)
	rotation := dynamic.New[float32](90)
	c := &widget.Surface{Props: component.Props{Alpha: alpha, Rotation: rotation}}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(c, nil, content)
	m.OnUnbindComponent(c, content)

	if content.Alpha() != view.DefaultAlpha || content.Rotation() != view.DefaultRotation {
		t.Errorf("after unbind alpha=%v rotation=%v, want canonical values", content.Alpha(), content.Rotation())
	}
	alpha.Set(0.2)
	if got := content.Alpha(); got != view.DefaultAlpha {
		t.Errorf("value pushed after unbind: alpha = %v", got)
	}
	if alpha.ListenerCount() != 0 || rotation.ListenerCount() != 0 {
		t.Error("manager still subscribed after unbind")
	}
	if m.BindingCount() != 0 || m.IsBound(c, content) {
		t.Error("binding survived unbind")
	}
}

func TestSharedValueUpdatesEveryContent(t *testing.T) {
	alpha := dynamic.New[float32](1)
	a := &widget.Surface{Props: component.Props{Alpha: alpha}}
	b := &widget.Surface{Props: component.Props{Alpha: alpha}}
	va, vb := view.NewView(), view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(a, nil, va)
	m.OnBindComponentToContent(b, nil, vb)
	if got := m.DependentCount(alpha); got != 2 {
		t.Fatalf("DependentCount = %d, want 2", got)
	}

	m.OnUnbindComponent(a, va)
	alpha.Set(0.6)
	if va.Alpha() != view.DefaultAlpha {
		t.Errorf("unbound content alpha = %v", va.Alpha())
	}
	if vb.Alpha() != 0.6 {
		t.Errorf("bound content alpha = %v, want 0.6", vb.Alpha())
	}
}

func TestCommonPropsSkipDrawables(t *testing.T) {
	alpha := dynamic.New[float32](0.5)
	c := &widget.SolidColor{Props: component.Props{Alpha: alpha}}
	m := NewManager()

	m.OnBindComponentToContent(c, nil, view.NewColorDrawable(graphics.ColorRed))
	if m.BindingCount() != 0 || alpha.ListenerCount() != 0 {
		t.Error("common props bound to a drawable")
	}
}

func TestBackgroundColor(t *testing.T) {
	bg := dynamic.New(graphics.ColorRed)
	c := &widget.Surface{Props: component.Props{BackgroundColor: bg}}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(c, nil, content)
	bg.Set(graphics.ColorBlue)
	d, ok := content.Background().(*view.ColorDrawable)
	if !ok || d.Color != graphics.ColorBlue {
		t.Errorf("background = %v, want a blue color drawable", content.Background())
	}
	m.OnUnbindComponent(c, content)
	if content.Background() != nil {
		t.Error("background survived unbind")
	}
}

func TestCustomDynamicProps(t *testing.T) {
	level := dynamic.New(3)
	g := &gauge{level: level}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(g, nil, content)
	level.Set(4)
	m.OnUnbindComponent(g, content)
	level.Set(5)

	if diff := cmp.Diff([]any{3, 4}, g.got); diff != "" {
		t.Errorf("custom binds mismatch (-want +got):\n%s", diff)
	}
}

func TestScopeCommonSkipsCustomProps(t *testing.T) {
	level := dynamic.New(3)
	g := &gauge{level: level}
	m := NewManager()

	m.BindScoped(g, nil, view.NewView(), ScopeCommon)
	level.Set(4)
	if len(g.got) != 0 {
		t.Errorf("custom prop bound under ScopeCommon: %v", g.got)
	}
}

func TestDerivedValue(t *testing.T) {
	percent := dynamic.New(100)
	alpha := dynamic.Derive(percent, func(p int) float32 { return float32(p) / 100 })
	c := &widget.Surface{Props: component.Props{Alpha: alpha}}
	content := view.NewView()
	m := NewManager()

	m.OnBindComponentToContent(c, nil, content)
	percent.Set(25)
	if got := content.Alpha(); got != 0.25 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
	m.OnUnbindComponent(c, content)
	if got := percent.ListenerCount(); got != 0 {
		t.Errorf("source ListenerCount = %d after unbind, want 0", got)
	}
}

func TestNumericValuesConvert(t *testing.T) {
	alpha := dynamic.New[int32](1)
	elevation := dynamic.New[float64](2.5)
	c := &widget.Surface{Props: component.Props{Alpha: alpha, Elevation: elevation}}
	content := view.NewView()
	NewManager().OnBindComponentToContent(c, nil, content)
	if content.Alpha() != 1 || content.Elevation() != 2.5 {
		t.Errorf("alpha=%v elevation=%v, want 1 and 2.5", content.Alpha(), content.Elevation())
	}
}

func TestWrongValueTypePanics(t *testing.T) {
	tests := []struct {
		name  string
		props component.Props
	}{
		{"string alpha", component.Props{Alpha: dynamic.New("opaque")}},
		{"int background color", component.Props{BackgroundColor: dynamic.New(7)}},
		{"color background drawable", component.Props{BackgroundDrawable: dynamic.New(graphics.ColorRed)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := view.NewView()
			c := &widget.Surface{Props: tt.props}
			defer func() {
				err, ok := recover().(error)
				if !ok || !errors.Is(err, errors.ErrDynamicPropType) {
					t.Fatalf("panic = %v, want ErrDynamicPropType", err)
				}
				if content.Alpha() != view.DefaultAlpha {
					t.Errorf("alpha = %v, want it untouched", content.Alpha())
				}
			}()
			NewManager().OnBindComponentToContent(c, nil, content)
		})
	}
}

func TestWrongTypeOnChangePanics(t *testing.T) {
	v := dynamic.New[any](float32(0.5))
	c := &widget.Surface{Props: component.Props{Alpha: v}}
	content := view.NewView()
	NewManager().OnBindComponentToContent(c, nil, content)

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, errors.ErrDynamicPropType) {
			t.Fatalf("panic = %v, want ErrDynamicPropType", err)
		}
		if content.Alpha() != 0.5 {
			t.Errorf("alpha = %v, want the last valid value", content.Alpha())
		}
	}()
	v.Set("half")
}
