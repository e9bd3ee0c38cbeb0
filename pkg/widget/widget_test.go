package widget

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/view"
)

func TestTextMeasure(t *testing.T) {
	tests := []struct {
		name         string
		text         Text
		width        flex.SizeSpec
		wantW, wantH int
	}{
		{"unspecified", Text{Text: "hello world"}, flex.UnspecifiedSpec(), 11, 1},
		{"wraps at most", Text{Text: "hello world"}, flex.AtMostSpec(8), 5, 2},
		{"exact width", Text{Text: "hi"}, flex.ExactSpec(10), 10, 1},
		{"newlines", Text{Text: "a\nb\nc"}, flex.UnspecifiedSpec(), 1, 3},
		{"max lines", Text{Text: "a\nb\nc", MaxLines: 2}, flex.UnspecifiedSpec(), 1, 2},
		{"wide runes", Text{Text: "日本"}, flex.UnspecifiedSpec(), 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.text.Measure(nil, tt.width, flex.UnspecifiedSpec())
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Measure = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTextMountWrapsToBounds(t *testing.T) {
	txt := &Text{Text: "one two three", Color: graphics.ColorWhite}
	d := txt.CreateMountContent(nil).(*view.TextDrawable)
	d.SetBounds(graphics.NewRect(0, 0, 7, 2))
	if err := txt.Mount(nil, d); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"one two", "three"}, d.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if err := txt.Unmount(nil, d); err != nil {
		t.Fatal(err)
	}
	if d.Lines != nil {
		t.Errorf("lines after unmount = %v", d.Lines)
	}
}

func TestTextWithFaceMeasuresPixels(t *testing.T) {
	txt := &Text{Text: "ab", Face: BasicFace}
	w, h := txt.Measure(nil, flex.UnspecifiedSpec(), flex.UnspecifiedSpec())
	if w != 14 || h != 13 {
		t.Errorf("Measure = %dx%d, want 14x13", w, h)
	}
}

func TestSolidColorMount(t *testing.T) {
	s := &SolidColor{Color: graphics.ColorGreen}
	d := s.CreateMountContent(nil).(*view.ColorDrawable)
	s.Mount(nil, d)
	if d.Color != graphics.ColorGreen {
		t.Errorf("color = %v, want green", d.Color)
	}
	s.Unmount(nil, d)
	if d.Color != graphics.ColorTransparent {
		t.Errorf("color after unmount = %v, want transparent", d.Color)
	}
}

func TestSurfaceBindsLabel(t *testing.T) {
	s := &Surface{}
	v := view.NewView()
	if err := s.BindDynamicProp(0, "ready", v); err != nil {
		t.Fatal(err)
	}
	if v.Tag != "ready" {
		t.Errorf("Tag = %v, want ready", v.Tag)
	}
	if err := s.BindDynamicProp(0, "ready", view.NewColorDrawable(0)); err == nil {
		t.Error("binding a label to a drawable should fail")
	}
}

func TestEquivalence(t *testing.T) {
	a := &Text{Text: "x", Props: component.Props{Key: "k"}}
	b := &Text{Text: "x", Props: component.Props{Key: "k"}}
	c := &Text{Text: "y", Props: component.Props{Key: "k"}}
	if !a.IsEquivalentTo(b) {
		t.Error("equal texts are not equivalent")
	}
	if a.IsEquivalentTo(c) {
		t.Error("different texts are equivalent")
	}
	if component.ShouldUpdate(a, b) {
		t.Error("ShouldUpdate for equivalent components")
	}

	child := &Text{Text: "x"}
	col := &Column{Children: []component.Component{child}}
	cp := col.ShallowCopy().(*Column)
	if cp == col || !col.IsEquivalentTo(cp) {
		t.Error("shallow copy must be a distinct, equivalent column")
	}
	if a.IsEquivalentTo(col) {
		t.Error("components of different types are equivalent")
	}
}

func TestColumnStyle(t *testing.T) {
	var s flex.Style
	(&Column{Reverse: true, Justify: flex.JustifyCenter}).ContainerStyle(&s)
	if s.Direction != flex.ColumnReverse || s.JustifyContent != flex.JustifyCenter {
		t.Errorf("style = %+v, want reversed centered column", s)
	}
	(&Row{}).ContainerStyle(&s)
	if s.Direction != flex.Row {
		t.Errorf("direction = %v, want row", s.Direction)
	}
}
