package widget

import (
	"strings"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/view"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// BasicFace is a fixed 7x13 pixel face for pixel-unit text.
var BasicFace font.Face = basicfont.Face7x13

// Text draws a string, wrapped at word boundaries to the width it is given.
//
// Without a Face, sizes are terminal cells: one row per line and the
// display width of each line in columns. With a Face, sizes are pixels.
type Text struct {
	component.Props
	Text  string
	Color graphics.Color
	// MaxLines truncates wrapped text. Zero means no limit.
	MaxLines int
	Face     font.Face
}

func (t *Text) Kind() component.Kind             { return component.KindMountDrawable }
func (t *Text) ShallowCopy() component.Component { return component.Copy(t) }

func (t *Text) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*Text)
	return ok && t.Text == o.Text && t.Color == o.Color && t.MaxLines == o.MaxLines &&
		t.Face == o.Face && t.Props.IsEquivalentTo(&o.Props)
}

func (t *Text) CreateMountContent(pool.Context) any { return view.NewTextDrawable() }

func (t *Text) PoolSize() int { return 10 }

func (t *Text) Mount(c *component.Context, content any) error {
	d := content.(*view.TextDrawable)
	d.Layout = t.lines
	d.Lines = t.lines(d.Bounds().Width)
	d.Color = t.Color
	return nil
}

func (t *Text) Unmount(c *component.Context, content any) error {
	d := content.(*view.TextDrawable)
	d.Lines, d.Layout = nil, nil
	return nil
}

// Measure wraps to an exact or at-most width and reports the wrapped size.
func (t *Text) Measure(c *component.Context, width, height flex.SizeSpec) (int, int) {
	limit := 0
	if width.Mode != flex.Unspecified {
		limit = width.Size
	}
	lines := t.lines(limit)
	w, h := 0, 0
	for _, l := range lines {
		w = max(w, t.width(l))
	}
	if t.Face != nil {
		h = len(lines) * t.Face.Metrics().Height.Ceil()
	} else {
		h = len(lines)
	}
	return width.Resolve(w), height.Resolve(h)
}

func (t *Text) width(s string) int {
	if t.Face != nil {
		return font.MeasureString(t.Face, s).Ceil()
	}
	return runewidth.StringWidth(s)
}

// lines splits the text on newlines and wraps each paragraph to limit. A
// limit of zero disables wrapping.
func (t *Text) lines(limit int) []string {
	var out []string
	for _, para := range strings.Split(t.Text, "\n") {
		out = append(out, t.wrap(para, limit)...)
	}
	if t.MaxLines > 0 && len(out) > t.MaxLines {
		out = out[:t.MaxLines]
	}
	return out
}

func (t *Text) wrap(para string, limit int) []string {
	words := strings.Fields(para)
	if limit <= 0 || len(words) == 0 {
		return []string{para}
	}
	var lines []string
	line := ""
	for _, w := range words {
		next := w
		if line != "" {
			next = line + " " + w
		}
		if line != "" && t.width(next) > limit {
			lines = append(lines, line)
			next = w
		}
		line = next
	}
	return append(lines, line)
}

var (
	_ component.Mountable = (*Text)(nil)
	_ component.Measurer  = (*Text)(nil)
)
