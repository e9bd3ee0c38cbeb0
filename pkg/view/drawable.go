package view

import (
	"strings"

	"github.com/go-drift/litho/pkg/graphics"
	"github.com/mattn/go-runewidth"
)

// Drawable is mountable content without a view of its own. It is drawn by
// the host it is mounted in.
type Drawable interface {
	Bounds() graphics.Rect
	SetBounds(graphics.Rect)
	Draw(c Canvas, dx, dy int)
}

// ColorDrawable fills its bounds with a color.
type ColorDrawable struct {
	Color  graphics.Color
	bounds graphics.Rect
}

// NewColorDrawable returns a drawable filled with c.
func NewColorDrawable(c graphics.Color) *ColorDrawable {
	return &ColorDrawable{Color: c}
}

func (d *ColorDrawable) Bounds() graphics.Rect     { return d.bounds }
func (d *ColorDrawable) SetBounds(r graphics.Rect) { d.bounds = r }

func (d *ColorDrawable) Draw(c Canvas, dx, dy int) {
	if d.Color.A() == 0 {
		return
	}
	c.FillRect(d.bounds.Translate(dx, dy), d.Color)
}

func (d *ColorDrawable) ResetForPool() {
	d.Color = graphics.ColorTransparent
	d.bounds = graphics.Rect{}
}

// TextDrawable draws lines of text. When Layout is set, the lines are
// recomputed for the width of every new bounds.
type TextDrawable struct {
	Lines  []string
	Color  graphics.Color
	Layout func(width int) []string
	bounds graphics.Rect
}

// NewTextDrawable returns an empty text drawable.
func NewTextDrawable() *TextDrawable {
	return &TextDrawable{}
}

func (d *TextDrawable) Bounds() graphics.Rect     { return d.bounds }
func (d *TextDrawable) SetBounds(r graphics.Rect) {
	if d.Layout != nil && r.Width != d.bounds.Width {
		d.Lines = d.Layout(r.Width)
	}
	d.bounds = r
}

// Text returns the lines joined with newlines.
func (d *TextDrawable) Text() string {
	return strings.Join(d.Lines, "\n")
}

func (d *TextDrawable) Draw(c Canvas, dx, dy int) {
	r := d.bounds.Translate(dx, dy)
	for i, line := range d.Lines {
		if i >= r.Height {
			break
		}
		c.DrawText(r.X, r.Y+i, runewidth.Truncate(line, r.Width, ""), d.Color)
	}
}

func (d *TextDrawable) ResetForPool() {
	d.Lines = nil
	d.Layout = nil
	d.Color = graphics.ColorTransparent
	d.bounds = graphics.Rect{}
}
