// Package view is the headless native content layer: views, host views and
// drawables carrying the mutable properties the mount engine and the dynamic
// props manager write to. Content is drawn onto a Canvas, typically a Grid.
package view

import "github.com/go-drift/litho/pkg/graphics"

// Canonical property values restored before content is pooled.
const (
	DefaultAlpha       float32 = 1
	DefaultTranslation float32 = 0
	DefaultScale       float32 = 1
	DefaultElevation   float32 = 0
	DefaultRotation    float32 = 0
)

// Properties is the set of mutable properties shared by views and hosts.
type Properties interface {
	Bounds() graphics.Rect
	SetBounds(graphics.Rect)

	Alpha() float32
	SetAlpha(float32)
	TranslationX() float32
	SetTranslationX(float32)
	TranslationY() float32
	SetTranslationY(float32)
	ScaleX() float32
	SetScaleX(float32)
	ScaleY() float32
	SetScaleY(float32)
	Elevation() float32
	SetElevation(float32)
	Rotation() float32
	SetRotation(float32)
	Background() Drawable
	SetBackground(Drawable)
	Foreground() graphics.Color
	SetForeground(graphics.Color)

	// Reset restores canonical values for every property above except
	// bounds.
	Reset()
}

// Resetter is implemented by content that must be cleaned before pooling.
type Resetter interface {
	ResetForPool()
}

// View is a leaf native view.
type View struct {
	bounds graphics.Rect

	alpha        float32
	translationX float32
	translationY float32
	scaleX       float32
	scaleY       float32
	elevation    float32
	rotation     float32
	background   Drawable
	foreground   graphics.Color

	// TestKey identifies the view in tests and traces.
	TestKey string
	// Tag holds component-owned data.
	Tag any
	// TouchBounds is the hit area, bounds grown by any touch expansion.
	TouchBounds graphics.Rect
}

// NewView creates a view with canonical property values.
func NewView() *View {
	v := &View{}
	v.Reset()
	return v
}

func (v *View) Bounds() graphics.Rect          { return v.bounds }
func (v *View) SetBounds(r graphics.Rect)      { v.bounds = r }
func (v *View) Alpha() float32                 { return v.alpha }
func (v *View) SetAlpha(a float32)             { v.alpha = a }
func (v *View) TranslationX() float32          { return v.translationX }
func (v *View) SetTranslationX(t float32)      { v.translationX = t }
func (v *View) TranslationY() float32          { return v.translationY }
func (v *View) SetTranslationY(t float32)      { v.translationY = t }
func (v *View) ScaleX() float32                { return v.scaleX }
func (v *View) SetScaleX(s float32)            { v.scaleX = s }
func (v *View) ScaleY() float32                { return v.scaleY }
func (v *View) SetScaleY(s float32)            { v.scaleY = s }
func (v *View) Elevation() float32             { return v.elevation }
func (v *View) SetElevation(e float32)         { v.elevation = e }
func (v *View) Rotation() float32              { return v.rotation }
func (v *View) SetRotation(r float32)          { v.rotation = r }
func (v *View) Background() Drawable           { return v.background }
func (v *View) SetBackground(d Drawable)       { v.background = d }
func (v *View) Foreground() graphics.Color     { return v.foreground }
func (v *View) SetForeground(c graphics.Color) { v.foreground = c }

// Reset restores canonical property values.
func (v *View) Reset() {
	v.alpha = DefaultAlpha
	v.translationX = DefaultTranslation
	v.translationY = DefaultTranslation
	v.scaleX = DefaultScale
	v.scaleY = DefaultScale
	v.elevation = DefaultElevation
	v.rotation = DefaultRotation
	v.background = nil
	v.foreground = graphics.ColorTransparent
}

// ResetForPool resets properties and drops per-item data.
func (v *View) ResetForPool() {
	v.Reset()
	v.bounds = graphics.Rect{}
	v.TouchBounds = graphics.Rect{}
	v.TestKey = ""
	v.Tag = nil
}

// Draw paints the background and foreground of the view offset by (dx, dy).
func (v *View) Draw(c Canvas, dx, dy int) {
	if v.alpha <= 0 {
		return
	}
	r := v.bounds.Translate(dx+int(v.translationX), dy+int(v.translationY))
	if v.background != nil {
		v.background.Draw(c, r.X, r.Y)
	}
	if v.foreground.A() != 0 {
		c.FillRect(r, v.foreground)
	}
}

var _ Properties = (*View)(nil)
