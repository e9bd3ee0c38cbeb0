package component

import (
	"time"

	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
)

// DynamicPropKey identifies a common dynamic property.
type DynamicPropKey int

// Common dynamic property keys. The values are stable and appear in traces.
const (
	DynamicAlpha DynamicPropKey = iota + 1
	DynamicTranslationX
	DynamicTranslationY
	DynamicScaleX
	DynamicScaleY
	DynamicElevation
	DynamicBackgroundColor
	DynamicRotation
	DynamicBackgroundDrawable
	DynamicForegroundColor
)

var dynamicPropNames = map[DynamicPropKey]string{
	DynamicAlpha:              "alpha",
	DynamicTranslationX:       "translationX",
	DynamicTranslationY:       "translationY",
	DynamicScaleX:             "scaleX",
	DynamicScaleY:             "scaleY",
	DynamicElevation:          "elevation",
	DynamicBackgroundColor:    "backgroundColor",
	DynamicRotation:           "rotation",
	DynamicBackgroundDrawable: "backgroundDrawable",
	DynamicForegroundColor:    "foregroundColor",
}

func (k DynamicPropKey) String() string {
	if name, ok := dynamicPropNames[k]; ok {
		return name
	}
	return "unknown"
}

// DynamicProp pairs a key with its observable.
type DynamicProp struct {
	Key   DynamicPropKey
	Value dynamic.Observable
}

// VisibilityEvent is delivered to visibility handlers.
type VisibilityEvent struct {
	Key         string
	Bounds      graphics.Rect
	VisibleRect graphics.Rect
	// VisibleWidthRatio and VisibleHeightRatio are in [0, 1].
	VisibleWidthRatio  float64
	VisibleHeightRatio float64
}

// Props holds the properties every component accepts. Components embed it.
type Props struct {
	// Key replaces the type name in the component's global key.
	Key     string
	TestKey string

	Width, Height       flex.Value
	MinWidth, MinHeight flex.Value
	MaxWidth, MaxHeight flex.Value
	FlexGrow            float64
	FlexShrink          float64
	FlexBasis           flex.Value
	AlignSelf           flex.Align
	PositionType        flex.PositionType
	Position            flex.EdgeValues
	Padding             graphics.Edges
	Margin              graphics.Edges
	Border              graphics.Edges

	// Background is painted behind content when not transparent.
	Background graphics.Color
	// TouchExpansion grows the hit area beyond the bounds.
	TouchExpansion graphics.Edges
	// WrapInView forces a host view around the component.
	WrapInView bool

	Disabled        bool
	HideDescendants bool

	// TransitionKey marks the component for transitions. A keyed item that
	// leaves the tree stays mounted for DisappearDuration.
	TransitionKey     string
	DisappearDuration time.Duration

	OnVisible           func(VisibilityEvent)
	OnInvisible         func(VisibilityEvent)
	OnFocused           func(VisibilityEvent)
	OnUnfocused         func(VisibilityEvent)
	OnFullImpression    func(VisibilityEvent)
	OnVisibilityChanged func(VisibilityEvent)

	// Common dynamic props. Float props expect float32 values, color props
	// graphics.Color and BackgroundDrawable a view.Drawable.
	Alpha              dynamic.Observable
	TranslationX       dynamic.Observable
	TranslationY       dynamic.Observable
	ScaleX             dynamic.Observable
	ScaleY             dynamic.Observable
	Elevation          dynamic.Observable
	Rotation           dynamic.Observable
	BackgroundColor    dynamic.Observable
	BackgroundDrawable dynamic.Observable
	ForegroundColor    dynamic.Observable
}

// CommonProps returns p.
func (p *Props) CommonProps() *Props { return p }

// DynamicProps lists the set common dynamic props in key order.
func (p *Props) DynamicProps() []DynamicProp {
	if p == nil {
		return nil
	}
	all := [...]DynamicProp{
		{DynamicAlpha, p.Alpha},
		{DynamicTranslationX, p.TranslationX},
		{DynamicTranslationY, p.TranslationY},
		{DynamicScaleX, p.ScaleX},
		{DynamicScaleY, p.ScaleY},
		{DynamicElevation, p.Elevation},
		{DynamicBackgroundColor, p.BackgroundColor},
		{DynamicRotation, p.Rotation},
		{DynamicBackgroundDrawable, p.BackgroundDrawable},
		{DynamicForegroundColor, p.ForegroundColor},
	}
	var out []DynamicProp
	for _, dp := range all {
		if dp.Value != nil {
			out = append(out, dp)
		}
	}
	return out
}

// HasDynamicProps reports whether any common dynamic prop is set.
func (p *Props) HasDynamicProps() bool {
	return len(p.DynamicProps()) > 0
}

// HasVisibilityHandlers reports whether any visibility handler is set.
func (p *Props) HasVisibilityHandlers() bool {
	return p != nil && (p.OnVisible != nil || p.OnInvisible != nil || p.OnFocused != nil ||
		p.OnUnfocused != nil || p.OnFullImpression != nil || p.OnVisibilityChanged != nil)
}

// NeedsHostView reports whether the props force a host view: view-only
// dynamic props, touch expansion, a test key or an explicit request.
func (p *Props) NeedsHostView() bool {
	if p == nil {
		return false
	}
	return p.WrapInView || p.TestKey != "" || !p.TouchExpansion.IsZero() || p.HasDynamicProps()
}

// ApplyLayout writes the set layout props to s. Props left at their zero
// value do not override s.
func (p *Props) ApplyLayout(s *flex.Style) {
	set := func(dst *flex.Value, v flex.Value) {
		if v.IsSet() {
			*dst = v
		}
	}
	set(&s.Width, p.Width)
	set(&s.Height, p.Height)
	set(&s.MinWidth, p.MinWidth)
	set(&s.MinHeight, p.MinHeight)
	set(&s.MaxWidth, p.MaxWidth)
	set(&s.MaxHeight, p.MaxHeight)
	set(&s.FlexBasis, p.FlexBasis)
	set(&s.Position.Top, p.Position.Top)
	set(&s.Position.Right, p.Position.Right)
	set(&s.Position.Bottom, p.Position.Bottom)
	set(&s.Position.Left, p.Position.Left)
	if p.FlexGrow != 0 {
		s.FlexGrow = p.FlexGrow
	}
	if p.FlexShrink != 0 {
		s.FlexShrink = p.FlexShrink
	}
	if p.AlignSelf != flex.AlignAuto {
		s.AlignSelf = p.AlignSelf
	}
	if p.PositionType != flex.PositionRelative {
		s.PositionType = p.PositionType
	}
	if !p.Padding.IsZero() {
		s.Padding = p.Padding
	}
	if !p.Margin.IsZero() {
		s.Margin = p.Margin
	}
	if !p.Border.IsZero() {
		s.Border = p.Border
	}
}

// IsEquivalentTo compares the props that affect layout or mounted output.
// Handlers are compared by presence and dynamic values by identity.
func (p *Props) IsEquivalentTo(o *Props) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	if p.Key != o.Key || p.TestKey != o.TestKey ||
		p.Width != o.Width || p.Height != o.Height ||
		p.MinWidth != o.MinWidth || p.MinHeight != o.MinHeight ||
		p.MaxWidth != o.MaxWidth || p.MaxHeight != o.MaxHeight ||
		p.FlexGrow != o.FlexGrow || p.FlexShrink != o.FlexShrink || p.FlexBasis != o.FlexBasis ||
		p.AlignSelf != o.AlignSelf || p.PositionType != o.PositionType || p.Position != o.Position ||
		p.Padding != o.Padding || p.Margin != o.Margin || p.Border != o.Border ||
		p.Background != o.Background || p.TouchExpansion != o.TouchExpansion ||
		p.WrapInView != o.WrapInView || p.Disabled != o.Disabled || p.HideDescendants != o.HideDescendants ||
		p.TransitionKey != o.TransitionKey || p.DisappearDuration != o.DisappearDuration {
		return false
	}
	if p.HasVisibilityHandlers() != o.HasVisibilityHandlers() {
		return false
	}
	pd, od := p.DynamicProps(), o.DynamicProps()
	if len(pd) != len(od) {
		return false
	}
	for i := range pd {
		if pd[i] != od[i] {
			return false
		}
	}
	return true
}
