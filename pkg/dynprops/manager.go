// Package dynprops pushes dynamic values into mounted content without a
// new layout.
//
// The Manager subscribes to every dynamic value that affects bound content
// and writes the value straight into the content when it changes. Common
// dynamic props (alpha, translation, scale, elevation, rotation, background
// and foreground) apply to views; custom dynamic props are handed to the
// component's own binder. The Manager runs on the main thread.
package dynprops

import (
	"fmt"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/view"
)

// Scope selects which dynamic props a binding applies.
type Scope uint8

const (
	ScopeCommon Scope = 1 << iota
	ScopeCustom

	ScopeAll = ScopeCommon | ScopeCustom
)

type binding struct {
	c       component.Component
	content any
}

type boundValues struct {
	ctx    *component.Context
	scope  Scope
	values map[dynamic.Observable]struct{}
	common []component.DynamicProp
}

// Manager tracks which bound content depends on which dynamic values.
type Manager struct {
	dependents map[dynamic.Observable]map[binding]struct{}
	affecting  map[binding]*boundValues
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		dependents: make(map[dynamic.Observable]map[binding]struct{}),
		affecting:  make(map[binding]*boundValues),
	}
}

// OnBindComponentToContent applies every dynamic prop of c to content and
// subscribes to their values.
func (m *Manager) OnBindComponentToContent(c component.Component, ctx *component.Context, content any) {
	m.BindScoped(c, ctx, content, ScopeAll)
}

// BindScoped is OnBindComponentToContent restricted to scope.
func (m *Manager) BindScoped(c component.Component, ctx *component.Context, content any, scope Scope) {
	if c == nil || content == nil {
		return
	}
	var common []component.DynamicProp
	if scope&ScopeCommon != 0 {
		if _, ok := content.(view.Properties); ok {
			common = c.CommonProps().DynamicProps()
		}
	}
	var custom []dynamic.Observable
	binder, _ := c.(component.DynamicPropsBinder)
	if scope&ScopeCustom != 0 && binder != nil {
		custom = binder.DynamicProps()
	}
	if len(common) == 0 && len(custom) == 0 {
		return
	}

	b := binding{c: c, content: content}
	if _, ok := m.affecting[b]; ok {
		m.OnUnbindComponent(c, content)
	}
	bv := &boundValues{ctx: ctx, scope: scope, values: make(map[dynamic.Observable]struct{}), common: common}
	m.affecting[b] = bv

	for _, dp := range common {
		bindCommon(dp.Key, dp.Value.Current(), content.(view.Properties))
		m.addDependent(dp.Value, b)
		bv.values[dp.Value] = struct{}{}
	}
	for i, v := range custom {
		if v == nil {
			continue
		}
		m.bindCustom(ctx, binder, i, v, content)
		m.addDependent(v, b)
		bv.values[v] = struct{}{}
	}
}

// OnUnbindComponent resets the common props of content that differ from
// their canonical values and unsubscribes from every value affecting it.
func (m *Manager) OnUnbindComponent(c component.Component, content any) {
	b := binding{c: c, content: content}
	bv, ok := m.affecting[b]
	if !ok {
		return
	}
	delete(m.affecting, b)
	if p, ok := content.(view.Properties); ok {
		resetCommon(bv.common, p)
	}
	for v := range bv.values {
		m.removeDependent(v, b)
	}
}

// OnValueChange implements dynamic.Listener.
func (m *Manager) OnValueChange(o dynamic.Observable) {
	deps := m.dependents[o]
	if len(deps) == 0 {
		return
	}
	// Binders may unbind content while we iterate.
	snapshot := make([]binding, 0, len(deps))
	for b := range deps {
		snapshot = append(snapshot, b)
	}
	value := o.Current()
	for _, b := range snapshot {
		bv, ok := m.affecting[b]
		if !ok {
			continue
		}
		if p, ok := b.content.(view.Properties); ok {
			for _, dp := range bv.common {
				if dp.Value == o {
					bindCommon(dp.Key, value, p)
				}
			}
		}
		if binder, ok := b.c.(component.DynamicPropsBinder); ok && bv.scope&ScopeCustom != 0 {
			for i, v := range binder.DynamicProps() {
				if v == o {
					m.bindCustom(bv.ctx, binder, i, v, b.content)
				}
			}
		}
	}
}

// IsBound reports whether c is bound to content.
func (m *Manager) IsBound(c component.Component, content any) bool {
	_, ok := m.affecting[binding{c: c, content: content}]
	return ok
}

// DependentCount returns the number of bindings subscribed to o.
func (m *Manager) DependentCount(o dynamic.Observable) int {
	return len(m.dependents[o])
}

// BindingCount returns the number of bound contents.
func (m *Manager) BindingCount() int { return len(m.affecting) }

func (m *Manager) bindCustom(ctx *component.Context, binder component.DynamicPropsBinder, i int, v dynamic.Observable, content any) {
	bind := func() error { return binder.BindDynamicProp(i, v.Current(), content) }
	if ctx == nil {
		if err := bind(); err != nil {
			panic(err)
		}
		return
	}
	ctx.Guard("BindDynamicProp", bind)
}

func (m *Manager) addDependent(v dynamic.Observable, b binding) {
	deps := m.dependents[v]
	if deps == nil {
		deps = make(map[binding]struct{})
		m.dependents[v] = deps
		v.Attach(m)
	}
	deps[b] = struct{}{}
}

func (m *Manager) removeDependent(v dynamic.Observable, b binding) {
	deps := m.dependents[v]
	delete(deps, b)
	if len(deps) == 0 {
		delete(m.dependents, v)
		v.Detach(m)
	}
}

// bindCommon writes value into p. A value of the wrong type for key is an
// invariant violation.
func bindCommon(key component.DynamicPropKey, value any, p view.Properties) {
	switch key {
	case component.DynamicAlpha:
		p.SetAlpha(toFloat(key, value))
	case component.DynamicTranslationX:
		p.SetTranslationX(toFloat(key, value))
	case component.DynamicTranslationY:
		p.SetTranslationY(toFloat(key, value))
	case component.DynamicScaleX:
		p.SetScaleX(toFloat(key, value))
	case component.DynamicScaleY:
		p.SetScaleY(toFloat(key, value))
	case component.DynamicElevation:
		p.SetElevation(toFloat(key, value))
	case component.DynamicRotation:
		p.SetRotation(toFloat(key, value))
	case component.DynamicBackgroundColor:
		p.SetBackground(view.NewColorDrawable(toColor(key, value)))
	case component.DynamicBackgroundDrawable:
		if value == nil {
			p.SetBackground(nil)
			return
		}
		d, ok := value.(view.Drawable)
		if !ok {
			wrongType(key, value)
		}
		p.SetBackground(d)
	case component.DynamicForegroundColor:
		p.SetForeground(toColor(key, value))
	}
}

// resetCommon restores canonical values for the props in common that
// differ from them.
func resetCommon(common []component.DynamicProp, p view.Properties) {
	for _, dp := range common {
		switch dp.Key {
		case component.DynamicAlpha:
			if p.Alpha() != view.DefaultAlpha {
				p.SetAlpha(view.DefaultAlpha)
			}
		case component.DynamicTranslationX:
			if p.TranslationX() != view.DefaultTranslation {
				p.SetTranslationX(view.DefaultTranslation)
			}
		case component.DynamicTranslationY:
			if p.TranslationY() != view.DefaultTranslation {
				p.SetTranslationY(view.DefaultTranslation)
			}
		case component.DynamicScaleX:
			if p.ScaleX() != view.DefaultScale {
				p.SetScaleX(view.DefaultScale)
			}
		case component.DynamicScaleY:
			if p.ScaleY() != view.DefaultScale {
				p.SetScaleY(view.DefaultScale)
			}
		case component.DynamicElevation:
			if p.Elevation() != view.DefaultElevation {
				p.SetElevation(view.DefaultElevation)
			}
		case component.DynamicRotation:
			if p.Rotation() != view.DefaultRotation {
				p.SetRotation(view.DefaultRotation)
			}
		case component.DynamicBackgroundColor, component.DynamicBackgroundDrawable:
			if p.Background() != nil {
				p.SetBackground(nil)
			}
		case component.DynamicForegroundColor:
			if p.Foreground() != graphics.ColorTransparent {
				p.SetForeground(graphics.ColorTransparent)
			}
		}
	}
}

func toFloat(key component.DynamicPropKey, v any) float32 {
	switch x := v.(type) {
	case float32:
		return x
	case float64:
		return float32(x)
	case int:
		return float32(x)
	case int32:
		return float32(x)
	case int64:
		return float32(x)
	}
	wrongType(key, v)
	return 0
}

func toColor(key component.DynamicPropKey, v any) graphics.Color {
	c, ok := v.(graphics.Color)
	if !ok {
		wrongType(key, v)
	}
	return c
}

func wrongType(key component.DynamicPropKey, v any) {
	errors.Invariant("dynprops.bindCommon", fmt.Errorf("%w: %v got %T", errors.ErrDynamicPropType, key, v))
}

var _ dynamic.Listener = (*Manager)(nil)
