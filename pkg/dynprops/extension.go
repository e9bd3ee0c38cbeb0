package dynprops

import (
	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/mount"
)

// Source is implemented by render units whose content receives dynamic
// props.
type Source interface {
	component.Provider
	DynamicPropsScope() Scope
}

// Extension binds dynamic props when items bind and unbinds them when items
// unbind.
type Extension struct {
	mount.BaseExtension
	manager *Manager
}

// NewExtension returns an extension driving m.
func NewExtension(m *Manager) *Extension {
	if m == nil {
		m = NewManager()
	}
	return &Extension{manager: m}
}

// Manager returns the manager the extension drives.
func (e *Extension) Manager() *Manager { return e.manager }

func (e *Extension) Name() string { return "dynamic-props" }

func (e *Extension) OnBindItem(_ *mount.ExtensionState, unit mount.RenderUnit, content, _ any) {
	if src, ok := unit.(Source); ok {
		e.manager.BindScoped(src.Component(), src.ScopedContext(), content, src.DynamicPropsScope())
	}
}

func (e *Extension) OnUnbindItem(_ *mount.ExtensionState, unit mount.RenderUnit, content, _ any) {
	if src, ok := unit.(Source); ok {
		e.manager.OnUnbindComponent(src.Component(), content)
	}
}

// ShouldUpdateItem rebinds when the component behind the item changed and
// either side has dynamic props.
func (e *Extension) ShouldUpdateItem(_ *mount.ExtensionState, prev mount.RenderUnit, _ any, next mount.RenderUnit, _ any) bool {
	ps, ok1 := prev.(Source)
	ns, ok2 := next.(Source)
	if !ok1 || !ok2 {
		return false
	}
	if ps.Component() == ns.Component() {
		return false
	}
	return hasDynamicProps(ps) || hasDynamicProps(ns)
}

func hasDynamicProps(src Source) bool {
	c := src.Component()
	if c == nil {
		return false
	}
	if c.CommonProps().HasDynamicProps() {
		return true
	}
	b, ok := c.(component.DynamicPropsBinder)
	return ok && len(b.DynamicProps()) > 0
}

var _ mount.Extension = (*Extension)(nil)
