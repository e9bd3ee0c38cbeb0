package widget

import (
	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
)

// SizeAware renders its child only once its size constraints are known.
// Build runs during measure with the specs of the content box.
type SizeAware struct {
	component.Props
	Build func(width, height flex.SizeSpec) component.Component
}

func (s *SizeAware) Kind() component.Kind             { return component.KindLayout }
func (s *SizeAware) ShallowCopy() component.Component { return component.Copy(s) }

// IsEquivalentTo is identity: builders cannot be compared.
func (s *SizeAware) IsEquivalentTo(other component.Component) bool {
	return other == component.Component(s)
}

func (s *SizeAware) RenderWithSize(_ *component.Context, width, height flex.SizeSpec) component.Component {
	if s.Build == nil {
		return nil
	}
	return s.Build(width, height)
}

var _ component.SizeDependent = (*SizeAware)(nil)
