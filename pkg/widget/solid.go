package widget

import (
	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/view"
)

// SolidColor fills its bounds with a color. It mounts a drawable.
type SolidColor struct {
	component.Props
	Color graphics.Color
}

func (s *SolidColor) Kind() component.Kind             { return component.KindMountDrawable }
func (s *SolidColor) ShallowCopy() component.Component { return component.Copy(s) }

func (s *SolidColor) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*SolidColor)
	return ok && s.Color == o.Color && s.Props.IsEquivalentTo(&o.Props)
}

func (s *SolidColor) CreateMountContent(pool.Context) any {
	return view.NewColorDrawable(graphics.ColorTransparent)
}

func (s *SolidColor) PoolSize() int { return 10 }

func (s *SolidColor) Mount(_ *component.Context, content any) error {
	content.(*view.ColorDrawable).Color = s.Color
	return nil
}

func (s *SolidColor) Unmount(_ *component.Context, content any) error {
	content.(*view.ColorDrawable).Color = graphics.ColorTransparent
	return nil
}

var _ component.Mountable = (*SolidColor)(nil)
