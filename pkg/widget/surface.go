package widget

import (
	"fmt"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/view"
)

// Surface mounts a plain view. Its size comes from its props.
type Surface struct {
	component.Props
	Color graphics.Color
	// Label is a custom dynamic prop. Its current value is written to the
	// view's Tag.
	Label dynamic.Observable
}

func (s *Surface) Kind() component.Kind             { return component.KindMountView }
func (s *Surface) ShallowCopy() component.Component { return component.Copy(s) }

func (s *Surface) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*Surface)
	return ok && s.Color == o.Color && s.Label == o.Label && s.Props.IsEquivalentTo(&o.Props)
}

func (s *Surface) CreateMountContent(pool.Context) any { return view.NewView() }

func (s *Surface) PoolSize() int { return 3 }

func (s *Surface) Mount(_ *component.Context, content any) error {
	if s.Color.A() != 0 {
		content.(*view.View).SetBackground(view.NewColorDrawable(s.Color))
	}
	return nil
}

func (s *Surface) Unmount(_ *component.Context, content any) error {
	content.(*view.View).SetBackground(nil)
	return nil
}

func (s *Surface) DynamicProps() []dynamic.Observable {
	if s.Label == nil {
		return nil
	}
	return []dynamic.Observable{s.Label}
}

func (s *Surface) BindDynamicProp(index int, value any, content any) error {
	v, ok := content.(*view.View)
	if !ok {
		return fmt.Errorf("surface: cannot bind %T", content)
	}
	v.Tag = value
	return nil
}

var (
	_ component.Mountable          = (*Surface)(nil)
	_ component.DynamicPropsBinder = (*Surface)(nil)
)
