package widget

import (
	"slices"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/flex"
)

// Column lays out its children vertically.
type Column struct {
	component.Props
	Children   []component.Component
	Justify    flex.Justify
	AlignItems flex.Align
	Reverse    bool
}

func (c *Column) Kind() component.Kind                   { return component.KindContainer }
func (c *Column) ChildComponents() []component.Component { return c.Children }
func (c *Column) ShallowCopy() component.Component       { return component.Copy(c) }

func (c *Column) ContainerStyle(s *flex.Style) {
	s.Direction = flex.Column
	if c.Reverse {
		s.Direction = flex.ColumnReverse
	}
	s.JustifyContent = c.Justify
	s.AlignItems = c.AlignItems
}

func (c *Column) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*Column)
	return ok && c.Justify == o.Justify && c.AlignItems == o.AlignItems && c.Reverse == o.Reverse &&
		c.Props.IsEquivalentTo(&o.Props) && slices.Equal(c.Children, o.Children)
}

// Row lays out its children horizontally.
type Row struct {
	component.Props
	Children   []component.Component
	Justify    flex.Justify
	AlignItems flex.Align
	Reverse    bool
}

func (r *Row) Kind() component.Kind                   { return component.KindContainer }
func (r *Row) ChildComponents() []component.Component { return r.Children }
func (r *Row) ShallowCopy() component.Component       { return component.Copy(r) }

func (r *Row) ContainerStyle(s *flex.Style) {
	s.Direction = flex.Row
	if r.Reverse {
		s.Direction = flex.RowReverse
	}
	s.JustifyContent = r.Justify
	s.AlignItems = r.AlignItems
}

func (r *Row) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*Row)
	return ok && r.Justify == o.Justify && r.AlignItems == o.AlignItems && r.Reverse == o.Reverse &&
		r.Props.IsEquivalentTo(&o.Props) && slices.Equal(r.Children, o.Children)
}

var (
	_ component.Container = (*Column)(nil)
	_ component.Container = (*Row)(nil)
)
