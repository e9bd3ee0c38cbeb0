package flex

import "github.com/go-drift/litho/pkg/graphics"

// Direction specifies the main axis for laying out children.
type Direction uint8

const (
	// Column arranges children vertically (top to bottom).
	Column Direction = iota
	// Row arranges children horizontally (left to right).
	Row
	// ColumnReverse arranges children bottom to top.
	ColumnReverse
	// RowReverse arranges children right to left.
	RowReverse
)

// IsRow reports whether the main axis is horizontal.
func (d Direction) IsRow() bool {
	return d == Row || d == RowReverse
}

// IsReverse reports whether children are placed from the end of the main axis.
func (d Direction) IsReverse() bool {
	return d == RowReverse || d == ColumnReverse
}

// Justify specifies how children are distributed along the main axis.
type Justify uint8

const (
	// JustifyStart packs children at the start of the main axis.
	JustifyStart Justify = iota
	// JustifyEnd packs children at the end of the main axis.
	JustifyEnd
	// JustifyCenter centers children along the main axis.
	JustifyCenter
	// JustifySpaceBetween distributes space evenly between children.
	JustifySpaceBetween
	// JustifySpaceAround distributes space evenly around children.
	JustifySpaceAround
	// JustifySpaceEvenly distributes space evenly between and around children.
	JustifySpaceEvenly
)

// Align specifies how children are positioned along the cross axis.
type Align uint8

const (
	// AlignAuto defers to the parent's AlignItems. As AlignItems it means
	// stretch.
	AlignAuto Align = iota
	// AlignStretch stretches children to fill the cross axis.
	AlignStretch
	// AlignStart aligns children at the start of the cross axis.
	AlignStart
	// AlignEnd aligns children at the end of the cross axis.
	AlignEnd
	// AlignCenter centers children along the cross axis.
	AlignCenter
)

// PositionType selects whether a node takes part in flex flow.
type PositionType uint8

const (
	// PositionRelative nodes are laid out by the flex algorithm.
	PositionRelative PositionType = iota
	// PositionAbsolute nodes are placed by their Position offsets.
	PositionAbsolute
)

// EdgeValues holds a Value per edge, used for absolute position offsets.
type EdgeValues struct {
	Top, Right, Bottom, Left Value
}

// Style contains all layout properties for a node.
type Style struct {
	Direction      Direction
	JustifyContent Justify
	AlignItems     Align
	AlignSelf      Align

	PositionType PositionType
	Position     EdgeValues

	Width, Height       Value
	MinWidth, MinHeight Value
	MaxWidth, MaxHeight Value

	FlexGrow   float64
	FlexShrink float64
	FlexBasis  Value

	Padding graphics.Edges
	Margin  graphics.Edges
	Border  graphics.Edges
}

// DefaultStyle returns a Style with sensible defaults.
func DefaultStyle() Style {
	return Style{}
}

func (s Style) inner() graphics.Edges {
	return graphics.Edges{
		Top:    s.Padding.Top + s.Border.Top,
		Right:  s.Padding.Right + s.Border.Right,
		Bottom: s.Padding.Bottom + s.Border.Bottom,
		Left:   s.Padding.Left + s.Border.Left,
	}
}

func (s Style) alignFor(child Style) Align {
	if child.AlignSelf != AlignAuto {
		return child.AlignSelf
	}
	if s.AlignItems == AlignAuto {
		return AlignStretch
	}
	return s.AlignItems
}
