package graphics

// Edges represents spacing values for the four sides of a rectangle.
// Used for padding, margin, border and touch expansion.
type Edges struct {
	Top, Right, Bottom, Left int
}

// EdgeAll creates Edges with the same value on all four sides.
func EdgeAll(n int) Edges {
	return Edges{Top: n, Right: n, Bottom: n, Left: n}
}

// EdgeSymmetric creates Edges with vertical (top/bottom) and horizontal (left/right) values.
func EdgeSymmetric(vertical, horizontal int) Edges {
	return Edges{Top: vertical, Right: horizontal, Bottom: vertical, Left: horizontal}
}

// Horizontal returns the sum of left and right edges.
func (e Edges) Horizontal() int {
	return e.Left + e.Right
}

// Vertical returns the sum of top and bottom edges.
func (e Edges) Vertical() int {
	return e.Top + e.Bottom
}

// IsZero reports whether all sides are zero.
func (e Edges) IsZero() bool {
	return e == Edges{}
}
