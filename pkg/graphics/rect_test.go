package graphics

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"touching edge", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 2, 2, 2), true},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(20, 20, 5, 5), false},
		{"empty", NewRect(0, 0, 10, 10), NewRect(2, 2, 0, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("%v.Intersects(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("%v.Intersects(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestRectIntersectAndUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 4, 10, 10)
	if got, want := a.Intersect(b), NewRect(5, 4, 5, 6); got != want {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
	if got, want := a.Union(b), NewRect(0, 0, 15, 14); got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
	if got := a.Intersect(NewRect(30, 30, 1, 1)); got != (Rect{}) {
		t.Errorf("disjoint Intersect = %v, want zero", got)
	}
}

func TestRectInsetOutset(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	e := Edges{Top: 1, Right: 2, Bottom: 3, Left: 4}
	if got := r.Inset(e).Outset(e); got != r {
		t.Errorf("Inset then Outset = %v, want %v", got, r)
	}
	if got, want := r.Inset(e), NewRect(14, 11, 14, 16); got != want {
		t.Errorf("Inset = %v, want %v", got, want)
	}
}

func TestColorComponents(t *testing.T) {
	c := RGBA8(0x12, 0x34, 0x56, 0x78)
	if c.R() != 0x12 || c.G() != 0x34 || c.B() != 0x56 || c.A() != 0x78 {
		t.Errorf("components of %v wrong", c)
	}
	if got := c.Hex(); got != "#123456" {
		t.Errorf("Hex = %q", got)
	}
	if got := ColorRed.WithAlpha(0); got.A() != 0 || got.R() != 0xFF {
		t.Errorf("WithAlpha(0) = %v", got)
	}
}
