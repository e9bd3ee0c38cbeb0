package flex

import "math"

// Unit specifies how a Value should be interpreted.
type Unit uint8

const (
	// UnitUndefined means the property was not set.
	UnitUndefined Unit = iota
	// UnitAuto sizes from content or the parent's flex calculation.
	UnitAuto
	// UnitPoint specifies an exact number of pixels.
	UnitPoint
	// UnitPercent specifies a percentage of the owner's dimension.
	UnitPercent
)

// Value represents a dimension that can be undefined, auto, fixed, or a percentage.
type Value struct {
	Amount float64
	Unit   Unit
}

// Undefined returns a Value that leaves the property unset.
func Undefined() Value {
	return Value{}
}

// Auto returns a Value that sizes from content.
func Auto() Value {
	return Value{Unit: UnitAuto}
}

// Px returns a Value with an exact pixel count.
func Px(n int) Value {
	return Value{Amount: float64(n), Unit: UnitPoint}
}

// Percent returns a Value that is a percentage of the owner's dimension.
func Percent(p float64) Value {
	return Value{Amount: p, Unit: UnitPercent}
}

// IsSet reports whether the value was set at all, including to Auto.
func (v Value) IsSet() bool {
	return v.Unit != UnitUndefined
}

// IsDefined reports whether the value resolves to a concrete length.
func (v Value) IsDefined() bool {
	return v.Unit == UnitPoint || v.Unit == UnitPercent
}

// Resolve converts the value to pixels. Percentages need a known owner size
// (owner >= 0); otherwise ok is false.
func (v Value) Resolve(owner int) (int, bool) {
	switch v.Unit {
	case UnitPoint:
		return int(math.Round(v.Amount)), true
	case UnitPercent:
		if owner < 0 {
			return 0, false
		}
		return int(math.Round(float64(owner) * v.Amount / 100)), true
	default:
		return 0, false
	}
}

// SpecMode describes how a parent constrains a child's size.
type SpecMode uint8

const (
	// Unspecified means the child may be any size.
	Unspecified SpecMode = iota
	// Exactly means the child must be exactly Size.
	Exactly
	// AtMost means the child may be up to Size.
	AtMost
)

func (m SpecMode) String() string {
	switch m {
	case Exactly:
		return "EXACTLY"
	case AtMost:
		return "AT_MOST"
	default:
		return "UNSPECIFIED"
	}
}

// SizeSpec is a measurement constraint on one axis.
type SizeSpec struct {
	Mode SpecMode
	Size int
}

// ExactSpec returns a spec forcing size n.
func ExactSpec(n int) SizeSpec {
	return SizeSpec{Mode: Exactly, Size: max(0, n)}
}

// AtMostSpec returns a spec allowing up to n.
func AtMostSpec(n int) SizeSpec {
	return SizeSpec{Mode: AtMost, Size: max(0, n)}
}

// UnspecifiedSpec returns an unconstrained spec.
func UnspecifiedSpec() SizeSpec {
	return SizeSpec{}
}

// Resolve picks the final size for a desired size under the size spec.
func (s SizeSpec) Resolve(desired int) int {
	switch s.Mode {
	case Exactly:
		return s.Size
	case AtMost:
		return min(desired, s.Size)
	default:
		return desired
	}
}

// Shrink returns the size spec reduced by n on its size, keeping the mode.
func (s SizeSpec) Shrink(n int) SizeSpec {
	if s.Mode == Unspecified {
		return s
	}
	return SizeSpec{Mode: s.Mode, Size: max(0, s.Size-n)}
}

// Owner returns the size percentages resolve against, or -1 when unknown.
func (s SizeSpec) Owner() int {
	if s.Mode == Unspecified {
		return -1
	}
	return s.Size
}
