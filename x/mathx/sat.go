package mathx

import "golang.org/x/exp/constraints"

// SatInc returns v+1, or v unchanged when it is already the type's maximum.
func SatInc[T constraints.Unsigned](v T) T {
	if v+1 == 0 {
		return v
	}
	return v + 1
}

// SatSub returns a-b, floored at zero.
func SatSub[T constraints.Unsigned](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

// SatAdd returns a+b, capped at the type's maximum.
func SatAdd[T constraints.Unsigned](a, b T) T {
	s := a + b
	if s < a {
		return ^T(0)
	}
	return s
}
