// Package distance holds the bias correction and moving-average filter applied
// to ranging results.
package distance

// Range bias model for 16 MHz PRF on a narrow-band channel: a fixed -23 cm
// base plus a linear distance-dependent part fitted on two segments.
const (
	baseBiasCM = 23
	kneeCM     = 1200
)

// Correct removes the systematic ranging bias from a raw distance in
// centimetres. The result is floored and never negative.
func Correct(cm uint64) uint64 {
	d := float32(cm)
	var dep float32
	if cm <= kneeCM {
		dep = (30 / float32(1200)) * d
	} else {
		dep = (6/float32(2500))*d + 27.12
	}
	v := d - baseBiasCM + dep
	if v < 0 {
		return 0
	}
	return uint64(v)
}
