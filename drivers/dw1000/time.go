package dw1000

// TimeBits is the width of DW1000 system time and timestamps.
const TimeBits = 40

// TimeMask keeps a value within the 40-bit time range.
const TimeMask = 1<<TimeBits - 1

// Instant is a point in DW1000 system time, in units of roughly 1/64 ns
// (one tick of the 63.8976 GHz timestamp clock). It wraps every ~17.2 s.
type Instant uint64

// Duration is a span of DW1000 time units.
type Duration uint64

// DurationFromNanos converts nanoseconds to time units using the nominal
// 64 units/ns.
func DurationFromNanos(ns uint32) Duration { return Duration(uint64(ns) * 64) }

// Add returns i+d, wrapping at 40 bits.
func (i Instant) Add(d Duration) Instant { return Instant((uint64(i) + uint64(d)) & TimeMask) }

// Sub returns the wrapping span from earlier to i.
func (i Instant) Sub(earlier Instant) Duration {
	return Duration((uint64(i) - uint64(earlier)) & TimeMask)
}

// Valid reports whether i fits the 40-bit range.
func (i Instant) Valid() bool { return uint64(i) <= TimeMask }

// SendTime selects immediate or delayed transmission.
type SendTime struct {
	Delayed bool
	At      Instant
}

// Now transmits as soon as possible.
func Now() SendTime { return SendTime{} }

// At transmits at t. The DW1000 ignores the low 9 bits of t.
func At(t Instant) SendTime { return SendTime{Delayed: true, At: t} }
