// Package control holds the periodic role state machines that decide when
// the radio listens and when it pings.
package control

import (
	"time"

	"uwbdistance-go/errcode"
	"uwbdistance-go/internal/radio"
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/timex"
)

// Periods in CPU cycles at timex.ReferenceHz.
const (
	AnchorPeriodCycles  = 6_400_000
	TagFastPeriodCycles = 3_520_000
	TagSlowPeriodCycles = 32_000_000
)

// Radio is the subset of radio.Handle the schedulers drive.
type Radio interface {
	State() radio.State
	StartReceiving() error
	FinishReceiving() error
	SendPing() error
}

// Indicator is forced to OutOfRange on liveness timeouts.
type Indicator interface {
	SetOutOfRange()
}

// Controller is a role state machine. Tick runs one step and returns the
// delay until the next one.
type Controller interface {
	Tick(r Radio, ind Indicator) time.Duration
	Observe(m radio.Message)
}

// Periods are the tick periods of both roles.
type Periods struct {
	Anchor  time.Duration
	TagFast time.Duration
	TagSlow time.Duration
}

func DefaultPeriods() Periods {
	return Periods{
		Anchor:  timex.Cycles(AnchorPeriodCycles, 0),
		TagFast: timex.Cycles(TagFastPeriodCycles, 0),
		TagSlow: timex.Cycles(TagSlowPeriodCycles, 0),
	}
}

// do runs one radio operation and logs its failure. InvalidState is expected
// while a reply is in flight and only warns.
func do(log logx.Logger, op string, r Radio, f func() error) {
	err := f()
	switch {
	case err == nil:
	case errcode.Of(err) == errcode.InvalidState:
		log.Warn("radio not in required state", "op", op, "state", r.State())
	default:
		log.Error("radio operation failed", "op", op, "err", err)
	}
}
