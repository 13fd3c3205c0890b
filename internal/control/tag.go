package control

import (
	"time"

	"uwbdistance-go/internal/radio"
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/mathx"
)

const (
	// LivenessTicks is how many ticks without a ping (or a valid response)
	// are tolerated before the indicator is blanked.
	LivenessTicks = 50
	// CycleLen bounds the sub-schedule counter (0..CycleLen).
	CycleLen = 10
)

// Sub-schedule slots. While an anchor is known the receiver is only on
// around the expected ping time; otherwise it listens for a third of each
// slow cycle.
const (
	fastFinishAt = 1
	fastStartAt  = 9
	slowFinishAt = 4
	slowStartAt  = 0
)

// Tag tracks anchor presence and duty-cycles the receiver.
type Tag struct {
	PingSeen          bool
	ValidResponseSeen bool
	AnchorDetected    bool
	CyclesSincePing   uint8
	CyclesSinceValid  uint8
	Counter           uint8

	Fast time.Duration
	Slow time.Duration
	log  logx.Logger
}

func NewTag(fast, slow time.Duration) *Tag {
	return &Tag{Fast: fast, Slow: slow, log: logx.New("tag")}
}

// Observe records a received message for the next tick.
func (t *Tag) Observe(m radio.Message) {
	switch {
	case m.Kind == radio.KindPing:
		t.PingSeen = true
	case m.Kind == radio.KindResponse && m.Valid:
		t.ValidResponseSeen = true
	}
}

func (t *Tag) Tick(r Radio, ind Indicator) time.Duration {
	blank := false

	// Anchor presence.
	if t.PingSeen {
		t.AnchorDetected = true
		t.CyclesSincePing = 0
	} else {
		t.CyclesSincePing = mathx.SatInc(t.CyclesSincePing)
		if t.CyclesSincePing > LivenessTicks && t.AnchorDetected {
			t.AnchorDetected = false
			t.log.Info("anchor lost")
			blank = true
		}
	}

	if t.PingSeen || t.Counter >= CycleLen {
		t.Counter = 0
	} else {
		t.Counter++
	}

	// Valid responses. The counter saturates, so it passes
	// LivenessTicks+1 once per outage.
	if t.ValidResponseSeen {
		t.CyclesSinceValid = 0
	} else {
		t.CyclesSinceValid = mathx.SatInc(t.CyclesSinceValid)
		if t.CyclesSinceValid == LivenessTicks+1 {
			t.log.Info("no valid response")
			blank = true
		}
	}
	if blank {
		ind.SetOutOfRange()
	}

	next := t.Slow
	if t.AnchorDetected {
		switch t.Counter {
		case fastFinishAt:
			do(t.log, "finish_receiving", r, r.FinishReceiving)
		case fastStartAt:
			do(t.log, "start_receiving", r, r.StartReceiving)
		}
		next = t.Fast
	} else {
		switch t.Counter {
		case slowFinishAt:
			do(t.log, "finish_receiving", r, r.FinishReceiving)
		case slowStartAt:
			do(t.log, "start_receiving", r, r.StartReceiving)
		}
	}

	t.PingSeen = false
	t.ValidResponseSeen = false
	return next
}
