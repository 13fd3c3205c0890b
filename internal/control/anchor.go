package control

import (
	"time"

	"uwbdistance-go/internal/radio"
	"uwbdistance-go/x/logx"
)

// PingEvery is the number of ticks between anchor pings.
const PingEvery = 6

// Anchor listens continuously and pings every PingEvery ticks. The receiver
// is restarted on every tick so a wedged reception cannot last longer than
// one period.
type Anchor struct {
	Count  uint8
	Period time.Duration
	log    logx.Logger
}

func NewAnchor(period time.Duration) *Anchor {
	return &Anchor{Period: period, log: logx.New("anchor")}
}

func (a *Anchor) Tick(r Radio, _ Indicator) time.Duration {
	if r.State() == radio.StateReceiving {
		do(a.log, "finish_receiving", r, r.FinishReceiving)
	}
	if a.Count == PingEvery-1 {
		a.Count = 0
		do(a.log, "send_ping", r, r.SendPing)
	} else {
		a.Count++
		do(a.log, "start_receiving", r, r.StartReceiving)
	}
	return a.Period
}

// Observe is a no-op: the anchor keeps no liveness state.
func (a *Anchor) Observe(radio.Message) {}
