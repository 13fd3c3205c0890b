// Package sim simulates DW1000 transceivers sharing a radio channel, plus the
// LED strip, ADC and status LED of a board, so complete nodes can run on a
// host.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/drivers/dw1000/ranging"
	"uwbdistance-go/x/logx"
)

// UnitsPerNano is the DW1000 timestamp rate.
const UnitsPerNano = 64

// Air is a shared channel. Frames reach every armed transceiver after the
// time of flight for the distance between sender and receiver.
type Air struct {
	mu     sync.Mutex
	epoch  time.Time
	now    func() time.Time
	after  func(time.Duration, func())
	radios []*Transceiver
	loss   float64
	rng    *rand.Rand
	log    logx.Logger
}

func NewAir() *Air {
	return &Air{
		epoch: time.Now(),
		now:   time.Now,
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   logx.New("air"),
	}
}

// SetLoss sets the probability in [0,1] that a frame is lost on a link.
func (a *Air) SetLoss(p float64) {
	a.mu.Lock()
	a.loss = p
	a.mu.Unlock()
}

// global is the channel time in DW1000 units, not wrapped.
func (a *Air) global() uint64 {
	return uint64(a.now().Sub(a.epoch).Nanoseconds()) * UnitsPerNano
}

// TimeOfFlight converts a distance to DW1000 time units, rounded.
func TimeOfFlight(mm uint64) dw1000.Duration {
	return dw1000.Duration((mm*64_000_000 + ranging.SpeedOfLight/2) / ranging.SpeedOfLight)
}

// transmit schedules delivery of frame, leaving the sender's antenna at
// global time tx.
func (a *Air) transmit(from *Transceiver, frame []byte, dst mac.Address, tx uint64) {
	now := a.global()
	a.after(unitsToWall(tx-now), from.txDone)

	a.mu.Lock()
	radios := append([]*Transceiver(nil), a.radios...)
	loss := a.loss
	a.mu.Unlock()

	for _, to := range radios {
		if to == from {
			continue
		}
		if loss > 0 && a.lost(loss) {
			a.log.Debug("frame lost", "to", to.Name())
			continue
		}
		arrival := tx + uint64(TimeOfFlight(distanceMM(from, to)))
		to, buf := to, append([]byte(nil), frame...)
		a.after(unitsToWall(arrival-now), func() { to.deliver(buf, dst, arrival) })
	}
}

func (a *Air) lost(p float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64() < p
}

func unitsToWall(u uint64) time.Duration {
	return time.Duration(u / UnitsPerNano)
}

func distanceMM(a, b *Transceiver) uint64 {
	pa, pb := a.Position(), b.Position()
	if pa > pb {
		return pa - pb
	}
	return pb - pa
}
