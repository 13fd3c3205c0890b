// Package irq latches the radio interrupt line for the node loop.
package irq

import "sync/atomic"

// Pin is an edge-triggered input. The board wraps machine.Pin.SetInterrupt
// on the rising edge.
type Pin interface {
	SetIRQ(handler func()) error
	ClearIRQ() error
}

// Line is a latched interrupt. The ISR side (Fire) never blocks: it sets the
// pending bit and, if the queue has room, posts a wake-up; otherwise the
// drop is counted.
type Line struct {
	// Written by ISR; MUST NOT block the ISR:
	q chan struct{}

	pending uint32
	drops   uint32
	pin     Pin
}

// New returns a Line whose queue holds buf wake-ups (default 4).
func New(buf int) *Line {
	if buf <= 0 {
		buf = 4
	}
	return &Line{q: make(chan struct{}, buf)}
}

// Attach routes p's interrupt to Fire.
func (l *Line) Attach(p Pin) error {
	if err := p.SetIRQ(l.Fire); err != nil {
		return err
	}
	l.pin = p
	return nil
}

// Detach stops interrupt delivery.
func (l *Line) Detach() {
	if l.pin != nil {
		_ = l.pin.ClearIRQ()
		l.pin = nil
	}
}

// Fire is the interrupt handler.
func (l *Line) Fire() {
	atomic.StoreUint32(&l.pending, 1)
	select {
	case l.q <- struct{}{}:
	default:
		atomic.AddUint32(&l.drops, 1) // protect ISR path
	}
}

// Events delivers one value per queued interrupt.
func (l *Line) Events() <-chan struct{} { return l.q }

// CheckInterrupt reports whether an interrupt is latched.
func (l *Line) CheckInterrupt() bool { return atomic.LoadUint32(&l.pending) != 0 }

// ClearInterruptPendingBit acknowledges the latched interrupt.
func (l *Line) ClearInterruptPendingBit() { atomic.StoreUint32(&l.pending, 0) }

// Drops counts wake-ups lost to a full queue.
func (l *Line) Drops() uint32 { return atomic.LoadUint32(&l.drops) }
