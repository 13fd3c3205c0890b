package irq

import (
	"errors"
	"testing"
	"time"
)

type fakeIRQPin struct {
	handler func()
	err     error
}

func (p *fakeIRQPin) SetIRQ(h func()) error {
	if p.err != nil {
		return p.err
	}
	p.handler = h
	return nil
}
func (p *fakeIRQPin) ClearIRQ() error { p.handler = nil; return nil }
func (p *fakeIRQPin) fire() {
	if p.handler != nil {
		p.handler()
	}
}

func TestLineLatchesAndQueues(t *testing.T) {
	l := New(2)
	pin := &fakeIRQPin{}
	if err := l.Attach(pin); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if l.CheckInterrupt() {
		t.Fatal("pending before any edge")
	}

	pin.fire()
	select {
	case <-l.Events():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for wake-up")
	}
	if !l.CheckInterrupt() {
		t.Fatal("edge not latched")
	}
	l.ClearInterruptPendingBit()
	if l.CheckInterrupt() {
		t.Fatal("pending bit not cleared")
	}
}

func TestLineCountsDrops(t *testing.T) {
	l := New(1)
	pin := &fakeIRQPin{}
	_ = l.Attach(pin)
	pin.fire()
	pin.fire()
	pin.fire()
	if got := l.Drops(); got != 2 {
		t.Fatalf("Drops = %d, want 2", got)
	}
	if len(l.Events()) != 1 {
		t.Fatalf("queued = %d, want 1", len(l.Events()))
	}
}

func TestLineDetach(t *testing.T) {
	l := New(0)
	pin := &fakeIRQPin{}
	_ = l.Attach(pin)
	l.Detach()
	pin.fire()
	if l.CheckInterrupt() {
		t.Fatal("interrupt delivered after Detach")
	}
}

func TestLineAttachError(t *testing.T) {
	l := New(0)
	boom := errors.New("no irq")
	if err := l.Attach(&fakeIRQPin{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("Attach err = %v", err)
	}
}
