package sim

import (
	"sync"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/internal/radio"
)

type mode uint8

const (
	modeIdle mode = iota
	modeTx
	modeRx
)

// Transceiver is a simulated DW1000. Its system time runs at the channel
// rate from its own random offset, and it reports completions through the
// handler installed with SetIRQ.
type Transceiver struct {
	air  *Air
	name string
	addr mac.Address

	mu       sync.Mutex
	offset   uint64
	antd     dw1000.Duration
	posMM    uint64
	mode     mode
	sent     bool
	filter   bool
	frame    []byte
	rxTime   dw1000.Instant
	seq      uint8
	handler  func()
	received uint32
}

// NewTransceiver attaches a transceiver to a at positionMM along a line.
func (a *Air) NewTransceiver(name string, addr mac.Address, positionMM uint64) *Transceiver {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := &Transceiver{
		air:    a,
		name:   name,
		addr:   addr,
		offset: uint64(a.rng.Int63()) & dw1000.TimeMask,
		antd:   16300,
		posMM:  positionMM,
	}
	a.radios = append(a.radios, t)
	return t
}

func (t *Transceiver) Name() string { return t.name }

func (t *Transceiver) Position() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.posMM
}

// SetPosition moves the transceiver.
func (t *Transceiver) SetPosition(mm uint64) {
	t.mu.Lock()
	t.posMM = mm
	t.mu.Unlock()
}

// Received counts frames accepted by the receiver.
func (t *Transceiver) Received() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.received
}

// SetIRQ installs the interrupt handler; it satisfies irq.Pin.
func (t *Transceiver) SetIRQ(h func()) error {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
	return nil
}

func (t *Transceiver) ClearIRQ() error { return t.SetIRQ(nil) }

func (t *Transceiver) local(global uint64) dw1000.Instant {
	return dw1000.Instant((global + t.offset) & dw1000.TimeMask)
}

// Ready returns the idle transceiver.
func (t *Transceiver) Ready() radio.Ready { return simReady{t} }

func (t *Transceiver) fire(h func()) {
	if h != nil {
		h()
	}
}

func (t *Transceiver) txDone() {
	t.mu.Lock()
	if t.mode != modeTx {
		t.mu.Unlock()
		return
	}
	t.sent = true
	h := t.handler
	t.mu.Unlock()
	t.fire(h)
}

// deliver hands a frame arriving at global time at to an armed receiver.
func (t *Transceiver) deliver(frame []byte, dst mac.Address, at uint64) {
	t.mu.Lock()
	if t.mode != modeRx || t.frame != nil {
		t.mu.Unlock()
		return
	}
	if t.filter && !accepts(t.addr, dst) {
		t.mu.Unlock()
		return
	}
	t.frame = frame
	t.rxTime = t.local(at)
	t.received++
	h := t.handler
	t.mu.Unlock()
	t.fire(h)
}

func accepts(self, dst mac.Address) bool {
	if dst.Pan != mac.BroadcastPan && dst.Pan != self.Pan {
		return false
	}
	return dst.IsShort() && (dst.Short == mac.BroadcastShort || dst.Short == self.Short)
}

type simReady struct{ t *Transceiver }

func (r simReady) SysTime() (dw1000.Instant, error) {
	return r.t.local(r.t.air.global()), nil
}

func (r simReady) TxAntennaDelay() (dw1000.Duration, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	return r.t.antd, nil
}

func (r simReady) Send(data []byte, dst mac.Address, st dw1000.SendTime) (radio.Sending, error) {
	t := r.t
	t.mu.Lock()
	h := mac.Header{
		FrameType:     mac.FrameData,
		Version:       1,
		PanIDCompress: dst.Pan == t.addr.Pan,
		Seq:           t.seq,
		Dest:          dst,
		Src:           t.addr,
	}
	t.seq++
	antd := t.antd
	t.mu.Unlock()

	var buf [127]byte
	n, err := mac.Encode(buf[:], h, data)
	if err != nil {
		return nil, dw1000.ErrMarshal
	}

	g := t.air.global()
	tx := g
	if st.Delayed {
		at := st.At &^ 0x1FF
		wait := uint64(at.Sub(t.local(g)))
		if wait > dw1000.TimeMask/2 {
			return nil, dw1000.ErrDelayedSendTooLate
		}
		tx = g + wait
	}
	t.mu.Lock()
	t.mode, t.sent = modeTx, false
	t.mu.Unlock()
	t.air.transmit(t, buf[:n], dst, tx+uint64(antd))
	return simSending{t}, nil
}

func (r simReady) Receive(cfg dw1000.RxConfig) (radio.Receiving, error) {
	t := r.t
	t.mu.Lock()
	t.mode, t.frame, t.filter = modeRx, nil, cfg.FrameFilter
	t.mu.Unlock()
	return simReceiving{t}, nil
}

type simSending struct{ t *Transceiver }

func (s simSending) Wait() error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	if !s.t.sent {
		return dw1000.ErrWouldBlock
	}
	return nil
}

func (s simSending) Finish() (radio.Ready, error) {
	s.t.mu.Lock()
	s.t.mode = modeIdle
	s.t.mu.Unlock()
	return simReady{s.t}, nil
}

type simReceiving struct{ t *Transceiver }

func (r simReceiving) Wait(buf []byte) (dw1000.Message, error) {
	t := r.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frame == nil {
		return dw1000.Message{}, dw1000.ErrWouldBlock
	}
	if len(buf) < len(t.frame) {
		return dw1000.Message{}, dw1000.ErrBufferTooSmall
	}
	n := copy(buf, t.frame)
	f, err := mac.Decode(buf[:n], false)
	if err != nil {
		return dw1000.Message{}, dw1000.ErrFrame
	}
	return dw1000.Message{RxTime: t.rxTime, Frame: f}, nil
}

func (r simReceiving) Status() (dw1000.Status, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if r.t.frame == nil {
		return 0, nil
	}
	return dw1000.StatusRxGood, nil
}

func (r simReceiving) Finish() (radio.Ready, error) {
	r.t.mu.Lock()
	r.t.mode, r.t.frame = modeIdle, nil
	r.t.mu.Unlock()
	return simReady{r.t}, nil
}
