package radio

import (
	"time"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
)

type sentFrame struct {
	payload []byte
	dest    mac.Address
	at      dw1000.SendTime
}

type rxResult struct {
	msg dw1000.Message
	err error
}

// fakeRadio is a transceiver whose three states share one record.
type fakeRadio struct {
	now  dw1000.Instant
	antd dw1000.Duration

	sent  []sentFrame
	inbox []rxResult
	waits int

	sendErr      error
	receiveErr   error
	finishErr    error
	clockErr     error
	finishes     int
	receiveCalls int
}

func newFake() *fakeRadio { return &fakeRadio{now: 5_000_000, antd: 16300} }

func (f *fakeRadio) queue(m dw1000.Message) { f.inbox = append(f.inbox, rxResult{msg: m}) }

func (f *fakeRadio) lastSent() sentFrame { return f.sent[len(f.sent)-1] }

type fakeReady struct{ f *fakeRadio }

func (r fakeReady) SysTime() (dw1000.Instant, error)         { return r.f.now, r.f.clockErr }
func (r fakeReady) TxAntennaDelay() (dw1000.Duration, error) { return r.f.antd, nil }

func (r fakeReady) Send(data []byte, dst mac.Address, t dw1000.SendTime) (Sending, error) {
	if r.f.sendErr != nil {
		return nil, r.f.sendErr
	}
	r.f.sent = append(r.f.sent, sentFrame{payload: append([]byte(nil), data...), dest: dst, at: t})
	return fakeSending{r.f}, nil
}

func (r fakeReady) Receive(dw1000.RxConfig) (Receiving, error) {
	r.f.receiveCalls++
	if r.f.receiveErr != nil {
		return nil, r.f.receiveErr
	}
	return fakeReceiving{r.f}, nil
}

type fakeSending struct{ f *fakeRadio }

func (s fakeSending) Wait() error { return nil }

func (s fakeSending) Finish() (Ready, error) {
	if s.f.finishErr != nil {
		return nil, s.f.finishErr
	}
	s.f.finishes++
	return fakeReady{s.f}, nil
}

type fakeReceiving struct{ f *fakeRadio }

func (r fakeReceiving) Wait(buf []byte) (dw1000.Message, error) {
	r.f.waits++
	if len(r.f.inbox) == 0 {
		return dw1000.Message{}, dw1000.ErrWouldBlock
	}
	res := r.f.inbox[0]
	r.f.inbox = r.f.inbox[1:]
	return res.msg, res.err
}

func (r fakeReceiving) Status() (dw1000.Status, error) { return 0, nil }

func (r fakeReceiving) Finish() (Ready, error) {
	if r.f.finishErr != nil {
		return nil, r.f.finishErr
	}
	r.f.finishes++
	return fakeReady{r.f}, nil
}

type fakeIRQ struct{ pending bool }

func (i *fakeIRQ) CheckInterrupt() bool      { return i.pending }
func (i *fakeIRQ) ClearInterruptPendingBit() { i.pending = false }

// newTestHandle returns a Ready handle whose delays are recorded, not slept.
func newTestHandle() (*Handle, *fakeRadio, *[]time.Duration) {
	f := newFake()
	h := New(fakeReady{f}, &fakeIRQ{})
	var delays []time.Duration
	h.SetDelay(func(d time.Duration) { delays = append(delays, d) })
	return h, f, &delays
}
