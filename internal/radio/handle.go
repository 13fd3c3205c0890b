package radio

import (
	"errors"
	"time"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/ranging"
	"uwbdistance-go/errcode"
	"uwbdistance-go/internal/distance"
	"uwbdistance-go/x/logx"
)

const (
	// ReceiveAttempts bounds the Wait polls in ReceiveMessage.
	ReceiveAttempts = 3
	// ReceiveDelay is spent before each Wait poll.
	ReceiveDelay = 1000 * time.Microsecond
	// MaxDistanceMM rejects implausible results.
	MaxDistanceMM = 20_000

	rxBufSize = 128
)

// Handle holds the transceiver in exactly one of three slots. A failed
// transition leaves it in the slot it was in.
type Handle struct {
	ready     Ready
	sending   Sending
	receiving Receiving

	irq    IRQ
	rxCfg  dw1000.RxConfig
	delay  func(time.Duration)
	filter distance.Filter
	buf    [rxBufSize]byte
	log    logx.Logger
}

// New takes ownership of an idle transceiver.
func New(r Ready, irq IRQ) *Handle {
	return &Handle{
		ready: r,
		irq:   irq,
		delay: time.Sleep,
		log:   logx.New("radio"),
	}
}

// SetDelay replaces the delay used between receive polls. The board uses a
// busy wait.
func (h *Handle) SetDelay(f func(time.Duration)) { h.delay = f }

// SetRxConfig sets the configuration used when arming reception.
func (h *Handle) SetRxConfig(c dw1000.RxConfig) { h.rxCfg = c }

// State reports which slot holds the transceiver. It panics if the slots do
// not hold exactly one value, which can only be a bug in this package.
func (h *Handle) State() State {
	switch {
	case h.ready != nil && h.sending == nil && h.receiving == nil:
		return StateReady
	case h.ready == nil && h.sending != nil && h.receiving == nil:
		return StateSending
	case h.ready == nil && h.sending == nil && h.receiving != nil:
		return StateReceiving
	}
	panic("radio: invalid state: ready=" + present(h.ready != nil) +
		" sending=" + present(h.sending != nil) +
		" receiving=" + present(h.receiving != nil))
}

func present(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// StartReceiving arms reception. From Receiving it finishes the current
// reception first.
func (h *Handle) StartReceiving() error {
	switch h.State() {
	case StateReady:
		h.log.Debug("start receiving")
		rx, err := h.ready.Receive(h.rxCfg)
		if err != nil {
			return driverErr("start_receiving", err)
		}
		h.ready, h.receiving = nil, rx
		return nil
	case StateReceiving:
		if err := h.FinishReceiving(); err != nil {
			return err
		}
		return h.StartReceiving()
	default:
		return errcode.Wrap(errcode.InvalidState, "start_receiving", nil)
	}
}

// FinishReceiving disables reception. It is a no-op when already Ready.
func (h *Handle) FinishReceiving() error {
	switch h.State() {
	case StateReceiving:
		h.log.Debug("finish receiving")
		r, err := h.receiving.Finish()
		if err != nil {
			return driverErr("finish_receiving", err)
		}
		h.receiving, h.ready = nil, r
		return nil
	case StateReady:
		return nil
	default:
		return errcode.Wrap(errcode.InvalidState, "finish_receiving", nil)
	}
}

// FinishSending completes (or aborts) the transmission in flight.
func (h *Handle) FinishSending() error {
	if h.State() != StateSending {
		return errcode.Wrap(errcode.InvalidState, "finish_sending", nil)
	}
	h.log.Debug("finish sending")
	r, err := h.sending.Finish()
	if err != nil {
		return driverErr("finish_sending", err)
	}
	h.sending, h.ready = nil, r
	return nil
}

// SendPing broadcasts a ranging ping.
func (h *Handle) SendPing() error {
	if h.State() != StateReady {
		return errcode.Wrap(errcode.InvalidState, "send_ping", nil)
	}
	h.log.Debug("sending ping")
	out, err := ranging.NewPing(h.ready)
	if err != nil {
		return driverErr("send_ping", err)
	}
	return h.send("send_ping", &out)
}

// ReceiveMessage takes the received frame, returns to Ready and handles the
// message, which may start a reply. On a read failure the handle stays
// Receiving.
func (h *Handle) ReceiveMessage() (Message, error) {
	if h.State() != StateReceiving {
		return Message{}, errcode.Wrap(errcode.InvalidState, "receive_message", nil)
	}
	h.log.Debug("receive message")
	rx := h.receiving

	var (
		msg dw1000.Message
		err error
	)
	h.delay(ReceiveDelay)
	for i := 0; ; i++ {
		msg, err = rx.Wait(h.buf[:])
		if !errors.Is(err, dw1000.ErrWouldBlock) || i == ReceiveAttempts-1 {
			break
		}
		h.logRetry(rx)
		h.delay(ReceiveDelay)
	}
	if err != nil {
		return Message{}, driverErr("receive_message", err)
	}

	if err := h.FinishReceiving(); err != nil {
		return Message{}, err
	}
	return h.handleMessage(msg)
}

func (h *Handle) logRetry(rx Receiving) {
	st, err := rx.Status()
	if err != nil {
		h.log.Warn("receive retry", "status_err", err)
		return
	}
	h.log.Warn("receive retry",
		"ldedone", st.LDEDone(),
		"rxdfr", st.RxDFR(),
		"rxfcg", st.RxFCG(),
		"rxfce", st.RxFCE(),
		"ldeerr", st.LDEErr())
}

// HandleInterrupt acknowledges a pending interrupt. It fails with
// InvalidState when none is pending.
func (h *Handle) HandleInterrupt() error {
	if !h.irq.CheckInterrupt() {
		return errcode.Wrap(errcode.InvalidState, "handle_interrupt", nil)
	}
	h.irq.ClearInterruptPendingBit()
	return nil
}

// Shutdown returns the transceiver to Ready on a best-effort basis.
func (h *Handle) Shutdown() {
	_ = h.FinishSending()
	_ = h.FinishReceiving()
}

// AverageDistance is the filtered distance in cm.
func (h *Handle) AverageDistance() uint64 { return h.filter.Average() }

// LastDistance is the most recent accepted distance in cm.
func (h *Handle) LastDistance() uint64 { return h.filter.Latest() }

func (h *Handle) send(op string, out *ranging.Outgoing) error {
	s, err := h.ready.Send(out.Payload(), out.Dest, out.Time)
	if err != nil {
		return driverErr(op, err)
	}
	h.ready, h.sending = nil, s
	return nil
}

// driverErr classifies a driver error.
func driverErr(op string, err error) error {
	if errors.Is(err, dw1000.ErrWouldBlock) {
		return errcode.Wrap(errcode.WouldBlock, op, err)
	}
	if c := dw1000.FaultCode(err); c >= 0 {
		return errcode.Fault(op, c, err)
	}
	return errcode.Wrap(errcode.Interface, op, err)
}
