package radio

import (
	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
)

// Settings applied to a freshly initialised DW1000.
type Settings struct {
	Address        mac.ShortAddress
	RxAntennaDelay dw1000.Duration
	TxAntennaDelay dw1000.Duration
	LEDs           dw1000.LEDConfig
}

// Configure sets the address, antenna delays, status LEDs and interrupt
// sources of r and returns it wrapped as a Ready.
func Configure(r *dw1000.Ready, s Settings) (Ready, error) {
	if err := r.SetAddress(mac.Short(PanID, s.Address)); err != nil {
		return nil, err
	}
	if err := r.ConfigureLEDs(s.LEDs); err != nil {
		return nil, err
	}
	if err := r.EnableTxInterrupts(); err != nil {
		return nil, err
	}
	if err := r.EnableRxInterrupts(); err != nil {
		return nil, err
	}
	if err := r.SetAntennaDelay(s.RxAntennaDelay, s.TxAntennaDelay); err != nil {
		return nil, err
	}
	return Wrap(r), nil
}

// Wrap adapts the driver's Ready state.
func Wrap(r *dw1000.Ready) Ready { return devReady{r} }

type devReady struct{ r *dw1000.Ready }

func (d devReady) SysTime() (dw1000.Instant, error)         { return d.r.SysTime() }
func (d devReady) TxAntennaDelay() (dw1000.Duration, error) { return d.r.TxAntennaDelay() }

func (d devReady) Send(data []byte, dst mac.Address, t dw1000.SendTime) (Sending, error) {
	s, err := d.r.Send(data, dst, t)
	if err != nil {
		return nil, err
	}
	return devSending{s}, nil
}

func (d devReady) Receive(cfg dw1000.RxConfig) (Receiving, error) {
	rx, err := d.r.Receive(cfg)
	if err != nil {
		return nil, err
	}
	return devReceiving{rx}, nil
}

type devSending struct{ s *dw1000.Sending }

func (d devSending) Wait() error { return d.s.Wait() }

func (d devSending) Finish() (Ready, error) {
	r, err := d.s.FinishSending()
	if err != nil {
		return nil, err
	}
	return devReady{r}, nil
}

type devReceiving struct{ rx *dw1000.Receiving }

func (d devReceiving) Wait(buf []byte) (dw1000.Message, error) { return d.rx.Wait(buf) }
func (d devReceiving) Status() (dw1000.Status, error)          { return d.rx.Status() }

func (d devReceiving) Finish() (Ready, error) {
	r, err := d.rx.FinishReceiving()
	if err != nil {
		return nil, err
	}
	return devReady{r}, nil
}
