package dw1000

import "uwbdistance-go/drivers/dw1000/mac"

// Ready is the idle radio. A Ready value must not be used after a
// successful Send or Receive.
type Ready struct{ d *Device }

// Sending is a radio with a transmission in progress.
type Sending struct {
	d        *Device
	finished bool
}

// Receiving is a radio with the receiver enabled.
type Receiving struct {
	d        *Device
	finished bool
}

// Message is a received frame with its RX timestamp.
type Message struct {
	RxTime Instant
	Frame  mac.Frame
}

// RxConfig controls reception.
type RxConfig struct {
	// FrameFilter drops frames not addressed to this node (or broadcast).
	FrameFilter bool
}

// LEDConfig routes the DW1000 LED outputs on GPIO0..3.
type LEDConfig struct {
	RxOK  bool
	SFD   bool
	Rx    bool
	Tx    bool
	Blink uint8 // blink time in units of 14 ms; 0 disables blink
}

// SetAddress sets the PAN id and short address used as frame source and by
// frame filtering.
func (r *Ready) SetAddress(a mac.Address) error {
	if !a.IsShort() {
		return mac.ErrAddressMode
	}
	return r.d.writeU(regPanAdr, 0, uint64(a.Pan)<<16|uint64(a.Short), 4)
}

// Address returns the configured PAN id and short address.
func (r *Ready) Address() (mac.Address, error) { return r.d.address() }

// SetAntennaDelay sets the RX and TX antenna delays.
func (r *Ready) SetAntennaDelay(rx, tx Duration) error {
	if err := r.d.writeU(regLdeIf, subLdeRxAntd, uint64(rx), 2); err != nil {
		return err
	}
	return r.d.writeU(regTxAntd, 0, uint64(tx), 2)
}

// TxAntennaDelay returns the TX antenna delay.
func (r *Ready) TxAntennaDelay() (Duration, error) {
	v, err := r.d.readU(regTxAntd, 0, 2)
	return Duration(v), err
}

// SysTime returns the current system time.
func (r *Ready) SysTime() (Instant, error) {
	v, err := r.d.readU(regSysTime, 0, 5)
	return Instant(v), err
}

// EnableTxInterrupts raises the IRQ line on frame sent.
func (r *Ready) EnableTxInterrupts() error {
	return r.d.modifyU(regSysMask, 0, 4, stTXFRS, stTXFRS)
}

// EnableRxInterrupts raises the IRQ line on frame received and on every
// receive error.
func (r *Ready) EnableRxInterrupts() error {
	m := uint64(stRXDFR | stRXFCG | stAllRxErr)
	return r.d.modifyU(regSysMask, 0, 4, m, m)
}

// DisableInterrupts masks every IRQ source.
func (r *Ready) DisableInterrupts() error {
	return r.d.writeU(regSysMask, 0, 0, 4)
}

// ConfigureLEDs routes the status outputs to GPIO0..3 and enables blinking.
func (r *Ready) ConfigureLEDs(c LEDConfig) error {
	var mode uint64
	for i, on := range [...]bool{c.RxOK, c.SFD, c.Rx, c.Tx} {
		if on {
			mode |= 1 << (6 + 2*i)
		}
	}
	if err := r.d.modifyU(regGpioCtrl, subGpioMode, 4, 0xFF<<6, mode); err != nil {
		return err
	}
	clk := uint64(pmscGpdce | pmscKhzClkEn)
	if err := r.d.modifyU(regPmsc, subPmscCtrl0, 4, clk, clk); err != nil {
		return err
	}
	var ledc uint64
	if c.Blink != 0 {
		ledc = ledcBlnkEn | uint64(c.Blink)
	}
	return r.d.writeU(regPmsc, subPmscLedc, ledc, 4)
}

// Send transmits data as a MAC data frame to dst. On error the radio stays
// Ready.
func (r *Ready) Send(data []byte, dst mac.Address, t SendTime) (*Sending, error) {
	d := r.d
	src, err := d.address()
	if err != nil {
		return nil, err
	}
	h := mac.Header{
		FrameType:     mac.FrameData,
		PanIDCompress: dst.Mode != mac.AddrNone && dst.Pan == src.Pan,
		Version:       1,
		Seq:           d.seq,
		Dest:          dst,
		Src:           src,
	}
	n, err := mac.Encode(d.tx[:maxFrameLen-mac.FooterSize], h, data)
	if err != nil {
		return nil, ErrMarshal
	}
	d.seq++

	if err := d.write(regTxBuffer, 0, d.tx[:n]); err != nil {
		return nil, err
	}
	if t.Delayed {
		if err := d.writeU(regDxTime, 0, uint64(t.At)&TimeMask, 5); err != nil {
			return nil, err
		}
	}
	flen := uint64(n + mac.FooterSize)
	fctrl := flen&txflenMask |
		(flen>>7)<<txfleShift |
		txbr6800k<<txbrShift |
		1<<15 | // TR: ranging frame
		txprf16M<<txprfShift |
		txpsr64<<txpsrShift |
		pe64<<peShift
	if err := d.writeU(regTxFctrl, 0, fctrl, 4); err != nil {
		return nil, err
	}
	if err := d.clearStatus(stAllTx | stHPDWARN | stTXBERR); err != nil {
		return nil, err
	}
	ctrl := uint64(ctrlTXSTRT)
	if t.Delayed {
		ctrl |= ctrlTXDLYS
	}
	if err := d.writeU(regSysCtrl, 0, ctrl, 4); err != nil {
		return nil, err
	}
	return &Sending{d: d}, nil
}

// Receive enables the receiver. On error the radio stays Ready.
func (r *Ready) Receive(cfg RxConfig) (*Receiving, error) {
	d := r.d
	// Soft reset of the receiver (PMSC_CTRL0 bit 28, active low).
	if err := d.modifyU(regPmsc, subPmscCtrl0, 4, 1<<28, 0); err != nil {
		return nil, err
	}
	if err := d.modifyU(regPmsc, subPmscCtrl0, 4, 1<<28, 1<<28); err != nil {
		return nil, err
	}
	ff := uint64(cfgFFEN | cfgFFBC | cfgFFAB | cfgFFAD | cfgFFAA | cfgFFAM)
	var sys uint64 = cfgDisDRXB
	if cfg.FrameFilter {
		sys |= cfgFFEN | cfgFFAB | cfgFFAD | cfgFFAA | cfgFFAM
	}
	if err := d.modifyU(regSysCfg, 0, 4, ff|cfgDisDRXB, sys); err != nil {
		return nil, err
	}
	if err := d.clearStatus(stAllRxGood | stAllRxErr); err != nil {
		return nil, err
	}
	if err := d.writeU(regSysCtrl, 0, ctrlRXENAB, 4); err != nil {
		return nil, err
	}
	return &Receiving{d: d}, nil
}

// Wait reports whether the frame has been sent. It returns ErrWouldBlock
// while the transmission is in progress.
func (s *Sending) Wait() error {
	st, err := s.d.status()
	if err != nil {
		return err
	}
	if st&stHPDWARN != 0 {
		return ErrDelayedSendPowerUpWarning
	}
	if st&stTXFRS == 0 {
		return ErrWouldBlock
	}
	if err := s.d.clearStatus(stAllTx); err != nil {
		return err
	}
	s.finished = true
	return nil
}

// FinishSending returns the radio to Ready, aborting the transmission if it
// has not completed. On error the radio stays Sending.
func (s *Sending) FinishSending() (*Ready, error) {
	if !s.finished {
		if err := s.d.forceIdle(); err != nil {
			return nil, err
		}
		if err := s.d.clearStatus(stAllTx | stHPDWARN | stTXBERR); err != nil {
			return nil, err
		}
	}
	return &Ready{d: s.d}, nil
}

// Wait returns the received frame. The frame payload aliases buf. It returns
// ErrWouldBlock until a complete, valid frame is in the receive buffer.
func (r *Receiving) Wait(buf []byte) (Message, error) {
	d := r.d
	st, err := d.status()
	if err != nil {
		return Message{}, err
	}
	if st&stRXDFR == 0 {
		return Message{}, ErrWouldBlock
	}
	switch {
	case st&stRXFCE != 0:
		return Message{}, ErrFcs
	case st&stRXPHE != 0:
		return Message{}, ErrPhy
	case st&stRXRFSL != 0:
		return Message{}, ErrReedSolomon
	case st&stRXRFTO != 0:
		return Message{}, ErrFrameWaitTimeout
	case st&stRXOVRR != 0:
		return Message{}, ErrOverrun
	case st&stRXPTO != 0:
		return Message{}, ErrPreambleDetectionTimeout
	case st&stRXSFDTO != 0:
		return Message{}, ErrSfdTimeout
	case st&stAFFREJ != 0:
		return Message{}, ErrFrameFilteringRejection
	}
	// The timestamp is only valid once the LDE has run.
	if st&stLDEDONE == 0 || st&stRXFCG == 0 {
		return Message{}, ErrWouldBlock
	}
	if err := d.clearStatus(stAllRxGood); err != nil {
		return Message{}, err
	}

	ts, err := d.readU(regRxTime, 0, 5)
	if err != nil {
		return Message{}, err
	}
	info, err := d.readU(regRxFinfo, 0, 4)
	if err != nil {
		return Message{}, err
	}
	n := int(info&rxflenMask | (info>>rxfleShift&rxfleMask)<<7)
	if n > len(buf) {
		return Message{}, ErrBufferTooSmall
	}
	if err := d.read(regRxBuffer, 0, buf[:n]); err != nil {
		return Message{}, err
	}
	f, err := mac.Decode(buf[:n], true)
	if err != nil {
		return Message{}, ErrFrame
	}
	r.finished = true
	return Message{RxTime: Instant(ts), Frame: f}, nil
}

// Status returns the SYS_STATUS register, for diagnostics.
func (r *Receiving) Status() (Status, error) {
	st, err := r.d.status()
	return Status(st), err
}

// FinishReceiving returns the radio to Ready, disabling the receiver if no
// frame was taken. On error the radio stays Receiving.
func (r *Receiving) FinishReceiving() (*Ready, error) {
	if !r.finished {
		if err := r.d.forceIdle(); err != nil {
			return nil, err
		}
		if err := r.d.clearStatus(stAllRxGood | stAllRxErr); err != nil {
			return nil, err
		}
	}
	return &Ready{d: r.d}, nil
}
