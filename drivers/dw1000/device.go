package dw1000

import (
	"uwbdistance-go/drivers/dw1000/mac"

	"tinygo.org/x/drivers"
)

// Pin is the chip-select line. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// maxFrameLen is the largest frame in standard (non-extended) frame mode.
const maxFrameLen = 127

// ldeLoadPolls bounds the wait for the LDE microcode load to finish.
const ldeLoadPolls = 1000

// Device is a DW1000 on an SPI bus. It is not safe for concurrent use; the
// state types returned by Init, Send and Receive share it.
type Device struct {
	bus drivers.SPI
	cs  Pin
	seq uint8

	// Fixed buffers to avoid per-call heap allocations.
	hdr [3]byte
	r   [8]byte
	w   [8]byte
	tx  [maxFrameLen]byte
}

// New returns a Device. Call Init before use.
func New(bus drivers.SPI, cs Pin) *Device {
	cs.High()
	return &Device{bus: bus, cs: cs}
}

// Init checks the device id and applies the default tuning. It returns the
// radio in the Ready state.
func (d *Device) Init() (*Ready, error) {
	id, err := d.readU(regDevID, 0, 4)
	if err != nil {
		return nil, err
	}
	if id != DevIDExpected {
		return nil, ErrDeviceID
	}

	steps := []struct {
		reg uint8
		sub uint16
		val uint64
		n   int
	}{
		{regAgcCtrl, subAgcTune1, tuneAgcTune1, 2},
		{regAgcCtrl, subAgcTune2, tuneAgcTune2, 4},
		{regDrxConf, subDrxTune2, tuneDrxTune2, 4},
		{regLdeIf, subLdeCfg2, tuneLdeCfg2, 2},
		{regTxPower, 0, tuneTxPower, 4},
		{regRfConf, subRfTxCtrl, tuneRfTxCtrl, 3},
		{regTxCal, subTcPgDelay, tuneTcPgDelay, 1},
		{regFsCtrl, subFsPllTune, tuneFsPllTune, 1},
	}
	for _, s := range steps {
		if err := d.writeU(s.reg, s.sub, s.val, s.n); err != nil {
			return nil, err
		}
	}
	// LDE_CFG1.NTM lives in the low 5 bits.
	if err := d.modifyU(regLdeIf, subLdeCfg1, 1, 0x1F, tuneLdeNtm); err != nil {
		return nil, err
	}
	if err := d.loadLDE(); err != nil {
		return nil, err
	}
	return &Ready{d: d}, nil
}

// loadLDE copies the LDE microcode from OTP, which needs the system clock
// forced to XTI while it runs.
func (d *Device) loadLDE() error {
	if err := d.modifyU(regPmsc, subPmscCtrl0, 4, pmscSysClksMsk, pmscSysClksXti); err != nil {
		return err
	}
	if err := d.writeU(regOtpIf, subOtpCtrl, otpLdeLoad, 2); err != nil {
		return err
	}
	done := false
	for i := 0; i < ldeLoadPolls; i++ {
		v, err := d.readU(regOtpIf, subOtpCtrl, 2)
		if err != nil {
			return err
		}
		if v&otpLdeLoad == 0 {
			done = true
			break
		}
	}
	if !done {
		return ErrInvalidConfiguration
	}
	return d.modifyU(regPmsc, subPmscCtrl0, 4, pmscSysClksMsk, 0)
}

// SPI transaction header: bit 7 write, bit 6 sub-index follows, 6-bit id.
// A sub-address above 0x7F takes an extension byte.
func (d *Device) header(reg uint8, sub uint16, write bool) []byte {
	b := reg & 0x3F
	if write {
		b |= 0x80
	}
	if sub == 0 {
		d.hdr[0] = b
		return d.hdr[:1]
	}
	d.hdr[0] = b | 0x40
	if sub < 0x80 {
		d.hdr[1] = byte(sub)
		return d.hdr[:2]
	}
	d.hdr[1] = 0x80 | byte(sub&0x7F)
	d.hdr[2] = byte(sub >> 7)
	return d.hdr[:3]
}

func (d *Device) read(reg uint8, sub uint16, buf []byte) error {
	h := d.header(reg, sub, false)
	d.cs.Low()
	err := d.bus.Tx(h, nil)
	if err == nil {
		err = d.bus.Tx(nil, buf)
	}
	d.cs.High()
	return err
}

func (d *Device) write(reg uint8, sub uint16, data []byte) error {
	h := d.header(reg, sub, true)
	d.cs.Low()
	err := d.bus.Tx(h, nil)
	if err == nil {
		err = d.bus.Tx(data, nil)
	}
	d.cs.High()
	return err
}

// Little-endian register values of n <= 8 bytes.

func (d *Device) readU(reg uint8, sub uint16, n int) (uint64, error) {
	if err := d.read(reg, sub, d.r[:n]); err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(d.r[i])
	}
	return v, nil
}

func (d *Device) writeU(reg uint8, sub uint16, v uint64, n int) error {
	for i := 0; i < n; i++ {
		d.w[i] = byte(v >> (8 * i))
	}
	return d.write(reg, sub, d.w[:n])
}

func (d *Device) modifyU(reg uint8, sub uint16, n int, mask, val uint64) error {
	v, err := d.readU(reg, sub, n)
	if err != nil {
		return err
	}
	return d.writeU(reg, sub, v&^mask|val&mask, n)
}

func (d *Device) status() (uint32, error) {
	v, err := d.readU(regSysStatus, 0, 4)
	return uint32(v), err
}

// clearStatus writes 1s to clear SYS_STATUS bits.
func (d *Device) clearStatus(bits uint32) error {
	return d.writeU(regSysStatus, 0, uint64(bits), 4)
}

// forceIdle puts the transceiver in idle, aborting any TX or RX.
func (d *Device) forceIdle() error {
	return d.writeU(regSysCtrl, 0, ctrlTRXOFF, 4)
}

func (d *Device) address() (mac.Address, error) {
	v, err := d.readU(regPanAdr, 0, 4)
	if err != nil {
		return mac.Address{}, err
	}
	return mac.Short(mac.PanID(v>>16), mac.ShortAddress(v)), nil
}
