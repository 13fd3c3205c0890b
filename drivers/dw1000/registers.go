// Package dw1000 is a driver for the Decawave DW1000 UWB transceiver on a
// tinygo drivers.SPI bus.
//
// The device is handed out in one of three states, each a distinct type that
// only exposes the operations valid in that state:
//
//	rdy, _ := dw1000.New(spi, cs).Init()   // *Ready
//	rx, _ := rdy.Receive(dw1000.RxConfig{}) // *Receiving
//	msg, err := rx.Wait(buf)               // ErrWouldBlock until a frame is in
//	rdy, _ = rx.FinishReceiving()
//
// Wait never blocks; callers poll it (or wait for the IRQ line).
package dw1000

// Register file ids.
const (
	regDevID     = 0x00
	regPanAdr    = 0x03
	regSysCfg    = 0x04
	regSysTime   = 0x06
	regTxFctrl   = 0x08
	regTxBuffer  = 0x09
	regDxTime    = 0x0A
	regSysCtrl   = 0x0D
	regSysMask   = 0x0E
	regSysStatus = 0x0F
	regRxFinfo   = 0x10
	regRxBuffer  = 0x11
	regRxTime    = 0x15
	regTxTime    = 0x17
	regTxAntd    = 0x18
	regTxPower   = 0x1E
	regAgcCtrl   = 0x23
	regGpioCtrl  = 0x26
	regDrxConf   = 0x27
	regRfConf    = 0x28
	regTxCal     = 0x2A
	regFsCtrl    = 0x2B
	regOtpIf     = 0x2D
	regLdeIf     = 0x2E
	regPmsc      = 0x36
)

// Sub-register offsets.
const (
	subAgcTune1  = 0x04
	subAgcTune2  = 0x0C
	subGpioMode  = 0x00
	subDrxTune2  = 0x08
	subRfTxCtrl  = 0x0C
	subTcPgDelay = 0x0B
	subFsPllTune = 0x0B
	subOtpCtrl   = 0x06
	subLdeCfg1   = 0x0806
	subLdeRxAntd = 0x1804
	subLdeCfg2   = 0x1806
	subPmscCtrl0 = 0x00
	subPmscLedc  = 0x28
)

// DevIDExpected is the DEV_ID register of a DW1000 (RIDTAG 0xDECA, model 1, ver 3).
const DevIDExpected = 0xDECA0130

// SYS_CFG bits.
const (
	cfgFFEN    = 1 << 0
	cfgFFBC    = 1 << 1
	cfgFFAB    = 1 << 2
	cfgFFAD    = 1 << 3
	cfgFFAA    = 1 << 4
	cfgFFAM    = 1 << 5
	cfgHIRQPol = 1 << 9
	cfgDisDRXB = 1 << 12
)

// SYS_CTRL bits.
const (
	ctrlTXSTRT = 1 << 1
	ctrlTXDLYS = 1 << 2
	ctrlTRXOFF = 1 << 6
	ctrlRXENAB = 1 << 8
)

// SYS_STATUS / SYS_MASK bits (same positions in both registers).
const (
	stIRQS      = 1 << 0
	stTXFRB     = 1 << 4
	stTXPRS     = 1 << 5
	stTXPHS     = 1 << 6
	stTXFRS     = 1 << 7
	stRXPRD     = 1 << 8
	stRXSFDD    = 1 << 9
	stLDEDONE   = 1 << 10
	stRXPHD     = 1 << 11
	stRXPHE     = 1 << 12
	stRXDFR     = 1 << 13
	stRXFCG     = 1 << 14
	stRXFCE     = 1 << 15
	stRXRFSL    = 1 << 16
	stRXRFTO    = 1 << 17
	stLDEERR    = 1 << 18
	stRXOVRR    = 1 << 20
	stRXPTO     = 1 << 21
	stRXSFDTO   = 1 << 26
	stHPDWARN   = 1 << 27
	stTXBERR    = 1 << 28
	stAFFREJ    = 1 << 29
	stAllTx     = stTXFRB | stTXPRS | stTXPHS | stTXFRS
	stAllRxGood = stRXPRD | stRXSFDD | stLDEDONE | stRXPHD | stRXDFR | stRXFCG
	stAllRxErr  = stRXPHE | stRXFCE | stRXRFSL | stRXRFTO | stLDEERR | stRXOVRR | stRXPTO | stRXSFDTO | stAFFREJ
)

// TX_FCTRL fields.
const (
	txflenMask   = 0x7F
	txfleShift   = 7
	txbrShift    = 13
	txprfShift   = 16
	txpsrShift   = 18
	peShift      = 20
	txboffsShift = 22

	txbr6800k = 0b10
	txprf16M  = 0b01
	txpsr64   = 0b01
	pe64      = 0b00
)

// RX_FINFO fields.
const (
	rxflenMask = 0x7F
	rxfleShift = 7
	rxfleMask  = 0x7
)

// OTP_CTRL / PMSC bits used during init.
const (
	otpLdeLoad     = 1 << 15
	pmscSysClksMsk = 0x3
	pmscSysClksXti = 0x1
	pmscGpdce      = 1 << 18
	pmscKhzClkEn   = 1 << 23
	ledcBlnkEn     = 1 << 8
)

// Tuning values written by Init (user manual section 2.5.5, defaults for
// channel 5, 16 MHz PRF, 6.8 Mbps, 64-symbol preamble).
const (
	tuneAgcTune1  = 0x8870
	tuneAgcTune2  = 0x2502A907
	tuneDrxTune2  = 0x311A002D
	tuneLdeNtm    = 0xD
	tuneLdeCfg2   = 0x1607
	tuneTxPower   = 0x0E082848
	tuneRfTxCtrl  = 0x001E3FE0
	tuneTcPgDelay = 0xC0
	tuneFsPllTune = 0xBE
)

// Status is a snapshot of the low 32 bits of SYS_STATUS.
type Status uint32

func (s Status) LDEDone() bool { return s&stLDEDONE != 0 }
func (s Status) RxDFR() bool   { return s&stRXDFR != 0 }
func (s Status) RxFCG() bool   { return s&stRXFCG != 0 }
func (s Status) RxFCE() bool   { return s&stRXFCE != 0 }
func (s Status) LDEErr() bool  { return s&stLDEERR != 0 }
func (s Status) TxFRS() bool   { return s&stTXFRS != 0 }

// Status values of a clean reception and a finished transmission.
const (
	StatusRxGood Status = stAllRxGood
	StatusTxDone Status = stAllTx
)
