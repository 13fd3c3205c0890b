package dw1000

import "errors"

// Errors returned by the driver. Bus errors from the SPI implementation are
// returned unwrapped.
var (
	ErrWouldBlock = errors.New("dw1000: would block")

	ErrFcs                       = errors.New("dw1000: frame check sequence error")
	ErrPhy                       = errors.New("dw1000: PHY header error")
	ErrBufferTooSmall            = errors.New("dw1000: buffer too small")
	ErrReedSolomon               = errors.New("dw1000: Reed-Solomon decoder error")
	ErrFrameWaitTimeout          = errors.New("dw1000: frame wait timeout")
	ErrOverrun                   = errors.New("dw1000: receiver overrun")
	ErrPreambleDetectionTimeout  = errors.New("dw1000: preamble detection timeout")
	ErrSfdTimeout                = errors.New("dw1000: SFD timeout")
	ErrFrameFilteringRejection   = errors.New("dw1000: frame rejected by filter")
	ErrFrame                     = errors.New("dw1000: malformed MAC frame")
	ErrDelayedSendTooLate        = errors.New("dw1000: delayed send too late")
	ErrDelayedSendPowerUpWarning = errors.New("dw1000: delayed send power-up warning")
	ErrMarshal                   = errors.New("dw1000: payload encoding error")
	ErrInvalidConfiguration      = errors.New("dw1000: invalid configuration")

	ErrDeviceID = errors.New("dw1000: unexpected device id")
)

// Faults lists the device-reported errors in fault-code order.
var Faults = [...]error{
	ErrFcs,
	ErrPhy,
	ErrBufferTooSmall,
	ErrReedSolomon,
	ErrFrameWaitTimeout,
	ErrOverrun,
	ErrPreambleDetectionTimeout,
	ErrSfdTimeout,
	ErrFrameFilteringRejection,
	ErrFrame,
	ErrDelayedSendTooLate,
	ErrDelayedSendPowerUpWarning,
	ErrMarshal,
	ErrInvalidConfiguration,
}

// FaultCode returns the index of err in Faults, or -1.
func FaultCode(err error) int {
	for i, f := range Faults {
		if errors.Is(err, f) {
			return i
		}
	}
	return -1
}
