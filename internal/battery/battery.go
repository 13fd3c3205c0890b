// Package battery samples the battery voltage through a 1:2 divider on an
// ADC pin.
package battery

import (
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/mathx"
)

const (
	SupplyMV       = 3300
	LowThresholdMV = 3450
	dividerFactor  = 2
)

// ADC is a single-channel sampler with a fixed full-scale value.
type ADC interface {
	Read() (uint16, error)
	MaxSample() uint16
}

// Status is the result of a battery check.
type Status uint8

const (
	Unknown Status = iota
	Ok
	Empty
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// State is a battery check result. MilliVolts is zero when Unknown.
type State struct {
	Status     Status
	MilliVolts uint16
}

type Monitor struct {
	adc ADC
	log logx.Logger
}

func New(adc ADC) *Monitor {
	return &Monitor{adc: adc, log: logx.New("battery")}
}

// ToMilliVolts converts a raw sample to the battery voltage.
func ToMilliVolts(reading, maxSample uint16) uint16 {
	return uint16(mathx.ScaleU16(reading, maxSample, SupplyMV) * dividerFactor)
}

// ReadBatteryVoltage samples the ADC and returns the battery voltage.
func (m *Monitor) ReadBatteryVoltage() (uint16, error) {
	r, err := m.adc.Read()
	if err != nil {
		return 0, err
	}
	return ToMilliVolts(r, m.adc.MaxSample()), nil
}

// CheckBattery classifies the current voltage. A read failure is logged and
// reported as Unknown.
func (m *Monitor) CheckBattery() State {
	mv, err := m.ReadBatteryVoltage()
	if err != nil {
		m.log.Warn("adc read failed", "err", err)
		return State{Status: Unknown}
	}
	if mv <= LowThresholdMV {
		return State{Status: Empty, MilliVolts: mv}
	}
	return State{Status: Ok, MilliVolts: mv}
}
