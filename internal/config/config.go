// Package config resolves the per-device node configuration: compiled-in
// defaults overlaid with an embedded JSON document for the device.
package config

import (
	"encoding/json"
	"errors"
	"time"

	"uwbdistance-go/bus"
	"uwbdistance-go/internal/control"
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/timex"
)

const configPrefix = "config"

var (
	ErrNoConfig   = errors.New("config: no embedded config for device")
	ErrTolerance  = errors.New("config: tolerance must be positive and at most half the target")
	ErrPeriod     = errors.New("config: periods must be non-zero")
	ErrLogLevel   = errors.New("config: unknown log level")
	ErrAntennaDly = errors.New("config: antenna delay out of range")
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Config is the node configuration. Periods are CPU cycles at
// timex.ReferenceHz.
type Config struct {
	Device string `json:"device"`

	TargetCm    uint64 `json:"target_cm"`
	ToleranceCm uint64 `json:"tolerance_cm"`

	RxAntennaDelay uint16 `json:"rx_antenna_delay"`
	TxAntennaDelay uint16 `json:"tx_antenna_delay"`

	AnchorPeriod  uint64 `json:"anchor_period_cycles"`
	TagFastPeriod uint64 `json:"tag_fast_period_cycles"`
	TagSlowPeriod uint64 `json:"tag_slow_period_cycles"`
	BatteryPeriod uint64 `json:"battery_period_cycles"`

	LogLevel string `json:"log_level"`
}

const BatteryPeriodCycles = 640_000_000

// Default is the configuration used when a device has no overrides.
func Default() Config {
	return Config{
		TargetCm:       150,
		ToleranceCm:    20,
		RxAntennaDelay: 16456,
		TxAntennaDelay: 16300,
		AnchorPeriod:   control.AnchorPeriodCycles,
		TagFastPeriod:  control.TagFastPeriodCycles,
		TagSlowPeriod:  control.TagSlowPeriodCycles,
		BatteryPeriod:  BatteryPeriodCycles,
		LogLevel:       "info",
	}
}

// Load returns the defaults overlaid with the device's embedded JSON. Fields
// absent from the document keep their defaults. A device without an entry
// gets ErrNoConfig together with the defaults.
func Load(device string) (Config, error) {
	c := Default()
	c.Device = device
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return c, ErrNoConfig
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Default(), err
	}
	c.Device = device
	return c, c.Validate()
}

// Validate checks the invariants the indicator and schedulers rely on.
func (c Config) Validate() error {
	if c.ToleranceCm == 0 || 2*c.ToleranceCm > c.TargetCm {
		return ErrTolerance
	}
	if c.AnchorPeriod == 0 || c.TagFastPeriod == 0 || c.TagSlowPeriod == 0 || c.BatteryPeriod == 0 {
		return ErrPeriod
	}
	// Antenna delays are 16-bit on the chip; zero means uncalibrated.
	if c.RxAntennaDelay == 0 || c.TxAntennaDelay == 0 {
		return ErrAntennaDly
	}
	if _, ok := ParseLevel(c.LogLevel); !ok {
		return ErrLogLevel
	}
	return nil
}

// Periods converts the cycle counts to durations.
func (c Config) Periods() control.Periods {
	return control.Periods{
		Anchor:  timex.Cycles(c.AnchorPeriod, 0),
		TagFast: timex.Cycles(c.TagFastPeriod, 0),
		TagSlow: timex.Cycles(c.TagSlowPeriod, 0),
	}
}

func (c Config) BatteryEvery() time.Duration { return timex.Cycles(c.BatteryPeriod, 0) }

// ParseLevel maps a level name to a logx level.
func ParseLevel(s string) (logx.Level, bool) {
	switch s {
	case "debug":
		return logx.LevelDebug, true
	case "info", "":
		return logx.LevelInfo, true
	case "warn":
		return logx.LevelWarn, true
	case "error":
		return logx.LevelError, true
	}
	return logx.LevelInfo, false
}

// Publish retains the effective configuration on config/<device>.
func (c Config) Publish(conn *bus.Connection) {
	name := c.Device
	if name == "" {
		name = "default"
	}
	conn.Publish(conn.NewMessage(bus.T(configPrefix, name), c, true))
}
