package config

// Per-device overrides, keyed by device name. Devices are named after the
// board they were calibrated on.
const cfgPico = `{
  "target_cm": 150,
  "tolerance_cm": 20,
  "rx_antenna_delay": 16456,
  "tx_antenna_delay": 16300
}`

const cfgPicoBench = `{
  "target_cm": 100,
  "tolerance_cm": 20,
  "battery_period_cycles": 64000000,
  "log_level": "debug"
}`

var embeddedConfigs = map[string][]byte{
	"pico":       []byte(cfgPico),
	"pico-bench": []byte(cfgPicoBench),
}
