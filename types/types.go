// Package types holds the retained telemetry payloads a node publishes on
// the bus. Timestamps are Unix milliseconds.
package types

type Role string

const (
	RoleAnchor Role = "anchor"
	RoleTag    Role = "tag"
	RoleNone   Role = "none"
)

// NodeState is the node lifecycle (retained).
type NodeState struct {
	Role  Role   `json:"role"`
	Level string `json:"level"` // "running", "stopped", "shutdown"
	TS    int64  `json:"ts_ms"`
}

// DistanceValue is published after every ranging response.
type DistanceValue struct {
	Valid     bool   `json:"valid"`
	LatestCm  uint64 `json:"latest_cm"`
	AverageCm uint64 `json:"average_cm"`
	TS        int64  `json:"ts_ms"`
}

// RangeValue is the bucket shown on the indicator.
type RangeValue struct {
	Range string `json:"range"`
	TS    int64  `json:"ts_ms"`
}

type BatteryValue struct {
	Status string `json:"status"` // "ok", "empty", "unknown"
	MilliV uint16 `json:"mV"`
	TS     int64  `json:"ts_ms"`
}

// RadioValue reports the transceiver state and interrupt queue health.
type RadioValue struct {
	State string `json:"state"`
	Drops uint32 `json:"irq_drops"`
	TS    int64  `json:"ts_ms"`
}
