// Package platform opens the board peripherals a node runs on.
package platform

import (
	"errors"
	"io"
	"time"

	"tinygo.org/x/drivers"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/internal/battery"
	"uwbdistance-go/internal/indicator"
	"uwbdistance-go/internal/irq"
)

// ErrNoBoard is returned by Open on targets without board support.
var ErrNoBoard = errors.New("platform: no board support for this target")

// Board is the set of peripherals a node needs.
type Board struct {
	Name string

	SPI   drivers.SPI
	CS    dw1000.Pin
	IRQ   irq.Pin
	Strip indicator.Strip
	ADC   battery.ADC
	LED   interface{ Toggle() }

	// Console receives log records; nil keeps the runtime console.
	Console io.Writer
}

// BusyDelay spins for d. It is used between receive polls, where the
// scheduler must not run another task.
func BusyDelay(d time.Duration) {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}
