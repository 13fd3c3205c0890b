//go:build rp2040

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ws2812"
)

// Pico wiring.
const (
	pinSCK    = machine.GPIO18
	pinSDO    = machine.GPIO19
	pinSDI    = machine.GPIO16
	pinCS     = machine.GPIO17
	pinIRQ    = machine.GPIO21
	pinStrip  = machine.GPIO22
	pinBatt   = machine.ADC0
	pinLogTX  = machine.GPIO0
	pinLogRX  = machine.GPIO1
	spiHz     = 2_000_000
	logBaud   = 115200
	boardName = "pico"
)

// Open configures the Pico peripherals.
func Open() (*Board, error) {
	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: spiHz,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
		Mode:      0,
	}); err != nil {
		return nil, err
	}
	pinCS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinCS.High()

	pinIRQ.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	pinStrip.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := ws2812.NewWS2812(pinStrip)

	machine.InitADC()
	adc := machine.ADC{Pin: pinBatt}
	adc.Configure(machine.ADCConfig{})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Defaults inside uartx apply to unset fields.
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: logBaud,
		TX:       pinLogTX,
		RX:       pinLogRX,
	})

	return &Board{
		Name:    boardName,
		SPI:     machine.SPI0,
		CS:      pinCS,
		IRQ:     &rp2IRQ{p: pinIRQ},
		Strip:   &strip,
		ADC:     rp2ADC{adc},
		LED:     &rp2LED{p: led},
		Console: uartx.UART0,
	}, nil
}

type rp2IRQ struct{ p machine.Pin }

func (r *rp2IRQ) SetIRQ(handler func()) error {
	return r.p.SetInterrupt(machine.PinRising, func(machine.Pin) { handler() })
}

func (r *rp2IRQ) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

// rp2ADC reads the 12-bit converter scaled to 16 bits by machine.ADC.
type rp2ADC struct{ a machine.ADC }

func (r rp2ADC) Read() (uint16, error) { return r.a.Get(), nil }
func (r rp2ADC) MaxSample() uint16     { return 0xFFFF }

type rp2LED struct{ p machine.Pin }

func (r *rp2LED) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}
