// Command firmware is the node image. Build with -tags anchor or -tags tag.
package main

import (
	"context"
	"errors"
	"time"

	"uwbdistance-go/bus"
	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/internal/battery"
	"uwbdistance-go/internal/config"
	"uwbdistance-go/internal/indicator"
	"uwbdistance-go/internal/irq"
	"uwbdistance-go/internal/node"
	"uwbdistance-go/internal/platform"
	"uwbdistance-go/internal/radio"
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/ring"
)

// ConsoleBuffer is the log backlog held while the UART catches up.
const ConsoleBuffer = 2048

var log = logx.New("main")

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	board, err := platform.Open()
	if err != nil {
		log.Error("no board", "err", err)
		halt()
	}
	if board.Console != nil {
		console := ring.New(ConsoleBuffer)
		logx.SetSink(&logx.WriterSink{W: console})
		go console.Drain(context.Background(), board.Console)
	}

	cfg, err := config.Load(board.Name)
	switch {
	case errors.Is(err, config.ErrNoConfig):
		log.Info("no embedded config, using defaults", "device", board.Name)
	case err != nil:
		log.Error("config rejected, using defaults", "device", board.Name, "err", err)
		cfg = config.Default()
		cfg.Device = board.Name
	}
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	logx.SetLevel(lvl)

	b := bus.NewBus(4)
	cfg.Publish(b.NewConnection("config"))
	mon := b.NewConnection("monitor").Subscribe(bus.T("#"))
	go monitor(mon)

	h, line, err := openRadio(board, cfg)
	if err != nil {
		log.Error("radio init failed", "err", err)
		halt()
	}

	n := node.New(node.Config{
		Role:          node.CompiledRole,
		TargetCm:      cfg.TargetCm,
		ToleranceCm:   cfg.ToleranceCm,
		Periods:       cfg.Periods(),
		BatteryPeriod: cfg.BatteryEvery(),
	}, node.Deps{
		Radio:     h,
		Indicator: indicator.New(board.Strip),
		Battery:   battery.New(board.ADC),
		IRQ:       line,
		StatusLED: board.LED,
		Conn:      b.NewConnection("node"),
	})
	err = n.Run(context.Background())
	line.Detach()
	log.Error("node stopped", "err", err)
	halt()
}

func openRadio(board *platform.Board, cfg config.Config) (*radio.Handle, *irq.Line, error) {
	dev := dw1000.New(board.SPI, board.CS)
	ready, err := dev.Init()
	if err != nil {
		return nil, nil, err
	}
	r, err := radio.Configure(ready, radio.Settings{
		Address:        node.AddressFor(node.CompiledRole),
		RxAntennaDelay: dw1000.Duration(cfg.RxAntennaDelay),
		TxAntennaDelay: dw1000.Duration(cfg.TxAntennaDelay),
		LEDs:           dw1000.LEDConfig{RxOK: true, SFD: true, Rx: true, Tx: true, Blink: 5},
	})
	if err != nil {
		return nil, nil, err
	}
	line := irq.New(4)
	if err := line.Attach(board.IRQ); err != nil {
		return nil, nil, err
	}
	h := radio.New(r, line)
	h.SetDelay(platform.BusyDelay)
	h.SetRxConfig(dw1000.RxConfig{FrameFilter: true})
	return h, line, nil
}

// monitor logs every telemetry topic as it changes.
func monitor(sub *bus.Subscription) {
	for m := range sub.Channel() {
		log.Debug("telemetry", "topic", m.Topic)
	}
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
