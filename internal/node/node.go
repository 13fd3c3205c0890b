// Package node runs one ranging node: a single goroutine that owns the radio,
// the indicator, the role controller and the battery monitor. Radio
// interrupts are serviced before any due timer.
package node

import (
	"context"
	"errors"
	"time"

	"uwbdistance-go/bus"
	"uwbdistance-go/errcode"
	"uwbdistance-go/internal/battery"
	"uwbdistance-go/internal/control"
	"uwbdistance-go/internal/indicator"
	"uwbdistance-go/internal/radio"
	"uwbdistance-go/types"
	"uwbdistance-go/x/logx"
)

// ErrBatteryEmpty is returned by Run after the low-battery shutdown.
var ErrBatteryEmpty = errors.New("node: battery empty")

// TelemetryPeriod is how often the radio state is published.
const TelemetryPeriod = 5 * time.Second

// Radio is the transceiver handle. *radio.Handle satisfies it.
type Radio interface {
	control.Radio
	FinishSending() error
	ReceiveMessage() (radio.Message, error)
	HandleInterrupt() error
	AverageDistance() uint64
	LastDistance() uint64
	Shutdown()
}

// Indicator is the distance display. *indicator.LED satisfies it.
type Indicator interface {
	UpdateRange(current, target, tol uint64) indicator.Range
	SetOutOfRange()
	Shutdown()
	Range() indicator.Range
}

type Battery interface {
	CheckBattery() battery.State
}

// Interrupts delivers radio interrupt wake-ups. *irq.Line satisfies it.
type Interrupts interface {
	Events() <-chan struct{}
	Drops() uint32
}

// Toggler is a board status LED.
type Toggler interface {
	Toggle()
}

// Config is what the loop needs from the device configuration.
type Config struct {
	Role          types.Role
	TargetCm      uint64
	ToleranceCm   uint64
	Periods       control.Periods
	BatteryPeriod time.Duration
}

// Deps are the node's collaborators. StatusLED and Conn are optional.
type Deps struct {
	Radio     Radio
	Indicator Indicator
	Battery   Battery
	IRQ       Interrupts
	StatusLED Toggler
	Conn      *bus.Connection
}

type Node struct {
	cfg  Config
	r    Radio
	ind  Indicator
	bat  Battery
	irq  Interrupts
	led  Toggler
	conn *bus.Connection
	ctrl control.Controller

	dl  *deadlines
	now func() time.Time
	log logx.Logger
}

func New(cfg Config, d Deps) *Node {
	return &Node{
		cfg:  cfg,
		r:    d.Radio,
		ind:  d.Indicator,
		bat:  d.Battery,
		irq:  d.IRQ,
		led:  d.StatusLED,
		conn: d.Conn,
		ctrl: ControllerFor(cfg.Role, cfg.Periods),
		dl:   newDeadlines(),
		now:  time.Now,
		log:  logx.New("node"),
	}
}

// Run services interrupts and timers until ctx is done or the battery runs
// out. It returns ctx.Err() or ErrBatteryEmpty.
func (n *Node) Run(ctx context.Context) error {
	n.boot()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			n.stop("stopped")
			return ctx.Err()
		case <-n.irq.Events():
			n.onInterrupt()
			continue
		default:
		}

		wait := n.dl.NextWait(n.now().UnixNano())
		if wait == 0 {
			if err := n.runDue(); err != nil {
				return err
			}
			continue
		}
		if wait < 0 {
			wait = time.Hour
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			n.stop("stopped")
			return ctx.Err()
		case <-n.irq.Events():
			// A stale tick only costs one extra pass.
			timer.Stop()
			n.onInterrupt()
		case <-timer.C:
		}
	}
}

func (n *Node) boot() {
	n.log.Info("starting", "role", string(n.cfg.Role))
	n.report("start_receiving", n.r.StartReceiving())

	now := n.now().UnixNano()
	if n.ctrl != nil {
		n.dl.Upsert(taskControl, now)
	}
	n.dl.Upsert(taskBattery, now)
	n.dl.Upsert(taskTelemetry, now)
	n.publishNode("running")
}

func (n *Node) stop(level string) {
	n.r.Shutdown()
	n.publishNode(level)
	n.log.Info("node stopped", "level", level)
}

// runDue runs the earliest due task and reschedules it.
func (n *Node) runDue() error {
	now := n.now().UnixNano()
	t, due, ok := n.dl.PopDue(now)
	if !ok {
		return nil
	}
	switch t {
	case taskControl:
		period := n.ctrl.Tick(n.r, tap{n})
		n.dl.Upsert(taskControl, next(due, now, period))
	case taskBattery:
		if err := n.checkBattery(); err != nil {
			return err
		}
		n.dl.Upsert(taskBattery, next(due, now, n.cfg.BatteryPeriod))
	case taskTelemetry:
		n.publishRadio()
		n.dl.Upsert(taskTelemetry, next(due, now, TelemetryPeriod))
	}
	return nil
}

// onInterrupt acknowledges the radio interrupt and advances the exchange.
func (n *Node) onInterrupt() {
	if err := n.r.HandleInterrupt(); err != nil {
		// A wake-up queued for an interrupt already handled.
		n.log.Debug("spurious interrupt", "err", err)
		return
	}

	switch n.r.State() {
	case radio.StateReady:
		n.log.Warn("interrupt in ready state")
	case radio.StateSending:
		n.report("finish_sending", n.r.FinishSending())
		n.report("start_receiving", n.r.StartReceiving())
	case radio.StateReceiving:
		n.receive()
	}
}

func (n *Node) receive() {
	m, err := n.r.ReceiveMessage()
	if err != nil {
		n.report("receive_message", err)
	} else {
		if n.ctrl != nil {
			n.ctrl.Observe(m)
		}
		if m.Kind == radio.KindResponse {
			n.onResponse(m)
		} else {
			n.log.Debug("received message", "msg", m)
		}
	}
	if n.r.State() != radio.StateSending {
		n.report("start_receiving", n.r.StartReceiving())
	}
}

func (n *Node) onResponse(m radio.Message) {
	if n.led != nil {
		n.led.Toggle()
	}
	if !m.Valid {
		n.publishDistance(false)
		return
	}
	avg := n.r.AverageDistance()
	n.log.Info("ranging response", "cm", n.r.LastDistance(), "filtered_cm", avg)
	before := n.ind.Range()
	rng := n.ind.UpdateRange(avg, n.cfg.TargetCm, n.cfg.ToleranceCm)
	n.publishDistance(true)
	if rng != before {
		n.publishRange(rng)
	}
}

func (n *Node) checkBattery() error {
	st := n.bat.CheckBattery()
	n.publishBattery(st)
	if st.Status != battery.Empty {
		return nil
	}
	n.log.Error("battery empty, shutting down", "mv", st.MilliVolts)
	n.r.Shutdown()
	n.ind.Shutdown()
	n.publishNode("shutdown")
	return ErrBatteryEmpty
}

// report logs a failed radio operation. InvalidState is expected when a
// reply is still in flight and only warns.
func (n *Node) report(op string, err error) {
	switch {
	case err == nil:
	case errcode.Of(err) == errcode.InvalidState:
		n.log.Warn("radio not in required state", "op", op, "state", n.r.State())
	default:
		n.log.Error("radio operation failed", "op", op, "err", err)
	}
}

// tap forwards controller timeouts to the indicator and publishes the change.
type tap struct{ n *Node }

func (t tap) SetOutOfRange() {
	t.n.ind.SetOutOfRange()
	t.n.publishRange(indicator.OutOfRange)
}
