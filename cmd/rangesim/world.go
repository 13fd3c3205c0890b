package main

import (
	"context"
	"sync"
	"time"

	"uwbdistance-go/bus"
	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/internal/battery"
	"uwbdistance-go/internal/config"
	"uwbdistance-go/internal/indicator"
	"uwbdistance-go/internal/irq"
	"uwbdistance-go/internal/node"
	"uwbdistance-go/internal/radio"
	"uwbdistance-go/internal/sim"
	"uwbdistance-go/types"
	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/ramp"
)

// simNode is one node and its simulated board.
type simNode struct {
	role   types.Role
	radio  *sim.Transceiver
	line   *irq.Line
	handle *radio.Handle
	strip  *sim.Strip
	led    *indicator.LED
	adc    *sim.ADC
	status *sim.LED
	bus    *bus.Bus
	node   *node.Node
}

// world is an anchor at position 0 and a tag at a variable distance.
type world struct {
	air    *sim.Air
	anchor *simNode
	tag    *simNode
	wg     sync.WaitGroup
	log    logx.Logger
}

func newWorld(cfg config.Config, distanceMM uint64, batteryMV uint16) *world {
	air := sim.NewAir()
	w := &world{air: air, log: logx.New("sim")}
	w.anchor = newSimNode(air, cfg, types.RoleAnchor, 0, batteryMV)
	w.tag = newSimNode(air, cfg, types.RoleTag, distanceMM, batteryMV)
	return w
}

func newSimNode(air *sim.Air, cfg config.Config, role types.Role, pos uint64, mv uint16) *simNode {
	n := &simNode{
		role:   role,
		radio:  air.NewTransceiver(string(role), mac.Short(radio.PanID, node.AddressFor(role)), pos),
		line:   irq.New(4),
		strip:  &sim.Strip{},
		adc:    sim.NewADC(mv),
		status: &sim.LED{},
		bus:    bus.NewBus(16),
	}
	_ = n.line.Attach(n.radio)
	n.handle = radio.New(n.radio.Ready(), n.line)
	n.handle.SetRxConfig(dw1000.RxConfig{FrameFilter: true})
	n.led = indicator.New(n.strip)
	cfg.Publish(n.bus.NewConnection("config"))
	n.node = node.New(node.Config{
		Role:          role,
		TargetCm:      cfg.TargetCm,
		ToleranceCm:   cfg.ToleranceCm,
		Periods:       cfg.Periods(),
		BatteryPeriod: cfg.BatteryEvery(),
	}, node.Deps{
		Radio:     n.handle,
		Indicator: n.led,
		Battery:   battery.New(n.adc),
		IRQ:       n.line,
		StatusLED: n.status,
		Conn:      n.bus.NewConnection("node"),
	})
	return n
}

// start runs both nodes. The returned channel closes once both stopped.
func (w *world) start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	for _, n := range []*simNode{w.anchor, w.tag} {
		w.wg.Add(1)
		go func(n *simNode) {
			defer w.wg.Done()
			err := n.node.Run(ctx)
			w.log.Info("node exited", "role", string(n.role), "err", err)
		}(n)
	}
	go func() {
		w.wg.Wait()
		close(done)
	}()
	return done
}

func (w *world) wait() { w.wg.Wait() }

// moveTag shifts the tag by delta mm, stopping at the anchor.
func (w *world) moveTag(deltaMM int64) uint64 {
	pos := int64(w.tag.radio.Position()) + deltaMM
	if pos < 0 {
		pos = 0
	}
	w.tag.radio.SetPosition(uint64(pos))
	return uint64(pos)
}

// SweepStep is the interval between tag moves during a sweep.
const SweepStep = 100 * time.Millisecond

// sweep walks the tag in a straight line to toMM over d. It returns early
// when ctx is done.
func (w *world) sweep(ctx context.Context, toMM uint64, d time.Duration) {
	from := int64(w.tag.radio.Position())
	steps := int(d / SweepStep)
	w.log.Info("sweep", "from_mm", from, "to_mm", toMM, "steps", steps)
	done := ramp.Linear(from, int64(toMM), d, steps, ramp.Sleep(ctx), func(mm int64) {
		w.tag.radio.SetPosition(uint64(mm))
	})
	w.log.Info("sweep ended", "completed", done, "mm", w.tag.radio.Position())
}
