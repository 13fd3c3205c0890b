package node

import (
	"uwbdistance-go/bus"
	"uwbdistance-go/internal/battery"
	"uwbdistance-go/internal/indicator"
	"uwbdistance-go/types"
)

// Retained telemetry topics.
var (
	TopicNode     = bus.T("node", "state")
	TopicDistance = bus.T("ranging", "distance")
	TopicRange    = bus.T("indicator", "range")
	TopicBattery  = bus.T("power", "battery")
	TopicRadio    = bus.T("radio", "state")
)

func (n *Node) publish(t bus.Topic, payload any) {
	if n.conn == nil {
		return
	}
	n.conn.Publish(n.conn.NewMessage(t, payload, true))
}

func (n *Node) ts() int64 { return n.now().UnixMilli() }

func (n *Node) publishNode(level string) {
	n.publish(TopicNode, types.NodeState{Role: n.cfg.Role, Level: level, TS: n.ts()})
}

func (n *Node) publishDistance(valid bool) {
	n.publish(TopicDistance, types.DistanceValue{
		Valid:     valid,
		LatestCm:  n.r.LastDistance(),
		AverageCm: n.r.AverageDistance(),
		TS:        n.ts(),
	})
}

func (n *Node) publishRange(r indicator.Range) {
	n.publish(TopicRange, types.RangeValue{Range: r.String(), TS: n.ts()})
}

func (n *Node) publishBattery(st battery.State) {
	n.publish(TopicBattery, types.BatteryValue{Status: st.Status.String(), MilliV: st.MilliVolts, TS: n.ts()})
}

func (n *Node) publishRadio() {
	n.publish(TopicRadio, types.RadioValue{State: n.r.State().String(), Drops: n.irq.Drops(), TS: n.ts()})
}
