// Package radio owns the UWB transceiver. The transceiver is held in exactly
// one of three states (Ready, Sending, Receiving); every operation moves it
// between them or fails with errcode.InvalidState.
package radio

import (
	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/drivers/dw1000/ranging"
)

// Fixed addressing of the two ranging nodes.
const (
	PanID         mac.PanID        = 0x0D57
	AnchorAddress mac.ShortAddress = 0x1234
	TagAddress    mac.ShortAddress = 0x1235
)

// Ready is an idle transceiver.
type Ready interface {
	ranging.Clock
	Send(data []byte, dst mac.Address, t dw1000.SendTime) (Sending, error)
	Receive(cfg dw1000.RxConfig) (Receiving, error)
}

// Sending is a transceiver with a transmission in flight.
type Sending interface {
	Wait() error
	Finish() (Ready, error)
}

// Receiving is a transceiver with the receiver armed.
type Receiving interface {
	Wait(buf []byte) (dw1000.Message, error)
	Status() (dw1000.Status, error)
	Finish() (Ready, error)
}

// IRQ is the transceiver interrupt line.
type IRQ interface {
	CheckInterrupt() bool
	ClearInterruptPendingBit()
}

// State is the state the transceiver is held in.
type State uint8

const (
	StateReady State = iota
	StateSending
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return "receiving"
	}
}

// Kind classifies a received ranging message.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPing
	KindRequest
	KindResponse
)

// Message is the outcome of handling one received frame. Valid is only
// meaningful for KindResponse and reports whether a distance was accepted.
type Message struct {
	Kind  Kind
	Valid bool
}

func (m Message) String() string {
	switch m.Kind {
	case KindPing:
		return "ping"
	case KindRequest:
		return "ranging_request"
	case KindResponse:
		if m.Valid {
			return "ranging_response(valid)"
		}
		return "ranging_response(invalid)"
	default:
		return "unknown"
	}
}
