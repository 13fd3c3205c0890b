// Package ranging implements double-sided two-way ranging over the DW1000.
//
// One node broadcasts a Ping, a node that hears it replies with a Request,
// and the ping's sender answers with a Response. The node that receives the
// Response has all four intervals it needs to compute the time of flight.
//
// Wire format: an ASCII prefix naming the message, then the fields as 8-byte
// little-endian integers in declaration order.
package ranging

import (
	"bytes"
	"encoding/binary"
	"errors"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
)

// TxDelayNanos is how far in the future replies are scheduled. It must cover the
// SPI traffic between reading the system time and starting the delayed TX.
const TxDelayNanos = 10_000_000

var (
	pingPrefix     = []byte("RANGING PING")
	requestPrefix  = []byte("RANGING REQUEST")
	responsePrefix = []byte("RANGING RESPONSE")
)

var ErrPayload = errors.New("ranging: payload too short")

// Clock is the part of an idle radio needed to schedule a reply.
type Clock interface {
	SysTime() (dw1000.Instant, error)
	TxAntennaDelay() (dw1000.Duration, error)
}

// Ping is a received ping.
type Ping struct {
	Source mac.Address
	RxTime dw1000.Instant

	PingTxTime dw1000.Instant
}

// Request is a received ranging request.
type Request struct {
	Source mac.Address
	RxTime dw1000.Instant

	PingTxTime    dw1000.Instant
	PingReplyTime dw1000.Duration
	RequestTxTime dw1000.Instant
}

// Response is a received ranging response.
type Response struct {
	Source mac.Address
	RxTime dw1000.Instant

	PingReplyTime     dw1000.Duration
	PingRoundTripTime dw1000.Duration
	RequestTxTime     dw1000.Instant
	RequestReplyTime  dw1000.Duration
}

// Outgoing is an encoded message ready for Ready.Send.
type Outgoing struct {
	Dest mac.Address
	Time dw1000.SendTime

	buf [len("RANGING RESPONSE") + 4*8]byte
	n   int
}

// Payload returns the encoded message.
func (o *Outgoing) Payload() []byte { return o.buf[:o.n] }

func (o *Outgoing) put(prefix []byte, fields ...uint64) {
	o.n = copy(o.buf[:], prefix)
	for _, f := range fields {
		binary.LittleEndian.PutUint64(o.buf[o.n:], f)
		o.n += 8
	}
}

// schedule picks a delayed TX time and returns it together with the time the
// frame will actually leave the antenna.
func schedule(c Clock) (dw1000.SendTime, dw1000.Instant, error) {
	now, err := c.SysTime()
	if err != nil {
		return dw1000.SendTime{}, 0, err
	}
	antd, err := c.TxAntennaDelay()
	if err != nil {
		return dw1000.SendTime{}, 0, err
	}
	// The radio ignores the low 9 bits of the delayed TX time.
	tx := now.Add(dw1000.DurationFromNanos(TxDelayNanos)) &^ 0x1FF
	return dw1000.At(tx), tx.Add(antd), nil
}

// NewPing builds a broadcast ping.
func NewPing(c Clock) (Outgoing, error) {
	var o Outgoing
	t, txTime, err := schedule(c)
	if err != nil {
		return o, err
	}
	o.Dest, o.Time = mac.Broadcast(), t
	o.put(pingPrefix, uint64(txTime))
	return o, nil
}

// NewRequest builds the reply to ping.
func NewRequest(c Clock, ping Ping) (Outgoing, error) {
	var o Outgoing
	t, txTime, err := schedule(c)
	if err != nil {
		return o, err
	}
	o.Dest, o.Time = ping.Source, t
	o.put(requestPrefix,
		uint64(ping.PingTxTime),
		uint64(txTime.Sub(ping.RxTime)),
		uint64(txTime))
	return o, nil
}

// NewResponse builds the reply to req.
func NewResponse(c Clock, req Request) (Outgoing, error) {
	var o Outgoing
	t, txTime, err := schedule(c)
	if err != nil {
		return o, err
	}
	o.Dest, o.Time = req.Source, t
	o.put(responsePrefix,
		uint64(req.PingReplyTime),
		uint64(req.RxTime.Sub(req.PingTxTime)),
		uint64(req.RequestTxTime),
		uint64(txTime.Sub(req.RxTime)))
	return o, nil
}

// fields reads n little-endian fields after prefix. ok is false when the
// payload carries a different message.
func fields(payload, prefix []byte, out []uint64) (ok bool, err error) {
	if !bytes.HasPrefix(payload, prefix) {
		return false, nil
	}
	payload = payload[len(prefix):]
	if len(payload) < 8*len(out) {
		return true, ErrPayload
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(payload[8*i:])
	}
	return true, nil
}

// DecodePing returns the ping carried by m, if any.
func DecodePing(m dw1000.Message) (Ping, bool, error) {
	var f [1]uint64
	ok, err := fields(m.Frame.Payload, pingPrefix, f[:])
	if !ok || err != nil {
		return Ping{}, false, err
	}
	return Ping{
		Source:     m.Frame.Header.Src,
		RxTime:     m.RxTime,
		PingTxTime: dw1000.Instant(f[0]),
	}, true, nil
}

// DecodeRequest returns the request carried by m, if any.
func DecodeRequest(m dw1000.Message) (Request, bool, error) {
	var f [3]uint64
	ok, err := fields(m.Frame.Payload, requestPrefix, f[:])
	if !ok || err != nil {
		return Request{}, false, err
	}
	return Request{
		Source:        m.Frame.Header.Src,
		RxTime:        m.RxTime,
		PingTxTime:    dw1000.Instant(f[0]),
		PingReplyTime: dw1000.Duration(f[1]),
		RequestTxTime: dw1000.Instant(f[2]),
	}, true, nil
}

// DecodeResponse returns the response carried by m, if any.
func DecodeResponse(m dw1000.Message) (Response, bool, error) {
	var f [4]uint64
	ok, err := fields(m.Frame.Payload, responsePrefix, f[:])
	if !ok || err != nil {
		return Response{}, false, err
	}
	return Response{
		Source:            m.Frame.Header.Src,
		RxTime:            m.RxTime,
		PingReplyTime:     dw1000.Duration(f[0]),
		PingRoundTripTime: dw1000.Duration(f[1]),
		RequestTxTime:     dw1000.Instant(f[2]),
		RequestReplyTime:  dw1000.Duration(f[3]),
	}, true, nil
}
