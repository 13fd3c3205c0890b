package ranging

import (
	"errors"
	"testing"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
)

type fakeClock struct {
	now  dw1000.Instant
	antd dw1000.Duration
	err  error
}

func (c *fakeClock) SysTime() (dw1000.Instant, error)         { return c.now, c.err }
func (c *fakeClock) TxAntennaDelay() (dw1000.Duration, error) { return c.antd, nil }

var (
	anchorAddr = mac.Short(0x0d57, 0x1234)
	tagAddr    = mac.Short(0x0d57, 0x1235)
)

func deliver(o *Outgoing, from mac.Address, rx dw1000.Instant) dw1000.Message {
	return dw1000.Message{
		RxTime: rx,
		Frame: mac.Frame{
			Header:  mac.Header{FrameType: mac.FrameData, Src: from, Dest: o.Dest},
			Payload: o.Payload(),
		},
	}
}

// txInstant recovers the antenna TX time a constructor embedded.
func txInstant(o *Outgoing, antd dw1000.Duration) dw1000.Instant {
	return o.Time.At.Add(antd)
}

func TestScheduleMasksLowBits(t *testing.T) {
	c := &fakeClock{now: 0x12345, antd: 16300}
	o, err := NewPing(c)
	if err != nil {
		t.Fatal(err)
	}
	if !o.Time.Delayed {
		t.Fatal("ping not delayed")
	}
	want := (dw1000.Instant(0x12345) + dw1000.Instant(64*TxDelayNanos)) &^ 0x1FF
	if o.Time.At != want {
		t.Fatalf("tx time = %#x, want %#x", o.Time.At, want)
	}
	if o.Dest != mac.Broadcast() {
		t.Fatalf("ping dest = %+v", o.Dest)
	}
	p, ok, err := DecodePing(deliver(&o, anchorAddr, 0))
	if !ok || err != nil {
		t.Fatalf("DecodePing = %v, %v", ok, err)
	}
	if p.PingTxTime != want+16300 {
		t.Fatalf("payload tx time = %#x, want tx + antenna delay", p.PingTxTime)
	}
}

func TestScheduleClockError(t *testing.T) {
	boom := errors.New("spi")
	if _, err := NewPing(&fakeClock{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

// exchange runs a full ping/request/response with time of flight tof between
// two nodes whose clocks differ by offset.
func exchange(t *testing.T, tof dw1000.Duration, offset dw1000.Duration) Response {
	t.Helper()
	anchor := &fakeClock{now: 1_000_000, antd: 16300}
	tag := &fakeClock{antd: 16300}

	ping, err := NewPing(anchor)
	if err != nil {
		t.Fatal(err)
	}
	pingTx := txInstant(&ping, anchor.antd)
	pingRx := pingTx.Add(offset + tof)

	p, ok, err := DecodePing(deliver(&ping, anchorAddr, pingRx))
	if !ok || err != nil {
		t.Fatalf("DecodePing = %v, %v", ok, err)
	}
	tag.now = pingRx.Add(dw1000.DurationFromNanos(150_000))
	req, err := NewRequest(tag, p)
	if err != nil {
		t.Fatal(err)
	}
	if req.Dest != anchorAddr {
		t.Fatalf("request dest = %+v", req.Dest)
	}
	reqTx := txInstant(&req, tag.antd)
	reqRx := reqTx.Add(tof).Add(dw1000.Duration(dw1000.TimeMask + 1 - uint64(offset)))

	r, ok, err := DecodeRequest(deliver(&req, tagAddr, reqRx))
	if !ok || err != nil {
		t.Fatalf("DecodeRequest = %v, %v", ok, err)
	}
	if r.PingTxTime != pingTx {
		t.Fatalf("request ping tx = %#x, want %#x", r.PingTxTime, pingTx)
	}
	anchor.now = reqRx.Add(dw1000.DurationFromNanos(200_000))
	resp, err := NewResponse(anchor, r)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Dest != tagAddr {
		t.Fatalf("response dest = %+v", resp.Dest)
	}
	respRx := txInstant(&resp, anchor.antd).Add(offset + tof)

	out, ok, err := DecodeResponse(deliver(&resp, anchorAddr, respRx))
	if !ok || err != nil {
		t.Fatalf("DecodeResponse = %v, %v", ok, err)
	}
	return out
}

func TestExchangeRecoversTimeOfFlight(t *testing.T) {
	for _, offset := range []dw1000.Duration{0, 123_456_789, dw1000.TimeMask - 5000} {
		r := exchange(t, 214, offset)
		tof, err := TimeOfFlight(r)
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if tof != 214 {
			t.Fatalf("offset %d: tof = %d, want 214", offset, tof)
		}
		mm, err := ComputeDistanceMM(r)
		if err != nil || mm != 1002 {
			t.Fatalf("offset %d: mm = %d, %v; want 1002", offset, mm, err)
		}
	}
}

func TestComputeDistanceFarAway(t *testing.T) {
	r := exchange(t, 6000, 0)
	mm, err := ComputeDistanceMM(r)
	if err != nil {
		t.Fatal(err)
	}
	if mm < 20_000 {
		t.Fatalf("mm = %d, want beyond 20 m", mm)
	}
}

func TestTimeOfFlightErrors(t *testing.T) {
	tests := []struct {
		name string
		r    Response
		want error
	}{
		{"zero", Response{}, ErrZeroSum},
		{"reply exceeds round trip", Response{PingReplyTime: 100, RequestReplyTime: 100, PingRoundTripTime: 10, RxTime: 10}, ErrReplyExceedsRoundTrip},
		{"round trips overflow", Response{PingRoundTripTime: 1 << 40, RxTime: dw1000.TimeMask}, ErrRoundTripTimesTooLarge},
		{"replies overflow", Response{PingRoundTripTime: 1, RxTime: 1, PingReplyTime: 1 << 40, RequestReplyTime: 1 << 40}, ErrReplyTimesTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TimeOfFlight(tt.r); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeRejectsOtherMessages(t *testing.T) {
	ping, _ := NewPing(&fakeClock{})
	m := deliver(&ping, anchorAddr, 0)
	if _, ok, err := DecodeRequest(m); ok || err != nil {
		t.Fatalf("ping decoded as request: %v, %v", ok, err)
	}
	if _, ok, err := DecodeResponse(m); ok || err != nil {
		t.Fatalf("ping decoded as response: %v, %v", ok, err)
	}

	m.Frame.Payload = []byte("hello")
	if _, ok, err := DecodePing(m); ok || err != nil {
		t.Fatalf("foreign payload decoded: %v, %v", ok, err)
	}

	m.Frame.Payload = []byte("RANGING RESPONSE\x01\x02")
	if _, _, err := DecodeResponse(m); !errors.Is(err, ErrPayload) {
		t.Fatalf("truncated response err = %v", err)
	}
}
