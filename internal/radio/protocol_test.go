package radio

import (
	"testing"

	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/mac"
	"uwbdistance-go/drivers/dw1000/ranging"
	"uwbdistance-go/internal/distance"
)

type clock struct {
	now  dw1000.Instant
	antd dw1000.Duration
}

func (c *clock) SysTime() (dw1000.Instant, error)         { return c.now, nil }
func (c *clock) TxAntennaDelay() (dw1000.Duration, error) { return c.antd, nil }

var (
	anchor = mac.Short(PanID, AnchorAddress)
	tag    = mac.Short(PanID, TagAddress)
)

func frameFrom(src mac.Address, payload []byte, rx dw1000.Instant) dw1000.Message {
	return dw1000.Message{
		RxTime: rx,
		Frame: mac.Frame{
			Header:  mac.Header{FrameType: mac.FrameData, Src: src},
			Payload: append([]byte(nil), payload...),
		},
	}
}

// rangeOnce plays the anchor side of an exchange against the tag handle h,
// with the given time of flight, and returns what the tag made of the
// response.
func rangeOnce(t *testing.T, h *Handle, f *fakeRadio, tof dw1000.Duration) Message {
	t.Helper()
	a := &clock{now: f.now.Add(1_000_000), antd: 16300}

	ping, err := ranging.NewPing(a)
	if err != nil {
		t.Fatal(err)
	}
	pingRx := ping.Time.At.Add(a.antd + tof)
	f.now = pingRx.Add(dw1000.DurationFromNanos(100_000))

	if err := h.StartReceiving(); err != nil {
		t.Fatal(err)
	}
	f.queue(frameFrom(anchor, ping.Payload(), pingRx))
	m, err := h.ReceiveMessage()
	if err != nil || m.Kind != KindPing {
		t.Fatalf("ping: %v, %v", m, err)
	}
	if h.State() != StateSending {
		t.Fatalf("state after ping = %v", h.State())
	}
	sent := f.lastSent()
	if sent.dest != anchor {
		t.Fatalf("request sent to %+v", sent.dest)
	}
	reqTx := sent.at.At.Add(f.antd)
	reqRx := reqTx.Add(tof)
	req, ok, err := ranging.DecodeRequest(frameFrom(tag, sent.payload, reqRx))
	if !ok || err != nil {
		t.Fatalf("request decode: %v, %v", ok, err)
	}

	if err := h.FinishSending(); err != nil {
		t.Fatal(err)
	}
	if err := h.StartReceiving(); err != nil {
		t.Fatal(err)
	}

	a.now = reqRx.Add(dw1000.DurationFromNanos(100_000))
	resp, err := ranging.NewResponse(a, req)
	if err != nil {
		t.Fatal(err)
	}
	respRx := resp.Time.At.Add(a.antd + tof)
	f.queue(frameFrom(anchor, resp.Payload(), respRx))
	m, err = h.ReceiveMessage()
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	if h.State() != StateReady {
		t.Fatalf("state after response = %v", h.State())
	}
	return m
}

func TestRangingExchangeValid(t *testing.T) {
	h, f, _ := newTestHandle()
	// 214 units of flight is 1002 mm.
	m := rangeOnce(t, h, f, 214)
	if m.Kind != KindResponse || !m.Valid {
		t.Fatalf("message = %v", m)
	}
	if got, want := h.LastDistance(), distance.Correct(100); got != want {
		t.Fatalf("LastDistance = %d, want %d", got, want)
	}
	if got := h.AverageDistance(); got != distance.Correct(100)/distance.HistoryLen {
		t.Fatalf("AverageDistance = %d", got)
	}
}

func TestRangingExchangeTooFar(t *testing.T) {
	h, f, _ := newTestHandle()
	// 5337 units of flight is 24999 mm.
	m := rangeOnce(t, h, f, 5337)
	if m.Kind != KindResponse || m.Valid {
		t.Fatalf("message = %v", m)
	}
	if h.LastDistance() != 0 || h.AverageDistance() != 0 {
		t.Fatal("filter mutated by rejected response")
	}
}

func TestRequestIsAnswered(t *testing.T) {
	h, f, _ := newTestHandle()
	a := &clock{now: 100, antd: 16300}
	ping, _ := ranging.NewPing(a)
	req, err := ranging.NewRequest(&clock{now: 9_000_000, antd: 16300}, ranging.Ping{
		Source:     anchor,
		RxTime:     ping.Time.At.Add(300),
		PingTxTime: ping.Time.At.Add(a.antd),
	})
	if err != nil {
		t.Fatal(err)
	}

	_ = h.StartReceiving()
	f.queue(frameFrom(tag, req.Payload(), 20_000_000))
	m, err := h.ReceiveMessage()
	if err != nil || m.Kind != KindRequest {
		t.Fatalf("ReceiveMessage = %v, %v", m, err)
	}
	if h.State() != StateSending || f.lastSent().dest != tag {
		t.Fatalf("state %v, dest %+v", h.State(), f.lastSent().dest)
	}
	if _, ok, err := ranging.DecodeResponse(frameFrom(anchor, f.lastSent().payload, 0)); !ok || err != nil {
		t.Fatalf("reply is not a response: %v, %v", ok, err)
	}
}

func TestReplyFailureReturnsToReady(t *testing.T) {
	h, f, _ := newTestHandle()
	ping, _ := ranging.NewPing(&clock{})
	_ = h.StartReceiving()
	f.queue(frameFrom(anchor, ping.Payload(), 1))
	f.sendErr = dw1000.ErrMarshal
	if _, err := h.ReceiveMessage(); err == nil {
		t.Fatal("reply error swallowed")
	}
	if h.State() != StateReady {
		t.Fatalf("state = %v", h.State())
	}
}

func TestResponseFromForeignNodeIgnored(t *testing.T) {
	tests := []struct {
		name string
		src  mac.Address
	}{
		{"other pan", mac.Short(0x1111, AnchorAddress)},
		{"extended", mac.Extended(PanID, 0x0102030405060708)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f, _ := newTestHandle()
			resp, _ := ranging.NewResponse(&clock{}, ranging.Request{Source: tag})
			_ = h.StartReceiving()
			f.queue(frameFrom(tt.src, resp.Payload(), 1))
			m, err := h.ReceiveMessage()
			if err != nil || m.Kind != KindResponse || m.Valid {
				t.Fatalf("ReceiveMessage = %v, %v", m, err)
			}
			if h.LastDistance() != 0 {
				t.Fatal("foreign response pushed a sample")
			}
		})
	}
}

func TestUnknownMessage(t *testing.T) {
	h, f, _ := newTestHandle()
	_ = h.StartReceiving()
	f.queue(frameFrom(anchor, []byte("RANGING PONG"), 1))
	m, err := h.ReceiveMessage()
	if err != nil || m.Kind != KindUnknown || m.String() != "unknown" {
		t.Fatalf("ReceiveMessage = %v, %v", m, err)
	}
	if h.State() != StateReady || len(f.sent) != 0 {
		t.Fatalf("state %v, sent %d", h.State(), len(f.sent))
	}
}
