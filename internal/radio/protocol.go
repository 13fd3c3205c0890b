package radio

import (
	"uwbdistance-go/drivers/dw1000"
	"uwbdistance-go/drivers/dw1000/ranging"
	"uwbdistance-go/errcode"
	"uwbdistance-go/internal/distance"
	"uwbdistance-go/x/conv"
)

// handleMessage answers pings and requests and turns responses into distance
// samples. Decoding is tried as ping, then request, then response.
func (h *Handle) handleMessage(m dw1000.Message) (Message, error) {
	if h.State() != StateReady {
		return Message{}, errcode.Wrap(errcode.InvalidState, "handle_message", nil)
	}

	if p, ok, _ := ranging.DecodePing(m); ok {
		h.log.Debug("sending ranging request")
		out, err := ranging.NewRequest(h.ready, p)
		if err != nil {
			return Message{}, driverErr("send_request", err)
		}
		if err := h.send("send_request", &out); err != nil {
			return Message{}, err
		}
		return Message{Kind: KindPing}, nil
	}

	if r, ok, _ := ranging.DecodeRequest(m); ok {
		h.log.Debug("sending ranging response")
		out, err := ranging.NewResponse(h.ready, r)
		if err != nil {
			return Message{}, driverErr("send_response", err)
		}
		if err := h.send("send_response", &out); err != nil {
			return Message{}, err
		}
		return Message{Kind: KindRequest}, nil
	}

	if r, ok, _ := ranging.DecodeResponse(m); ok {
		return Message{Kind: KindResponse, Valid: h.handleResponse(r)}, nil
	}

	h.log.Warn("ignoring unknown message")
	return Message{Kind: KindUnknown}, nil
}

// handleResponse pushes the corrected distance into the filter and reports
// whether it was accepted. Responses from outside the network are ignored.
func (h *Handle) handleResponse(r ranging.Response) bool {
	if !r.Source.IsShort() || r.Source.Pan != PanID {
		h.log.Debug("response from foreign node ignored")
		return false
	}
	src := conv.AddrHex(uint16(r.Source.Pan), uint16(r.Source.Short))

	mm, err := ranging.ComputeDistanceMM(r)
	if err != nil {
		h.log.Warn("could not compute distance", "src", src, "err", err)
		return false
	}
	if mm >= MaxDistanceMM {
		h.log.Warn("computed distance too large", "src", src, "mm", mm)
		return false
	}
	cm := mm / 10
	corrected := distance.Correct(cm)
	h.filter.Push(corrected)
	h.log.Debug("distance", "src", src, "cm", corrected, "uncorrected_cm", cm)
	return true
}
