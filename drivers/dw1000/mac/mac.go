// Package mac encodes and decodes the IEEE 802.15.4 MAC data frames carried by
// the DW1000. Only what the ranging exchange needs is supported: data frames
// without security, short/extended/absent addresses and PAN id compression.
package mac

import (
	"encoding/binary"
	"errors"
)

// PanID identifies a personal area network.
type PanID uint16

// ShortAddress is a 16-bit device address within a PAN.
type ShortAddress uint16

// ExtendedAddress is a 64-bit device address.
type ExtendedAddress uint64

const (
	BroadcastPan   PanID        = 0xffff
	BroadcastShort ShortAddress = 0xffff
)

// AddressMode is the 2-bit addressing mode field of the frame control.
type AddressMode uint8

const (
	AddrNone     AddressMode = 0
	AddrShort    AddressMode = 2
	AddrExtended AddressMode = 3
)

// Address is a tagged address: Mode selects which of Short/Extended applies.
type Address struct {
	Mode     AddressMode
	Pan      PanID
	Short    ShortAddress
	Extended ExtendedAddress
}

func Short(pan PanID, a ShortAddress) Address {
	return Address{Mode: AddrShort, Pan: pan, Short: a}
}

func Extended(pan PanID, a ExtendedAddress) Address {
	return Address{Mode: AddrExtended, Pan: pan, Extended: a}
}

// Broadcast is the short broadcast address on the broadcast PAN.
func Broadcast() Address { return Short(BroadcastPan, BroadcastShort) }

func (a Address) IsShort() bool { return a.Mode == AddrShort }

func (a Address) size() int {
	switch a.Mode {
	case AddrShort:
		return 2
	case AddrExtended:
		return 8
	default:
		return 0
	}
}

// FrameType values (only data frames are produced).
const (
	FrameBeacon  = 0
	FrameData    = 1
	FrameAck     = 2
	FrameCommand = 3
)

// FooterSize is the length of the FCS appended by the radio.
const FooterSize = 2

// Header is the MAC header.
type Header struct {
	FrameType     uint8
	FramePending  bool
	AckRequest    bool
	PanIDCompress bool
	Version       uint8
	Seq           uint8
	Dest          Address
	Src           Address
}

// Frame is a decoded MAC frame. Payload aliases the decode buffer.
type Frame struct {
	Header  Header
	Payload []byte
}

var (
	ErrShort       = errors.New("mac: frame too short")
	ErrSecurity    = errors.New("mac: security not supported")
	ErrAddressMode = errors.New("mac: invalid address mode")
	ErrBufferSize  = errors.New("mac: buffer too small")
)

const (
	fcType     = 0x0007
	fcSecurity = 1 << 3
	fcPending  = 1 << 4
	fcAckReq   = 1 << 5
	fcPanComp  = 1 << 6
	fcDstShift = 10
	fcVerShift = 12
	fcSrcShift = 14
)

// HeaderSize returns the encoded size of h.
func (h *Header) HeaderSize() int {
	n := 3
	if h.Dest.Mode != AddrNone {
		n += 2 + h.Dest.size()
	}
	if h.Src.Mode != AddrNone {
		if !h.PanIDCompress || h.Dest.Mode == AddrNone {
			n += 2
		}
		n += h.Src.size()
	}
	return n
}

// Encode writes the header followed by payload into buf, without the FCS.
// It returns the number of bytes written.
func Encode(buf []byte, h Header, payload []byte) (int, error) {
	hs := h.HeaderSize()
	if len(buf) < hs+len(payload) {
		return 0, ErrBufferSize
	}
	fc := uint16(h.FrameType) & fcType
	if h.FramePending {
		fc |= fcPending
	}
	if h.AckRequest {
		fc |= fcAckReq
	}
	if h.PanIDCompress {
		fc |= fcPanComp
	}
	fc |= uint16(h.Dest.Mode&3) << fcDstShift
	fc |= uint16(h.Version&3) << fcVerShift
	fc |= uint16(h.Src.Mode&3) << fcSrcShift

	binary.LittleEndian.PutUint16(buf[0:2], fc)
	buf[2] = h.Seq
	i := 3
	if h.Dest.Mode != AddrNone {
		binary.LittleEndian.PutUint16(buf[i:], uint16(h.Dest.Pan))
		i += 2
		i += putAddr(buf[i:], h.Dest)
	}
	if h.Src.Mode != AddrNone {
		if !h.PanIDCompress || h.Dest.Mode == AddrNone {
			binary.LittleEndian.PutUint16(buf[i:], uint16(h.Src.Pan))
			i += 2
		}
		i += putAddr(buf[i:], h.Src)
	}
	i += copy(buf[i:], payload)
	return i, nil
}

func putAddr(b []byte, a Address) int {
	switch a.Mode {
	case AddrShort:
		binary.LittleEndian.PutUint16(b, uint16(a.Short))
		return 2
	case AddrExtended:
		binary.LittleEndian.PutUint64(b, uint64(a.Extended))
		return 8
	}
	return 0
}

// Decode parses buf. When withFooter is set the trailing FCS is dropped
// (it has already been checked by the radio).
func Decode(buf []byte, withFooter bool) (Frame, error) {
	var f Frame
	if withFooter {
		if len(buf) < FooterSize {
			return f, ErrShort
		}
		buf = buf[:len(buf)-FooterSize]
	}
	if len(buf) < 3 {
		return f, ErrShort
	}
	fc := binary.LittleEndian.Uint16(buf[0:2])
	if fc&fcSecurity != 0 {
		return f, ErrSecurity
	}
	h := &f.Header
	h.FrameType = uint8(fc & fcType)
	h.FramePending = fc&fcPending != 0
	h.AckRequest = fc&fcAckReq != 0
	h.PanIDCompress = fc&fcPanComp != 0
	h.Version = uint8(fc>>fcVerShift) & 3
	h.Seq = buf[2]
	h.Dest.Mode = AddressMode(fc>>fcDstShift) & 3
	h.Src.Mode = AddressMode(fc>>fcSrcShift) & 3
	if h.Dest.Mode == 1 || h.Src.Mode == 1 {
		return f, ErrAddressMode
	}

	i := 3
	if h.Dest.Mode != AddrNone {
		if len(buf) < i+2+h.Dest.size() {
			return f, ErrShort
		}
		h.Dest.Pan = PanID(binary.LittleEndian.Uint16(buf[i:]))
		i += 2
		i += getAddr(buf[i:], &h.Dest)
	}
	if h.Src.Mode != AddrNone {
		if !h.PanIDCompress || h.Dest.Mode == AddrNone {
			if len(buf) < i+2 {
				return f, ErrShort
			}
			h.Src.Pan = PanID(binary.LittleEndian.Uint16(buf[i:]))
			i += 2
		} else {
			h.Src.Pan = h.Dest.Pan
		}
		if len(buf) < i+h.Src.size() {
			return f, ErrShort
		}
		i += getAddr(buf[i:], &h.Src)
	}
	f.Payload = buf[i:]
	return f, nil
}

func getAddr(b []byte, a *Address) int {
	switch a.Mode {
	case AddrShort:
		a.Short = ShortAddress(binary.LittleEndian.Uint16(b))
		return 2
	case AddrExtended:
		a.Extended = ExtendedAddress(binary.LittleEndian.Uint64(b))
		return 8
	}
	return 0
}
