package mac

import (
	"bytes"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	h := Header{
		FrameType: FrameData,
		Seq:       7,
		Dest:      Broadcast(),
		Src:       Short(0x0d57, 0x1234),
	}
	var buf [32]byte
	n, err := Encode(buf[:], h, []byte{0xAA})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// fc = data(1) | dst short(2<<10) | src short(2<<14) = 0x8801
	want := []byte{0x01, 0x88, 7, 0xff, 0xff, 0xff, 0xff, 0x57, 0x0d, 0x34, 0x12, 0xAA}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("Encode = % x, want % x", buf[:n], want)
	}
}

func TestDecodeWithPanCompression(t *testing.T) {
	h := Header{
		FrameType:     FrameData,
		PanIDCompress: true,
		Seq:           200,
		Dest:          Short(0x0d57, 0x1235),
		Src:           Short(0x0d57, 0x1234),
	}
	var buf [32]byte
	n, err := Encode(buf[:], h, []byte("ping"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n != 3+4+2+4 {
		t.Fatalf("compressed length = %d", n)
	}
	// Append an FCS the radio would have added.
	raw := append(buf[:n:n], 0x12, 0x34)
	f, err := Decode(raw, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Header.Src != h.Src || f.Header.Dest != h.Dest || f.Header.Seq != 200 {
		t.Fatalf("decoded header %+v", f.Header)
	}
	if string(f.Payload) != "ping" {
		t.Fatalf("payload %q", f.Payload)
	}
}

func TestDecodeExtendedSource(t *testing.T) {
	h := Header{
		FrameType: FrameData,
		Dest:      Short(0x0d57, 0x1234),
		Src:       Extended(0x0d57, 0x0102030405060708),
	}
	var buf [32]byte
	n, _ := Encode(buf[:], h, nil)
	f, err := Decode(buf[:n], false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Header.Src.IsShort() || f.Header.Src.Extended != 0x0102030405060708 {
		t.Fatalf("src = %+v", f.Header.Src)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"empty", nil, ErrShort},
		{"security", []byte{0x09, 0x88, 0}, ErrSecurity},
		{"reserved mode", []byte{0x01, 0x04, 0}, ErrAddressMode},
		{"truncated dest", []byte{0x01, 0x08, 0, 0x57}, ErrShort},
	}
	for _, tt := range tests {
		if _, err := Decode(tt.raw, false); err != tt.want {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	h := Header{FrameType: FrameData, Dest: Broadcast(), Src: Short(1, 2)}
	if _, err := Encode(make([]byte, 4), h, nil); err != ErrBufferSize {
		t.Fatalf("err = %v", err)
	}
}
