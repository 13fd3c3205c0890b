// Package ring is a single-producer, single-consumer byte ring. The firmware
// uses it between the logger and the serial console so that logging never
// waits on the UART.
package ring

import (
	"context"
	"io"
	"sync/atomic"
)

// Ring holds up to Size() bytes. Write and Read may run on different
// goroutines; each side must have a single caller.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index, monotonic
	wr   atomic.Uint32 // producer index, monotonic

	dropped  atomic.Uint32
	readable chan struct{}
}

// New panics unless size is a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
	}
}

func (r *Ring) Size() int { return len(r.buf) }

// Available is the number of bytes waiting to be read.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// Dropped counts bytes Write could not store.
func (r *Ring) Dropped() uint32 { return r.dropped.Load() }

// Readable signals after writes. Signals coalesce.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Write stores as much of p as fits and drops the rest. It never blocks and
// never fails, so it can sit under a logger.
func (r *Ring) Write(p []byte) (int, error) {
	n := r.put(p)
	if n < len(p) {
		r.dropped.Add(uint32(len(p) - n))
	}
	return len(p), nil
}

func (r *Ring) put(src []byte) int {
	rd, wr := r.rd.Load(), r.wr.Load()
	n := len(r.buf) - int(wr-rd)
	if n > len(src) {
		n = len(src)
	}
	if n <= 0 {
		return 0
	}
	i := wr & r.mask
	first := copy(r.buf[i:], src[:n])
	copy(r.buf, src[first:n])
	r.wr.Store(wr + uint32(n))

	select {
	case r.readable <- struct{}{}:
	default:
	}
	return n
}

// Read copies up to len(p) bytes out. It returns 0, nil when empty.
func (r *Ring) Read(p []byte) (int, error) {
	rd, wr := r.rd.Load(), r.wr.Load()
	n := int(wr - rd)
	if n > len(p) {
		n = len(p)
	}
	if n <= 0 {
		return 0, nil
	}
	i := rd & r.mask
	first := copy(p[:n], r.buf[i:])
	copy(p[first:n], r.buf)
	r.rd.Store(rd + uint32(n))
	return n, nil
}

// Drain copies everything written to r into w until ctx is done. Write
// errors are dropped with the data; the console is best effort.
func (r *Ring) Drain(ctx context.Context, w io.Writer) {
	chunk := make([]byte, 64)
	for {
		for {
			n, _ := r.Read(chunk)
			if n == 0 {
				break
			}
			_, _ = w.Write(chunk[:n])
		}
		select {
		case <-ctx.Done():
			return
		case <-r.readable:
		}
	}
}
