package ring

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

func TestOrderAcrossWrap(t *testing.T) {
	r := New(64)
	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	var got []byte
	buf := make([]byte, 5)
	p := src
	for len(got) < N {
		if len(p) > 0 {
			k := 7
			if k > len(p) {
				k = len(p)
			}
			if space := r.Size() - r.Available(); k > space {
				k = space
			}
			_, _ = r.Write(p[:k])
			p = p[k:]
		}
		n, _ := r.Read(buf)
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, src) {
		t.Fatal("bytes reordered or lost across wrap")
	}
	if r.Dropped() != 0 {
		t.Fatalf("dropped = %d", r.Dropped())
	}
}

func TestWriteDropsOverflow(t *testing.T) {
	r := New(8)
	n, err := r.Write([]byte("0123456789"))
	if n != 10 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if r.Available() != 8 || r.Dropped() != 2 {
		t.Fatalf("available %d, dropped %d", r.Available(), r.Dropped())
	}
	out := make([]byte, 16)
	n, _ = r.Read(out)
	if string(out[:n]) != "01234567" {
		t.Fatalf("read %q", out[:n])
	}
	if n, _ := r.Read(out); n != 0 {
		t.Fatalf("empty read = %d", n)
	}
}

func TestReadableCoalesces(t *testing.T) {
	r := New(16)
	_, _ = r.Write([]byte("a"))
	_, _ = r.Write([]byte("b"))
	select {
	case <-r.Readable():
	default:
		t.Fatal("no signal after write")
	}
	select {
	case <-r.Readable():
		t.Fatal("signals did not coalesce")
	default:
	}
}

func TestNewPanicsOnBadSize(t *testing.T) {
	for _, size := range []int{0, 1, 3, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%d) did not panic", size)
				}
			}()
			New(size)
		}()
	}
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestDrain(t *testing.T) {
	r := New(256)
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Drain(ctx, &out)
		close(done)
	}()

	_, _ = r.Write([]byte("hello "))
	_, _ = r.Write([]byte("console"))

	deadline := time.Now().Add(2 * time.Second)
	for out.String() != "hello console" {
		if time.Now().After(deadline) {
			t.Fatalf("drained %q", out.String())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain did not stop on cancel")
	}
}
