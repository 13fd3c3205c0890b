package logx

import (
	"io"
	"sync"
)

// WriterSink writes formatted records to W, one per line ("\r\n"
// terminated for serial consoles).
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *WriterSink) Log(lvl Level, tag, msg string, kv []any) {
	line := Format(lvl, tag, msg, kv) + "\r\n"
	s.mu.Lock()
	_, _ = s.W.Write([]byte(line))
	s.mu.Unlock()
}
