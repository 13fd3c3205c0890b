// Package logx is a levelled, allocation-light logger for firmware builds.
// Records are "[tag] LEVEL message key=value ..." lines, written with the
// runtime println by default so MCU images do not pull in fmt. A Sink can
// redirect records elsewhere (a UART, zap on the host).
package logx

import (
	"sync"

	"uwbdistance-go/x/conv"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Sink receives every record at or above the configured level.
// kv holds alternating keys and values.
type Sink interface {
	Log(lvl Level, tag, msg string, kv []any)
}

var (
	mu    sync.RWMutex
	sink  Sink = consoleSink{}
	level      = LevelInfo
)

// SetSink replaces the global sink. A nil sink restores the console.
func SetSink(s Sink) {
	mu.Lock()
	if s == nil {
		s = consoleSink{}
	}
	sink = s
	mu.Unlock()
}

// SetLevel sets the minimum level that reaches the sink.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// Logger tags records with a component name.
type Logger struct{ tag string }

func New(tag string) Logger { return Logger{tag: tag} }

func (l Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }
func (l Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv) }
func (l Logger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv) }
func (l Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

func (l Logger) log(lvl Level, msg string, kv []any) {
	mu.RLock()
	s, min := sink, level
	mu.RUnlock()
	if lvl < min {
		return
	}
	s.Log(lvl, l.tag, msg, kv)
}

// Format renders a record as a single line without a trailing newline.
func Format(lvl Level, tag, msg string, kv []any) string {
	b := make([]byte, 0, 64)
	b = append(b, '[')
	b = append(b, tag...)
	b = append(b, "] "...)
	b = append(b, lvl.String()...)
	b = append(b, ' ')
	b = append(b, msg...)
	for i := 0; i < len(kv); i += 2 {
		b = append(b, ' ')
		k, _ := kv[i].(string)
		if k == "" {
			k = "?"
		}
		b = append(b, k...)
		b = append(b, '=')
		if i+1 < len(kv) {
			b = AppendValue(b, kv[i+1])
		}
	}
	return string(b)
}

// AppendValue appends a printable form of v without using fmt.
func AppendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(b, x...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return conv.AppendInt(b, int64(x))
	case int8:
		return conv.AppendInt(b, int64(x))
	case int16:
		return conv.AppendInt(b, int64(x))
	case int32:
		return conv.AppendInt(b, int64(x))
	case int64:
		return conv.AppendInt(b, x)
	case uint:
		return conv.AppendUint(b, uint64(x))
	case uint8:
		return conv.AppendUint(b, uint64(x))
	case uint16:
		return conv.AppendUint(b, uint64(x))
	case uint32:
		return conv.AppendUint(b, uint64(x))
	case uint64:
		return conv.AppendUint(b, x)
	case error:
		if x == nil {
			return append(b, "<nil>"...)
		}
		return append(b, x.Error()...)
	case interface{ String() string }:
		return append(b, x.String()...)
	case nil:
		return append(b, "<nil>"...)
	default:
		return append(b, '?')
	}
}

type consoleSink struct{}

func (consoleSink) Log(lvl Level, tag, msg string, kv []any) {
	println(Format(lvl, tag, msg, kv))
}
