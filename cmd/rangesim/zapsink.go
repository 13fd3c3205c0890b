package main

import (
	"go.uber.org/zap"

	"uwbdistance-go/x/logx"
)

// zapSink forwards logx records to zap, keeping the component tag as the
// logger name.
type zapSink struct{ l *zap.Logger }

func (s zapSink) Log(lvl logx.Level, tag, msg string, kv []any) {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		if k == "" {
			k = "?"
		}
		fields = append(fields, field(k, kv[i+1]))
	}
	l := s.l.Named(tag)
	switch lvl {
	case logx.LevelDebug:
		l.Debug(msg, fields...)
	case logx.LevelInfo:
		l.Info(msg, fields...)
	case logx.LevelWarn:
		l.Warn(msg, fields...)
	default:
		l.Error(msg, fields...)
	}
}

func field(k string, v any) zap.Field {
	switch x := v.(type) {
	case error:
		return zap.NamedError(k, x)
	case interface{ String() string }:
		return zap.Stringer(k, x)
	}
	return zap.Any(k, v)
}
