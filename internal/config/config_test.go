package config

import (
	"errors"
	"testing"
	"time"

	"uwbdistance-go/bus"
	"uwbdistance-go/x/logx"
)

func withLookup(t *testing.T, f func(string) ([]byte, bool)) {
	t.Helper()
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = f
	t.Cleanup(func() { EmbeddedConfigLookup = old })
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
	p := Default().Periods()
	if p.Anchor != 100*time.Millisecond || p.TagFast != 55*time.Millisecond || p.TagSlow != 500*time.Millisecond {
		t.Fatalf("periods = %+v", p)
	}
	if d := Default().BatteryEvery(); d != 10*time.Second {
		t.Fatalf("battery period = %v", d)
	}
}

func TestEmbeddedConfigsAreValid(t *testing.T) {
	for name := range embeddedConfigs {
		if _, err := Load(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	withLookup(t, func(device string) ([]byte, bool) {
		if device != "bench" {
			return nil, false
		}
		return []byte(`{"target_cm": 300, "log_level": "debug"}`), true
	})

	c, err := Load("bench")
	if err != nil {
		t.Fatal(err)
	}
	if c.TargetCm != 300 || c.ToleranceCm != 20 || c.LogLevel != "debug" || c.Device != "bench" {
		t.Fatalf("config = %+v", c)
	}

	c, err = Load("missing")
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("err = %v", err)
	}
	if c.TargetCm != Default().TargetCm || c.Device != "missing" {
		t.Fatalf("fallback = %+v", c)
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"tolerance too wide", `{"target_cm": 30, "tolerance_cm": 20}`, ErrTolerance},
		{"zero tolerance", `{"tolerance_cm": 0}`, ErrTolerance},
		{"zero period", `{"tag_fast_period_cycles": 0}`, ErrPeriod},
		{"zero antenna delay", `{"tx_antenna_delay": 0}`, ErrAntennaDly},
		{"level", `{"log_level": "trace"}`, ErrLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLookup(t, func(string) ([]byte, bool) { return []byte(tt.doc), true })
			if _, err := Load("x"); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	withLookup(t, func(string) ([]byte, bool) { return []byte(`{"target_cm": "far"}`), true })
	if _, err := Load("x"); err == nil {
		t.Fatal("malformed document accepted")
	}
}

func TestParseLevel(t *testing.T) {
	if l, ok := ParseLevel("warn"); !ok || l != logx.LevelWarn {
		t.Fatalf("warn = %v, %v", l, ok)
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatal("unknown level accepted")
	}
}

func TestPublishRetained(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	Default().Publish(conn)

	sub := conn.Subscribe(bus.T(configPrefix, "+"))
	select {
	case m := <-sub.Channel():
		c, ok := m.Payload.(Config)
		if !ok || m.Topic[1] != "default" || c.TargetCm != Default().TargetCm {
			t.Fatalf("message = %+v", m)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no retained config")
	}
}
