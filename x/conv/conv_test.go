package conv

import (
	"math"
	"testing"
)

func TestAppendInt(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-1207, "-1207"},
		{math.MaxInt64, "9223372036854775807"},
		{math.MinInt64, "-9223372036854775808"},
	}
	for _, tt := range tests {
		if got := string(AppendInt(nil, tt.n)); got != tt.want {
			t.Errorf("AppendInt(%d) = %q", tt.n, got)
		}
	}
}

func TestAppendUint(t *testing.T) {
	if got := string(AppendUint([]byte("mv="), 3450)); got != "mv=3450" {
		t.Fatalf("AppendUint = %q", got)
	}
	if got := string(AppendUint(nil, math.MaxUint64)); got != "18446744073709551615" {
		t.Fatalf("AppendUint max = %q", got)
	}
}

func TestHex(t *testing.T) {
	if got := string(AppendHex16(nil, 0x0d57)); got != "0d57" {
		t.Fatalf("AppendHex16 = %q", got)
	}
	if got := string(AppendHex16(nil, 0x1)); got != "0001" {
		t.Fatalf("AppendHex16 pad = %q", got)
	}
	if got := AddrHex(0x0d57, 0x1234); got != "0d57:1234" {
		t.Fatalf("AddrHex = %q", got)
	}
}
