package battery

import (
	"errors"
	"testing"
)

type fakeADC struct {
	v   uint16
	max uint16
	err error
}

func (a *fakeADC) Read() (uint16, error) { return a.v, a.err }
func (a *fakeADC) MaxSample() uint16     { return a.max }

func TestToMilliVolts(t *testing.T) {
	tests := []struct {
		reading, max, want uint16
	}{
		{0, 4095, 0},
		{4095, 4095, 6600},
		{2048, 4096, 3300},
		{65535, 65535, 6600},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := ToMilliVolts(tt.reading, tt.max); got != tt.want {
			t.Errorf("ToMilliVolts(%d, %d) = %d, want %d", tt.reading, tt.max, got, tt.want)
		}
	}
}

func TestCheckBattery(t *testing.T) {
	// With MaxSample == SupplyMV one count is 2 mV at the battery.
	tests := []struct {
		name    string
		reading uint16
		want    State
	}{
		{"empty below threshold", 1500, State{Empty, 3000}},
		{"empty at threshold", 1725, State{Empty, 3450}},
		{"ok above threshold", 1726, State{Ok, 3452}},
		{"full", 2100, State{Ok, 4200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&fakeADC{v: tt.reading, max: SupplyMV})
			if got := m.CheckBattery(); got != tt.want {
				t.Fatalf("CheckBattery = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckBatteryReadError(t *testing.T) {
	m := New(&fakeADC{err: errors.New("adc busy"), max: 4095})
	if got := m.CheckBattery(); got.Status != Unknown || got.MilliVolts != 0 {
		t.Fatalf("CheckBattery = %+v", got)
	}
}
