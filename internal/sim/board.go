package sim

import (
	"image/color"
	"sync"
	"sync/atomic"
)

// Strip records the last colours written to it.
type Strip struct {
	mu     sync.Mutex
	pixels []color.RGBA
	writes int
}

func (s *Strip) WriteColors(buf []color.RGBA) error {
	s.mu.Lock()
	s.pixels = append(s.pixels[:0], buf...)
	s.writes++
	s.mu.Unlock()
	return nil
}

// Pixels returns a copy of the current strip contents.
func (s *Strip) Pixels() []color.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]color.RGBA(nil), s.pixels...)
}

func (s *Strip) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// ADC samples a battery through the board's 1:2 divider with a 3.3 V
// reference.
type ADC struct {
	mv atomic.Uint32
}

// NewADC returns an ADC measuring a battery at mv millivolts.
func NewADC(mv uint16) *ADC {
	a := &ADC{}
	a.SetBattery(mv)
	return a
}

func (a *ADC) SetBattery(mv uint16) { a.mv.Store(uint32(mv)) }

func (a *ADC) MaxSample() uint16 { return 0xFFFF }

func (a *ADC) Read() (uint16, error) {
	pin := a.mv.Load() / 2
	if pin > 3300 {
		pin = 3300
	}
	// Round up so the conversion back does not lose a millivolt.
	return uint16((pin*0xFFFF + 3299) / 3300), nil
}

// LED is a toggling status LED.
type LED struct{ on atomic.Bool }

func (l *LED) Toggle()  { l.on.Store(!l.on.Load()) }
func (l *LED) On() bool { return l.on.Load() }
