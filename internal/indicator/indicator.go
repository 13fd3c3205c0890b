// Package indicator renders how far the measured distance is from the target
// on a 5-pixel LED strip.
package indicator

import (
	"image/color"

	"uwbdistance-go/x/logx"
	"uwbdistance-go/x/mathx"
)

// Pixels is the strip length.
const Pixels = 5

// Range is the bucket the current distance falls in.
type Range uint8

const (
	OutOfRange Range = iota
	Long
	OkLong
	Ok
	OkShort
	Short
)

func (r Range) String() string {
	switch r {
	case Long:
		return "long"
	case OkLong:
		return "ok_long"
	case Ok:
		return "ok"
	case OkShort:
		return "ok_short"
	case Short:
		return "short"
	default:
		return "out_of_range"
	}
}

// Strip is an addressable LED strip. ws2812.Device satisfies it.
type Strip interface {
	WriteColors(buf []color.RGBA) error
}

var (
	red   = color.RGBA{R: 0xff}
	green = color.RGBA{G: 0xff}
	blue  = color.RGBA{B: 0xff}
	dim   = color.RGBA{R: 10}
)

// Classify buckets current against [target-tol, target+tol]. The extremes
// are inclusive: current == target-2*tol is Short.
func Classify(current, target, tol uint64) Range {
	switch {
	case current <= mathx.SatSub(target, 2*tol):
		return Short
	case current < mathx.SatSub(target, tol):
		return OkShort
	case current >= mathx.SatAdd(target, 2*tol):
		return Long
	case current > mathx.SatAdd(target, tol):
		return OkLong
	default:
		return Ok
	}
}

// Pattern returns the pixel colours for r.
func Pattern(r Range) [Pixels]color.RGBA {
	var px [Pixels]color.RGBA
	switch r {
	case Long:
		px[3], px[4] = blue, blue
	case OkLong:
		px[2], px[3] = green, blue
	case Ok:
		px[2] = green
	case OkShort:
		px[1], px[2] = red, green
	case Short:
		px[0], px[1] = red, red
	}
	return px
}

// LED drives a Strip and renders only on bucket changes.
type LED struct {
	strip Strip
	rng   Range
	buf   [Pixels]color.RGBA
	log   logx.Logger
}

// New blanks the strip and returns an indicator in OutOfRange.
func New(s Strip) *LED {
	l := &LED{strip: s, rng: OutOfRange, log: logx.New("indicator")}
	l.render()
	return l
}

// UpdateRange classifies current and re-renders if the bucket changed.
func (l *LED) UpdateRange(current, target, tol uint64) Range {
	r := Classify(current, target, tol)
	if r != l.rng {
		l.rng = r
		l.render()
	}
	return r
}

// SetOutOfRange forces OutOfRange and re-renders.
func (l *LED) SetOutOfRange() {
	l.rng = OutOfRange
	l.render()
}

// Range returns the current bucket.
func (l *LED) Range() Range { return l.rng }

// Shutdown shows the powered-down pattern.
func (l *LED) Shutdown() {
	l.buf = [Pixels]color.RGBA{}
	l.buf[0], l.buf[Pixels-1] = dim, dim
	l.write()
}

func (l *LED) render() {
	l.buf = Pattern(l.rng)
	l.write()
}

func (l *LED) write() {
	if err := l.strip.WriteColors(l.buf[:]); err != nil {
		l.log.Error("strip write failed", "err", err)
	}
}
