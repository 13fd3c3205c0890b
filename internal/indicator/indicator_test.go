package indicator

import (
	"errors"
	"image/color"
	"testing"
)

type fakeStrip struct {
	writes [][Pixels]color.RGBA
	err    error
}

func (s *fakeStrip) WriteColors(buf []color.RGBA) error {
	var px [Pixels]color.RGBA
	copy(px[:], buf)
	s.writes = append(s.writes, px)
	return s.err
}

func (s *fakeStrip) last() [Pixels]color.RGBA { return s.writes[len(s.writes)-1] }

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		current uint64
		want    Range
	}{
		{0, Short},
		{60, Short},
		{61, OkShort},
		{79, OkShort},
		{80, Ok},
		{100, Ok},
		{120, Ok},
		{121, OkLong},
		{139, OkLong},
		{140, Long},
		{141, Long},
	}
	for _, tt := range tests {
		if got := Classify(tt.current, 100, 20); got != tt.want {
			t.Errorf("Classify(%d, 100, 20) = %v, want %v", tt.current, got, tt.want)
		}
	}
}

func TestClassifySaturates(t *testing.T) {
	// target-2*tol would underflow; nothing is Short except 0.
	if got := Classify(0, 30, 20); got != Short {
		t.Fatalf("Classify(0) = %v", got)
	}
	if got := Classify(5, 30, 20); got != OkShort {
		t.Fatalf("Classify(5) = %v", got)
	}
	if got := Classify(^uint64(0), ^uint64(0)-1, 20); got != Long {
		t.Fatalf("Classify(max) = %v", got)
	}
}

func TestNewBlanksStrip(t *testing.T) {
	s := &fakeStrip{}
	l := New(s)
	if len(s.writes) != 1 || s.last() != ([Pixels]color.RGBA{}) {
		t.Fatalf("writes = %v", s.writes)
	}
	if l.Range() != OutOfRange {
		t.Fatalf("Range = %v", l.Range())
	}
}

func TestUpdateRangeRendersOnChangeOnly(t *testing.T) {
	s := &fakeStrip{}
	l := New(s)

	if r := l.UpdateRange(100, 100, 20); r != Ok {
		t.Fatalf("range = %v", r)
	}
	if len(s.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(s.writes))
	}
	l.UpdateRange(110, 100, 20)
	if len(s.writes) != 2 {
		t.Fatal("same bucket re-rendered")
	}
	l.UpdateRange(50, 100, 20)
	if len(s.writes) != 3 || s.last() != Pattern(Short) {
		t.Fatalf("short not rendered: %v", s.last())
	}
}

func TestSetOutOfRangeAlwaysRenders(t *testing.T) {
	s := &fakeStrip{}
	l := New(s)
	l.SetOutOfRange()
	l.SetOutOfRange()
	if len(s.writes) != 3 {
		t.Fatalf("writes = %d, want 3", len(s.writes))
	}
	l.UpdateRange(100, 100, 20)
	l.SetOutOfRange()
	if l.Range() != OutOfRange || s.last() != ([Pixels]color.RGBA{}) {
		t.Fatalf("range %v, pixels %v", l.Range(), s.last())
	}
}

func TestPatterns(t *testing.T) {
	lit := func(r Range) []int {
		var idx []int
		for i, c := range Pattern(r) {
			if c != (color.RGBA{}) {
				idx = append(idx, i)
			}
		}
		return idx
	}
	tests := []struct {
		r    Range
		want []int
	}{
		{OutOfRange, nil},
		{Long, []int{3, 4}},
		{OkLong, []int{2, 3}},
		{Ok, []int{2}},
		{OkShort, []int{1, 2}},
		{Short, []int{0, 1}},
	}
	for _, tt := range tests {
		got := lit(tt.r)
		if len(got) != len(tt.want) {
			t.Errorf("%v lit %v, want %v", tt.r, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%v lit %v, want %v", tt.r, got, tt.want)
			}
		}
	}
	if p := Pattern(OkLong); p[2] != green || p[3] != blue {
		t.Fatalf("ok_long colours = %v", p)
	}
}

func TestShutdownPattern(t *testing.T) {
	s := &fakeStrip{}
	l := New(s)
	l.UpdateRange(100, 100, 20)
	l.Shutdown()
	want := [Pixels]color.RGBA{{R: 10}, {}, {}, {}, {R: 10}}
	if s.last() != want {
		t.Fatalf("shutdown pixels = %v", s.last())
	}
}

func TestWriteErrorKeepsRange(t *testing.T) {
	s := &fakeStrip{err: errors.New("pio busy")}
	l := New(s)
	if r := l.UpdateRange(100, 100, 20); r != Ok || l.Range() != Ok {
		t.Fatalf("range = %v", l.Range())
	}
}
