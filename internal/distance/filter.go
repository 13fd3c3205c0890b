package distance

// HistoryLen is the number of samples averaged.
const HistoryLen = 10

// Filter keeps the most recent samples, newest first. Empty slots count as
// zero in the average, so it reads low until HistoryLen samples are in.
type Filter struct {
	h [HistoryLen]uint64
}

// Push inserts cm as the newest sample, evicting the oldest.
func (f *Filter) Push(cm uint64) {
	copy(f.h[1:], f.h[:HistoryLen-1])
	f.h[0] = cm
}

// Average is the integer mean over all slots.
func (f *Filter) Average() uint64 {
	var sum uint64
	for _, v := range f.h {
		sum += v
	}
	return sum / HistoryLen
}

// Latest is the most recent sample, or 0.
func (f *Filter) Latest() uint64 { return f.h[0] }

// Samples returns a copy of the history, newest first.
func (f *Filter) Samples() [HistoryLen]uint64 { return f.h }
