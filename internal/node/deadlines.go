package node

import (
	"container/heap"
	"time"
)

// task identifies a periodic job of the node loop.
type task uint8

const (
	taskControl task = iota
	taskBattery
	taskTelemetry
)

func (t task) String() string {
	switch t {
	case taskControl:
		return "control"
	case taskBattery:
		return "battery"
	default:
		return "telemetry"
	}
}

type deadline struct {
	task  task
	due   int64
	index int
}

type deadlineHeap []*deadline

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].due < h[j].due }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *deadlineHeap) Push(x any)        { d := x.(*deadline); d.index = len(*h); *h = append(*h, d) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	d.index = -1
	*h = old[:n-1]
	return d
}
func (h deadlineHeap) Top() *deadline {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// deadlines is a min-heap of task due times in Unix nanoseconds. It is owned
// by the node loop and not safe for concurrent use.
type deadlines struct {
	items map[task]*deadline
	h     deadlineHeap
}

func newDeadlines() *deadlines {
	return &deadlines{items: make(map[task]*deadline)}
}

// Upsert schedules t at due, replacing any earlier schedule.
func (d *deadlines) Upsert(t task, due int64) {
	if it := d.items[t]; it != nil {
		it.due = due
		heap.Fix(&d.h, it.index)
		return
	}
	it := &deadline{task: t, due: due, index: -1}
	d.items[t] = it
	heap.Push(&d.h, it)
}

func (d *deadlines) Stop(t task) {
	if it := d.items[t]; it != nil {
		heap.Remove(&d.h, it.index)
		delete(d.items, t)
	}
}

// NextWait returns how long until the earliest deadline: -1 when nothing is
// scheduled, 0 when one is due.
func (d *deadlines) NextWait(now int64) time.Duration {
	top := d.h.Top()
	if top == nil {
		return -1
	}
	if top.due <= now {
		return 0
	}
	return time.Duration(top.due - now)
}

// PopDue removes and returns the earliest task due at or before now.
func (d *deadlines) PopDue(now int64) (task, int64, bool) {
	top := d.h.Top()
	if top == nil || top.due > now {
		return 0, 0, false
	}
	heap.Pop(&d.h)
	delete(d.items, top.task)
	return top.task, top.due, true
}

// Len reports the number of scheduled tasks.
func (d *deadlines) Len() int { return len(d.h) }

// next returns the follow-up deadline for a task that was due at prev and
// runs every period. It keeps the schedule anchored to prev so periods do not
// drift, but never schedules into the past after an overrun.
func next(prev, now int64, period time.Duration) int64 {
	due := prev + int64(period)
	if due < now {
		return now
	}
	return due
}
