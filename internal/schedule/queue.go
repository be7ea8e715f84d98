// Package schedule provides deferred callbacks that run on the caller's
// goroutine. Time is virtual: nothing fires until the owner advances the
// queue, which keeps timer-driven state machines testable without sleeping.
package schedule

import (
	"container/heap"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already ran or was already stopped.
	Stop() bool
}

// Scheduler defers callbacks by a duration.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Queue is a single-threaded Scheduler driven by Advance.
// It is not safe for concurrent use.
type Queue struct {
	now   time.Duration
	seq   uint64
	tasks taskHeap
}

// NewQueue returns an empty queue at virtual time zero.
func NewQueue() *Queue {
	return &Queue{}
}

// AfterFunc schedules fn to run once the queue has advanced by d.
// Negative delays are treated as zero.
func (q *Queue) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &task{
		queue: q,
		due:   q.now + d,
		seq:   q.seq,
		fn:    fn,
		index: -1,
	}
	heap.Push(&q.tasks, t)
	return t
}

// Advance moves virtual time forward by d and runs every task that becomes
// due, in due-time order. Tasks with the same due time run in the order they
// were scheduled. Tasks scheduled by a running task fire in the same call if
// they fall due within the window. It returns the number of tasks run.
func (q *Queue) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := q.now + d
	ran := 0
	for len(q.tasks) > 0 && q.tasks[0].due <= target {
		t := heap.Pop(&q.tasks).(*task)
		q.now = t.due
		t.done = true
		t.fn()
		ran++
	}
	q.now = target
	return ran
}

// Now returns the virtual time elapsed since the queue was created.
func (q *Queue) Now() time.Duration {
	return q.now
}

// Next returns the time remaining until the earliest pending task, and
// false if nothing is pending.
func (q *Queue) Next() (time.Duration, bool) {
	if len(q.tasks) == 0 {
		return 0, false
	}
	return q.tasks[0].due - q.now, true
}

// Pending returns the number of scheduled tasks that have not run.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

type task struct {
	queue *Queue
	due   time.Duration
	seq   uint64
	fn    func()
	index int
	done  bool
}

func (t *task) Stop() bool {
	if t.done || t.index < 0 {
		return false
	}
	heap.Remove(&t.queue.tasks, t.index)
	t.done = true
	return true
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
