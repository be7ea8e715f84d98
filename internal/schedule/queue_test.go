package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestQueueRunsTasksInDueOrder(t *testing.T) {
	q := NewQueue()
	var got []string

	q.AfterFunc(3*time.Second, func() { got = append(got, "c") })
	q.AfterFunc(1*time.Second, func() { got = append(got, "a") })
	q.AfterFunc(2*time.Second, func() { got = append(got, "b") })

	if ran := q.Advance(1500 * time.Millisecond); ran != 1 {
		t.Fatalf("Advance(1.5s) ran %d tasks, want 1", ran)
	}
	if ran := q.Advance(10 * time.Second); ran != 2 {
		t.Fatalf("Advance(10s) ran %d tasks, want 2", ran)
	}

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if q.Now() != 11500*time.Millisecond {
		t.Fatalf("Now() = %v, want 11.5s", q.Now())
	}
}

func TestQueueSameDueTimeKeepsInsertionOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.AfterFunc(time.Second, func() { got = append(got, i) })
	}
	q.Advance(time.Second)

	want := []int{0, 1, 2, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestQueueNextReportsRemainingDelay(t *testing.T) {
	q := NewQueue()
	if _, ok := q.Next(); ok {
		t.Fatalf("Next() on empty queue should report nothing pending")
	}

	q.AfterFunc(4*time.Second, func() {})
	q.Advance(time.Second)

	next, ok := q.Next()
	if !ok {
		t.Fatalf("Next() reported nothing pending")
	}
	if next != 3*time.Second {
		t.Fatalf("Next() = %v, want 3s", next)
	}
}

func TestQueueStop(t *testing.T) {
	q := NewQueue()
	fired := false
	timer := q.AfterFunc(time.Second, func() { fired = true })
	other := q.AfterFunc(2*time.Second, func() {})

	if !timer.Stop() {
		t.Fatalf("Stop() on pending timer = false, want true")
	}
	if timer.Stop() {
		t.Fatalf("second Stop() = true, want false")
	}
	if q.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", q.Pending())
	}

	q.Advance(5 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
	if other.Stop() {
		t.Fatalf("Stop() after firing = true, want false")
	}
}

func TestQueueTaskScheduledDuringAdvance(t *testing.T) {
	q := NewQueue()
	var got []time.Duration

	q.AfterFunc(time.Second, func() {
		got = append(got, q.Now())
		q.AfterFunc(500*time.Millisecond, func() { got = append(got, q.Now()) })
	})

	q.Advance(2 * time.Second)

	want := []time.Duration{time.Second, 1500 * time.Millisecond}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fire times = %v, want %v", got, want)
	}
}

func TestQueueNegativeDelayFiresOnNextAdvance(t *testing.T) {
	q := NewQueue()
	fired := false
	q.AfterFunc(-time.Second, func() { fired = true })
	q.Advance(0)
	if !fired {
		t.Fatalf("task with negative delay did not fire on Advance(0)")
	}
}
