package brain

import (
	"reflect"
	"testing"
)

func TestGameMemory(t *testing.T) {
	m := NewMemory()

	if m.Status(3) != StatusUnknown {
		t.Errorf("position 3 should be Unknown, got %d", m.Status(3))
	}

	m.MarkSeen(3, 1)
	m.MarkSeen(0, 1)
	m.MarkSeen(5, 2)
	if m.Status(3) != StatusSeen {
		t.Errorf("position 3 should be Seen")
	}
	if got := m.KnownPositions(1); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("KnownPositions(1) = %v, want [0 3]", got)
	}

	key, ok := m.CompleteGroup(2)
	if !ok || key != 1 {
		t.Errorf("CompleteGroup(2) = %d, %t; want 1, true", key, ok)
	}
	if _, ok := m.CompleteGroup(3); ok {
		t.Errorf("CompleteGroup(3) found a group")
	}

	m.MarkLocked([]int{0, 3})
	m.MarkSeen(3, 1)
	if m.Status(3) != StatusLocked {
		t.Errorf("locked position 3 became %d", m.Status(3))
	}
	if got := m.KnownPositions(1); len(got) != 0 {
		t.Errorf("KnownPositions(1) after lock = %v", got)
	}

	m.Reset("r2")
	if m.Status(5) != StatusUnknown || m.RoundID != "r2" {
		t.Errorf("After reset, memory kept state")
	}
}
