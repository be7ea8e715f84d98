package brain

import "sort"

// CardStatus represents what the bot knows about a board position.
type CardStatus int

const (
	StatusUnknown CardStatus = iota // Never seen face-up
	StatusSeen                      // Seen face-up, pair key remembered
	StatusLocked                    // Part of a completed group
)

// GameMemory stores the bot's private view of the board.
type GameMemory struct {
	// RoundID identifies the round the memory belongs to.
	RoundID string
	status  map[int]CardStatus
	keys    map[int]int
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	m := &GameMemory{}
	m.Reset("")
	return m
}

// Reset clears the memory for a new round.
func (m *GameMemory) Reset(roundID string) {
	m.RoundID = roundID
	m.status = make(map[int]CardStatus)
	m.keys = make(map[int]int)
}

// MarkSeen records the pair key shown at position.
func (m *GameMemory) MarkSeen(position, pairKey int) {
	if m.status[position] == StatusLocked {
		return
	}
	m.status[position] = StatusSeen
	m.keys[position] = pairKey
}

// MarkLocked records positions that left play.
func (m *GameMemory) MarkLocked(positions []int) {
	for _, p := range positions {
		m.status[p] = StatusLocked
	}
}

// Status returns what is known about position.
func (m *GameMemory) Status(position int) CardStatus {
	return m.status[position]
}

// KnownPositions returns the seen, unlocked positions holding pairKey in
// ascending order.
func (m *GameMemory) KnownPositions(pairKey int) []int {
	var out []int
	for p, s := range m.status {
		if s == StatusSeen && m.keys[p] == pairKey {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// CompleteGroup returns the lowest pair key with at least size seen
// unlocked positions.
func (m *GameMemory) CompleteGroup(size int) (int, bool) {
	counts := make(map[int]int)
	for p, s := range m.status {
		if s == StatusSeen {
			counts[m.keys[p]]++
		}
	}
	best, found := 0, false
	for key, n := range counts {
		if n >= size && (!found || key < best) {
			best, found = key, true
		}
	}
	return best, found
}
