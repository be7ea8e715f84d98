package app

import "concentration/internal/domain"

// EventKind identifies emitted round events for Nakama dispatch.
type EventKind string

const (
	EventRoundStarted   EventKind = "round_started"
	EventCardRevealed   EventKind = "card_revealed"
	EventCardConcealed  EventKind = "card_concealed"
	EventCardReplayed   EventKind = "card_replayed"
	EventGroupLocked    EventKind = "group_locked"
	EventWinStarted     EventKind = "win_started"
	EventRoundCompleted EventKind = "round_completed"
)

// Event is a round event in the order the round produced it.
type Event struct {
	Kind    EventKind
	Payload any
}

type RoundStartedPayload struct {
	RoundID    string
	Category   string
	GroupSize  int
	GroupCount int
	DeckSize   int
}

// CardPayload describes a single card transition. Content is the zero value
// for concealed cards.
type CardPayload struct {
	RoundID      string
	Position     int
	Content      domain.Content
	PairKey      int
	RevealClicks int
}

type GroupLockedPayload struct {
	RoundID   string
	PairKey   int
	Positions []int
}

type WinStartedPayload struct {
	RoundID string
}

type RoundCompletedPayload struct {
	Result domain.Result
}
