package domain

import "time"

// Phase represents the lifecycle stage of a round.
type Phase string

const (
	// PhaseActive accepts card selections.
	PhaseActive Phase = "active"
	// PhaseResolvingWin is entered when the last group locks and lasts until
	// the win delay elapses.
	PhaseResolvingWin Phase = "resolving_win"
	// PhaseComplete is the terminal state after the completion callback ran.
	PhaseComplete Phase = "complete"
	// PhaseClosed marks a round discarded by its owner before completing.
	PhaseClosed Phase = "closed"
)

// Timing holds the round's deferred-transition delays.
type Timing struct {
	// MismatchDelay is how long mismatching cards stay face-up.
	MismatchDelay time.Duration
	// VideoMultiplier scales MismatchDelay when the mismatching card is a video.
	VideoMultiplier int
	// WinDelay separates the last match from the completion callback.
	WinDelay time.Duration
}

// DefaultTiming is the stock timing: 1s mismatch, 4x for video, 1.5s win.
var DefaultTiming = Timing{
	MismatchDelay:   1000 * time.Millisecond,
	VideoMultiplier: 4,
	WinDelay:        1500 * time.Millisecond,
}

// ConcealDelay returns the re-conceal delay after c caused a mismatch.
func (t Timing) ConcealDelay(c *Card) time.Duration {
	if c.IsVideo() && t.VideoMultiplier > 0 {
		return t.MismatchDelay * time.Duration(t.VideoMultiplier)
	}
	return t.MismatchDelay
}

// Result is reported once when a round completes.
type Result struct {
	RoundID     string
	DeckSize    int
	TotalClicks int
	Efficiency  int // percent, higher means fewer clicks per card
}

// Efficiency returns round(deckSize*100/clicks), or 0 before any click.
func Efficiency(deckSize, clicks int) int {
	if clicks <= 0 {
		return 0
	}
	// Half-up rounding of a non-negative quotient.
	return (deckSize*200 + clicks) / (2 * clicks)
}

// Listener receives the round's visual-intent notifications.
type Listener interface {
	CardRevealed(c *Card)
	CardConcealed(c *Card)
	// CardReplayed fires when an open media card is clicked again.
	CardReplayed(c *Card)
	// GroupLocked carries the cards of a completed group (the pulse intent).
	GroupLocked(cards []*Card)
	WinStarted()
	RoundCompleted(r Result)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) CardRevealed(*Card)    {}
func (NopListener) CardConcealed(*Card)   {}
func (NopListener) CardReplayed(*Card)    {}
func (NopListener) GroupLocked([]*Card)   {}
func (NopListener) WinStarted()           {}
func (NopListener) RoundCompleted(Result) {}
