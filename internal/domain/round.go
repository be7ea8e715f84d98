package domain

import (
	"math/rand"
	"time"

	"concentration/internal/schedule"

	"github.com/google/uuid"
)

// Round is one play-through from shuffle to win. It is driven by Select and
// by timers on its scheduler, all from a single goroutine.
type Round struct {
	id     string
	config RoundConfig
	timing Timing

	deck []*Card
	open []*Card

	matched     int
	clicks      int
	inputLocked bool
	phase       Phase

	sched    schedule.Scheduler
	listener Listener
	pending  []schedule.Timer
}

// NewRound deals a fresh deck from entries. Configuration errors are returned
// before any state exists.
func NewRound(cfg RoundConfig, entries []ContentEntry, timing Timing, sched schedule.Scheduler, rng *rand.Rand, listener Listener) (*Round, error) {
	deck, err := BuildDeck(entries, cfg.GroupSize, cfg.GroupCount, rng)
	if err != nil {
		return nil, err
	}
	if listener == nil {
		listener = NopListener{}
	}
	return &Round{
		id:       uuid.NewString(),
		config:   cfg,
		timing:   timing,
		deck:     deck,
		phase:    PhaseActive,
		sched:    sched,
		listener: listener,
	}, nil
}

// ID returns the round's unique identifier.
func (r *Round) ID() string { return r.id }

func (r *Round) Config() RoundConfig { return r.config }

func (r *Round) Phase() Phase { return r.phase }

func (r *Round) DeckSize() int { return len(r.deck) }

func (r *Round) MatchedGroups() int { return r.matched }

func (r *Round) TotalClicks() int { return r.clicks }

// InputLocked reports whether a mismatch is waiting to be concealed.
func (r *Round) InputLocked() bool { return r.inputLocked }

// Complete reports whether every group has been matched.
func (r *Round) Complete() bool { return r.matched == r.config.GroupCount }

// Card returns the card at position, or nil when out of range.
func (r *Round) Card(position int) *Card {
	if position < 0 || position >= len(r.deck) {
		return nil
	}
	return r.deck[position]
}

// Cards returns the deck in board order. Callers must not mutate the cards.
func (r *Round) Cards() []*Card {
	return r.deck
}

// OpenPositions returns the board positions of the open selection.
func (r *Round) OpenPositions() []int {
	out := make([]int, len(r.open))
	for i, c := range r.open {
		out[i] = c.Position
	}
	return out
}

// Select reveals the card at position according to the reveal protocol.
// Invalid selections are ignored.
func (r *Round) Select(position int) {
	if r.phase != PhaseActive || r.inputLocked {
		return
	}
	card := r.Card(position)
	if card == nil || card.Locked {
		return
	}
	if r.isOpen(card) {
		if card.IsMedia() {
			r.listener.CardReplayed(card)
		}
		return
	}

	switch {
	case len(r.open) == 0:
		r.reveal(card)
		r.open = append(r.open, card)
	case len(r.open) < r.config.GroupSize:
		r.reveal(card)
		if card.PairKey == r.open[0].PairKey {
			r.open = append(r.open, card)
			if len(r.open) == r.config.GroupSize {
				r.lockOpen()
			}
		} else {
			r.scheduleConceal(card)
		}
	}

	if r.Complete() {
		r.startWin()
	}
}

// Close discards the round and cancels its pending timers.
func (r *Round) Close() {
	for _, t := range r.pending {
		t.Stop()
	}
	r.pending = nil
	if r.phase != PhaseComplete {
		r.phase = PhaseClosed
	}
}

func (r *Round) isOpen(card *Card) bool {
	for _, c := range r.open {
		if c == card {
			return true
		}
	}
	return false
}

func (r *Round) reveal(card *Card) {
	if card.Reveal() {
		r.clicks++
		r.listener.CardRevealed(card)
	}
}

func (r *Round) lockOpen() {
	group := r.open
	for _, c := range group {
		c.Lock()
	}
	r.matched++
	r.open = nil
	r.listener.GroupLocked(group)
}

func (r *Round) scheduleConceal(mismatch *Card) {
	r.inputLocked = true
	captured := append([]*Card{mismatch}, r.open...)
	r.after(r.timing.ConcealDelay(mismatch), func() {
		for _, c := range captured {
			if c.Conceal() {
				r.listener.CardConcealed(c)
			}
		}
		r.open = nil
		r.inputLocked = false
	})
}

func (r *Round) startWin() {
	r.phase = PhaseResolvingWin
	r.listener.WinStarted()
	r.after(r.timing.WinDelay, func() {
		r.phase = PhaseComplete
		r.listener.RoundCompleted(Result{
			RoundID:     r.id,
			DeckSize:    len(r.deck),
			TotalClicks: r.clicks,
			Efficiency:  Efficiency(len(r.deck), r.clicks),
		})
	})
}

// after schedules fn and keeps the handle so Close can cancel it.
func (r *Round) after(d time.Duration, fn func()) {
	var timer schedule.Timer
	timer = r.sched.AfterFunc(d, func() {
		r.forget(timer)
		if r.phase == PhaseClosed {
			return
		}
		fn()
	})
	r.pending = append(r.pending, timer)
}

func (r *Round) forget(t schedule.Timer) {
	for i, p := range r.pending {
		if p == t {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}
