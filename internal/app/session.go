package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"concentration/internal/domain"
	"concentration/internal/schedule"
)

// ContentSource supplies the entries a round is dealt from.
type ContentSource interface {
	Categories() []string
	Entries(category string) ([]domain.ContentEntry, error)
}

// ErrNoRound is returned by controls that need a started round.
var ErrNoRound = errors.New("no round started")

// Session owns the current round of one player and turns its callbacks into
// events. It is not safe for concurrent use; the match loop drives it.
type Session struct {
	source ContentSource
	sched  schedule.Scheduler
	rng    *rand.Rand
	timing domain.Timing

	round  *domain.Round
	config domain.RoundConfig
	outbox []Event
}

// NewSession constructs a Session with provided rng or a time-seeded default.
func NewSession(source ContentSource, sched schedule.Scheduler, rng *rand.Rand, timing domain.Timing) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{source: source, sched: sched, rng: rng, timing: timing}
}

// Start deals a new round. The previous round keeps running if cfg cannot be
// dealt; otherwise it is closed and its pending timers cancelled.
func (s *Session) Start(cfg domain.RoundConfig) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.source.Entries(cfg.Category)
	if err != nil {
		return nil, err
	}

	l := &roundListener{session: s}
	round, err := domain.NewRound(cfg, entries, s.timing, s.sched, s.rng, l)
	if err != nil {
		return nil, fmt.Errorf("start round: %w", err)
	}
	l.roundID = round.ID()

	if s.round != nil {
		s.round.Close()
	}
	s.round = round
	s.config = cfg
	s.emit(EventRoundStarted, RoundStartedPayload{
		RoundID:    round.ID(),
		Category:   cfg.Category,
		GroupSize:  cfg.GroupSize,
		GroupCount: cfg.GroupCount,
		DeckSize:   round.DeckSize(),
	})
	return s.Drain(), nil
}

// SetPairs restarts with n groups of the current size.
func (s *Session) SetPairs(n int) ([]Event, error) {
	if s.round == nil {
		return nil, ErrNoRound
	}
	cfg := s.config
	cfg.GroupCount = n
	return s.Start(cfg)
}

// SetGroupSize restarts with k cards per group and the current group count.
func (s *Session) SetGroupSize(k int) ([]Event, error) {
	if s.round == nil {
		return nil, ErrNoRound
	}
	cfg := s.config
	cfg.GroupSize = k
	return s.Start(cfg)
}

// SetCategory restarts dealing from another category.
func (s *Session) SetCategory(name string) ([]Event, error) {
	if s.round == nil {
		return nil, ErrNoRound
	}
	cfg := s.config
	cfg.Category = name
	return s.Start(cfg)
}

// Restart deals a new round with the current configuration.
func (s *Session) Restart() ([]Event, error) {
	if s.round == nil {
		return nil, ErrNoRound
	}
	return s.Start(s.config)
}

// Select forwards a click to the current round and returns what it caused.
func (s *Session) Select(position int) []Event {
	if s.round == nil {
		return nil
	}
	s.round.Select(position)
	return s.Drain()
}

// Drain returns and clears buffered events, including those emitted by
// timers since the last call.
func (s *Session) Drain() []Event {
	if len(s.outbox) == 0 {
		return nil
	}
	out := s.outbox
	s.outbox = nil
	return out
}

// Close discards the current round.
func (s *Session) Close() {
	if s.round != nil {
		s.round.Close()
	}
}

// SetSource swaps the content later rounds are dealt from. The current
// round keeps its cards.
func (s *Session) SetSource(source ContentSource) {
	s.source = source
}

// Categories lists the categories a round can be dealt from.
func (s *Session) Categories() []string {
	return s.source.Categories()
}

// Round returns the current round, or nil before Start.
func (s *Session) Round() *domain.Round { return s.round }

// Config returns the configuration of the current round.
func (s *Session) Config() domain.RoundConfig { return s.config }

// Board snapshots the current round.
func (s *Session) Board() (domain.Board, error) {
	if s.round == nil {
		return domain.Board{}, ErrNoRound
	}
	return s.round.Board(), nil
}

func (s *Session) emit(kind EventKind, payload any) {
	s.outbox = append(s.outbox, Event{Kind: kind, Payload: payload})
}

// roundListener tags callbacks with their round and drops those of rounds
// the session has moved past.
type roundListener struct {
	session *Session
	roundID string
}

func (l *roundListener) current() bool {
	r := l.session.round
	return r != nil && r.ID() == l.roundID
}

func (l *roundListener) card(kind EventKind, c *domain.Card, withContent bool) {
	if !l.current() {
		return
	}
	p := CardPayload{
		RoundID:      l.roundID,
		Position:     c.Position,
		PairKey:      -1,
		RevealClicks: c.RevealClicks,
	}
	if withContent {
		p.Content = c.Content
		p.PairKey = c.PairKey
	}
	l.session.emit(kind, p)
}

func (l *roundListener) CardRevealed(c *domain.Card)  { l.card(EventCardRevealed, c, true) }
func (l *roundListener) CardConcealed(c *domain.Card) { l.card(EventCardConcealed, c, false) }
func (l *roundListener) CardReplayed(c *domain.Card)  { l.card(EventCardReplayed, c, true) }

func (l *roundListener) GroupLocked(cards []*domain.Card) {
	if !l.current() || len(cards) == 0 {
		return
	}
	positions := make([]int, len(cards))
	for i, c := range cards {
		positions[i] = c.Position
	}
	l.session.emit(EventGroupLocked, GroupLockedPayload{
		RoundID:   l.roundID,
		PairKey:   cards[0].PairKey,
		Positions: positions,
	})
}

func (l *roundListener) WinStarted() {
	if !l.current() {
		return
	}
	l.session.emit(EventWinStarted, WinStartedPayload{RoundID: l.roundID})
}

func (l *roundListener) RoundCompleted(r domain.Result) {
	if !l.current() {
		return
	}
	l.session.emit(EventRoundCompleted, RoundCompletedPayload{Result: r})
}
