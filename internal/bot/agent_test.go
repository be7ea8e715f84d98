package bot

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"concentration/internal/app"
	"concentration/internal/domain"
	"concentration/internal/schedule"
)

type wordSource []domain.ContentEntry

func (w wordSource) Categories() []string { return []string{"words"} }

func (w wordSource) Entries(string) ([]domain.ContentEntry, error) { return w, nil }

func newWords(n int) wordSource {
	out := make(wordSource, n)
	for i := range out {
		out[i] = domain.ContentEntry{Text: fmt.Sprintf("w%d", i)}
	}
	return out
}

// playOut drives a session with agent until the round completes.
func playOut(t *testing.T, agent *Agent, cfg domain.RoundConfig, maxSteps int) domain.Result {
	t.Helper()
	q := schedule.NewQueue()
	s := app.NewSession(newWords(cfg.GroupCount), q, rand.New(rand.NewSource(3)), domain.DefaultTiming)

	var result *domain.Result
	feed := func(evs []app.Event) {
		for _, ev := range evs {
			agent.OnGameEvent(ev)
			if p, ok := ev.Payload.(app.RoundCompletedPayload); ok {
				r := p.Result
				result = &r
			}
		}
	}

	evs, err := s.Start(cfg)
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	feed(evs)

	for step := 0; step < maxSteps && result == nil; step++ {
		board, err := s.Board()
		if err != nil {
			t.Fatalf("Board error: %v", err)
		}
		move, err := agent.Play(board)
		if err != nil {
			t.Fatalf("Play error: %v", err)
		}
		if move.Idle {
			q.Advance(time.Second)
			feed(s.Drain())
			continue
		}
		if !board.Selectable(move.Position) {
			t.Fatalf("agent chose unselectable position %d", move.Position)
		}
		feed(s.Select(move.Position))
	}
	if result == nil {
		t.Fatalf("round did not complete within %d steps", maxSteps)
	}
	return *result
}

func TestRecallBotCompletesRound(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.RoundConfig
	}{
		{name: "pairs", cfg: domain.RoundConfig{GroupSize: 2, GroupCount: 6, Category: "words"}},
		{name: "triples", cfg: domain.RoundConfig{GroupSize: 3, GroupCount: 4, Category: "words"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, err := NewAgent(LevelRecall, rand.New(rand.NewSource(11)))
			if err != nil {
				t.Fatalf("NewAgent error: %v", err)
			}
			res := playOut(t, agent, tt.cfg, 500)
			// Every card is revealed once to learn it and at most once more to match it.
			if res.TotalClicks > 2*res.DeckSize {
				t.Fatalf("TotalClicks = %d, want <= %d", res.TotalClicks, 2*res.DeckSize)
			}
		})
	}
}

func TestForgetfulBotCompletesRound(t *testing.T) {
	agent, err := NewAgent(LevelForgetful, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}
	res := playOut(t, agent, domain.RoundConfig{GroupSize: 2, GroupCount: 3, Category: "words"}, 5000)
	if res.DeckSize != 6 || res.TotalClicks < 6 {
		t.Fatalf("result = %+v", res)
	}
}

func TestAgentIdlesWhileLocked(t *testing.T) {
	agent, err := NewAgent(LevelRecall, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewAgent error: %v", err)
	}
	for _, board := range []domain.Board{
		{Phase: domain.PhaseActive, InputLocked: true},
		{Phase: domain.PhaseResolvingWin},
		{Phase: domain.PhaseComplete},
	} {
		move, err := agent.Play(board)
		if err != nil || !move.Idle {
			t.Fatalf("Play(%+v) = %+v, %v; want idle", board, move, err)
		}
	}
}

func TestNewBrainUnknownLevel(t *testing.T) {
	if _, err := NewBrain("godlike", rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("NewBrain accepted unknown level")
	}
	agent, err := NewAgent("", nil)
	if err != nil || agent.Level != LevelRecall {
		t.Fatalf("NewAgent(\"\") = %+v, %v; want recall", agent, err)
	}
}
