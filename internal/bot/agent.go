package bot

import (
	"math/rand"
	"time"

	"concentration/internal/app"
	"concentration/internal/domain"
)

// Agent plays a round on the player's behalf.
type Agent struct {
	Level    Level
	Strategy Brain
}

// NewAgent builds an agent for level. A nil rng is replaced by a time-seeded one.
func NewAgent(level Level, rng *rand.Rand) (*Agent, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	if level == "" {
		level = LevelRecall
	}
	return &Agent{Level: level, Strategy: b}, nil
}

// Play asks the agent to pick its next click on board.
func (a *Agent) Play(board domain.Board) (Move, error) {
	if board.Phase != domain.PhaseActive || board.InputLocked {
		return Move{Idle: true}, nil
	}
	move, err := a.Strategy.CalculateMove(board)
	if err != nil {
		return Move{Idle: true}, err
	}
	return move, nil
}

// OnGameEvent notifies the agent of a round event.
func (a *Agent) OnGameEvent(event app.Event) {
	a.Strategy.OnEvent(event)
}
