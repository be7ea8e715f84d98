package bot

import (
	"fmt"
	"math/rand"
)

// Level selects an autoplay strategy.
type Level string

const (
	// LevelForgetful clicks random hidden cards.
	LevelForgetful Level = "forgetful"
	// LevelRecall remembers every card it has seen.
	LevelRecall Level = "recall"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level Level, rng *rand.Rand) (Brain, error) {
	switch level {
	case LevelForgetful:
		return &ForgetfulBot{rng: rng}, nil
	case LevelRecall, "":
		return NewRecallBot(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
