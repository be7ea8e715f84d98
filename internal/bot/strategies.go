package bot

import (
	"math/rand"

	"concentration/internal/app"
	"concentration/internal/domain"
)

// hiddenPositions lists positions a click would reveal.
func hiddenPositions(board domain.Board) []int {
	var out []int
	for _, c := range board.Cards {
		if !c.Locked && c.Face == domain.FaceHidden {
			out = append(out, c.Position)
		}
	}
	return out
}

func pick(rng *rand.Rand, positions []int) Move {
	if len(positions) == 0 {
		return Move{Idle: true}
	}
	return Move{Position: positions[rng.Intn(len(positions))]}
}

// ForgetfulBot clicks a random hidden card every turn.
type ForgetfulBot struct {
	rng *rand.Rand
}

func (b *ForgetfulBot) CalculateMove(board domain.Board) (Move, error) {
	return pick(b.rng, hiddenPositions(board)), nil
}

func (b *ForgetfulBot) OnEvent(app.Event) {}
