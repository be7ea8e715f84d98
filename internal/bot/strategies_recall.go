package bot

import (
	"math/rand"

	"concentration/internal/app"
	"concentration/internal/bot/brain"
	"concentration/internal/domain"
)

// RecallBot never forgets a revealed card. It completes a group as soon as
// every member has been seen and otherwise explores unseen positions.
type RecallBot struct {
	Memory *brain.GameMemory
	rng    *rand.Rand
}

// NewRecallBot returns a RecallBot with empty memory.
func NewRecallBot(rng *rand.Rand) *RecallBot {
	return &RecallBot{Memory: brain.NewMemory(), rng: rng}
}

func (b *RecallBot) CalculateMove(board domain.Board) (Move, error) {
	if board.RoundID != b.Memory.RoundID {
		b.Memory.Reset(board.RoundID)
	}
	// The board is authoritative for anything currently face-up.
	for _, c := range board.Cards {
		if c.Locked {
			b.Memory.MarkLocked([]int{c.Position})
		} else if c.Face == domain.FaceRevealed {
			b.Memory.MarkSeen(c.Position, c.PairKey)
		}
	}

	hidden := hiddenPositions(board)
	if len(board.Open) > 0 {
		key := board.Cards[board.Open[0]].PairKey
		for _, p := range b.Memory.KnownPositions(key) {
			if board.Selectable(p) {
				return Move{Position: p}, nil
			}
		}
		return pick(b.rng, b.unseen(hidden)), nil
	}

	if key, ok := b.Memory.CompleteGroup(board.GroupSize); ok {
		for _, p := range b.Memory.KnownPositions(key) {
			if board.Selectable(p) {
				return Move{Position: p}, nil
			}
		}
	}
	return pick(b.rng, b.unseen(hidden)), nil
}

// unseen narrows hidden to positions never seen, falling back to hidden.
func (b *RecallBot) unseen(hidden []int) []int {
	var out []int
	for _, p := range hidden {
		if b.Memory.Status(p) == brain.StatusUnknown {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return hidden
	}
	return out
}

func (b *RecallBot) OnEvent(event app.Event) {
	switch p := event.Payload.(type) {
	case app.RoundStartedPayload:
		b.Memory.Reset(p.RoundID)
	case app.CardPayload:
		if p.RoundID != b.Memory.RoundID {
			return
		}
		if event.Kind == app.EventCardRevealed || event.Kind == app.EventCardReplayed {
			b.Memory.MarkSeen(p.Position, p.PairKey)
		}
	case app.GroupLockedPayload:
		if p.RoundID == b.Memory.RoundID {
			b.Memory.MarkLocked(p.Positions)
		}
	}
}
