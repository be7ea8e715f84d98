package bot

import (
	"concentration/internal/app"
	"concentration/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	// Idle is set when no click is possible right now.
	Idle     bool
	Position int
}

// Brain is the interface that all autoplay strategies must implement.
type Brain interface {
	CalculateMove(board domain.Board) (Move, error)
	OnEvent(event app.Event)
}
