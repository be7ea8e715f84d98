package domain

// CardView is the public state of one board position. Content and PairKey
// are only set while the card is face-up.
type CardView struct {
	Position     int
	Face         Face
	Locked       bool
	RevealClicks int
	Content      *Content
	PairKey      int // -1 while hidden
}

// Board is a read-only snapshot of a round.
type Board struct {
	RoundID       string
	Phase         Phase
	GroupSize     int
	GroupCount    int
	MatchedGroups int
	TotalClicks   int
	InputLocked   bool
	Open          []int
	Cards         []CardView
}

// Board returns a snapshot that hides the content of face-down cards.
func (r *Round) Board() Board {
	views := make([]CardView, len(r.deck))
	for i, c := range r.deck {
		v := CardView{
			Position:     c.Position,
			Face:         c.Face,
			Locked:       c.Locked,
			RevealClicks: c.RevealClicks,
			PairKey:      -1,
		}
		if c.Face == FaceRevealed {
			content := c.Content
			v.Content = &content
			v.PairKey = c.PairKey
		}
		views[i] = v
	}
	return Board{
		RoundID:       r.id,
		Phase:         r.phase,
		GroupSize:     r.config.GroupSize,
		GroupCount:    r.config.GroupCount,
		MatchedGroups: r.matched,
		TotalClicks:   r.clicks,
		InputLocked:   r.inputLocked,
		Open:          r.OpenPositions(),
		Cards:         views,
	}
}

// Selectable reports whether a click on position could change the board.
func (b Board) Selectable(position int) bool {
	if b.Phase != PhaseActive || b.InputLocked {
		return false
	}
	if position < 0 || position >= len(b.Cards) {
		return false
	}
	v := b.Cards[position]
	return !v.Locked && v.Face == FaceHidden
}
