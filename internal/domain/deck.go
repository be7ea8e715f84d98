package domain

import (
	"fmt"
	"math/rand"
)

// MinGroupSize is the smallest number of cards that can form a match.
const MinGroupSize = 2

// ContentEntry describes one catalog item. Image and Video are optional.
type ContentEntry struct {
	Text  string
	Image string
	Video string
}

// RoundConfig selects the shape and content of a round.
type RoundConfig struct {
	GroupSize  int
	GroupCount int
	Category   string
}

// DeckSize returns the number of cards the configuration deals.
func (c RoundConfig) DeckSize() int {
	return c.GroupSize * c.GroupCount
}

// Validate checks that the configuration can form a deck.
func (c RoundConfig) Validate() error {
	if c.GroupSize < MinGroupSize {
		return fmt.Errorf("%w: group size %d is below %d", ErrInvalidConfiguration, c.GroupSize, MinGroupSize)
	}
	if c.GroupCount < 1 {
		return fmt.Errorf("%w: group count %d must be positive", ErrInvalidConfiguration, c.GroupCount)
	}
	if c.DeckSize()%c.GroupSize != 0 {
		return fmt.Errorf("%w: the number of cards %d cannot contain only matches of %d cards", ErrInvalidConfiguration, c.DeckSize(), c.GroupSize)
	}
	return nil
}

// ConfigFromDeckSize derives a configuration from a board size in cards.
func ConfigFromDeckSize(deckSize, groupSize int, category string) (RoundConfig, error) {
	if groupSize < MinGroupSize {
		return RoundConfig{}, fmt.Errorf("%w: group size %d is below %d", ErrInvalidConfiguration, groupSize, MinGroupSize)
	}
	if deckSize <= 0 || deckSize%groupSize != 0 {
		return RoundConfig{}, fmt.Errorf("%w: the number of cards %d cannot contain only matches of %d cards", ErrInvalidConfiguration, deckSize, groupSize)
	}
	return RoundConfig{GroupSize: groupSize, GroupCount: deckSize / groupSize, Category: category}, nil
}

// BuildDeck deals groupSize cards for each of groupCount randomly chosen
// entries and returns them shuffled. Within a group, an entry's image and
// video each back one card; every remaining card shows the entry text.
// The entries slice is not modified.
func BuildDeck(entries []ContentEntry, groupSize, groupCount int, rng *rand.Rand) ([]*Card, error) {
	cfg := RoundConfig{GroupSize: groupSize, GroupCount: groupCount}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(entries) < groupCount {
		return nil, fmt.Errorf("%w: need %d entries, have %d", ErrInsufficientContent, groupCount, len(entries))
	}

	pool := append([]ContentEntry(nil), entries...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	deck := make([]*Card, 0, cfg.DeckSize())
	for pair := 0; pair < groupCount; pair++ {
		for _, content := range groupContents(pool[pair], groupSize) {
			deck = append(deck, &Card{Content: content, PairKey: pair})
		}
	}

	ShuffleDeck(rng, deck)
	return deck, nil
}

// ShuffleDeck applies a Fisher-Yates shuffle in place and renumbers positions.
func ShuffleDeck(rng *rand.Rand, deck []*Card) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	for i, c := range deck {
		c.Position = i
	}
}

func groupContents(entry ContentEntry, groupSize int) []Content {
	contents := make([]Content, 0, groupSize)
	if entry.Image != "" {
		contents = append(contents, ImageContent(entry.Image))
	}
	if entry.Video != "" && len(contents) < groupSize {
		contents = append(contents, VideoContent(entry.Video))
	}
	for len(contents) < groupSize {
		contents = append(contents, TextContent(entry.Text))
	}
	return contents
}
