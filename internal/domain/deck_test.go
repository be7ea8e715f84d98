package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func textEntries(n int) []ContentEntry {
	entries := make([]ContentEntry, n)
	for i := range entries {
		entries[i] = ContentEntry{Text: fmt.Sprintf("word-%d", i)}
	}
	return entries
}

func TestBuildDeckSizesAndPairKeys(t *testing.T) {
	tests := []struct {
		name       string
		groupSize  int
		groupCount int
		entries    int
	}{
		{name: "single pair", groupSize: 2, groupCount: 1, entries: 1},
		{name: "four pairs", groupSize: 2, groupCount: 4, entries: 10},
		{name: "triples", groupSize: 3, groupCount: 5, entries: 5},
		{name: "quads", groupSize: 4, groupCount: 3, entries: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			deck, err := BuildDeck(textEntries(tt.entries), tt.groupSize, tt.groupCount, rng)
			if err != nil {
				t.Fatalf("BuildDeck error: %v", err)
			}
			if len(deck) != tt.groupSize*tt.groupCount {
				t.Fatalf("deck size = %d, want %d", len(deck), tt.groupSize*tt.groupCount)
			}

			counts := make(map[int]int)
			for i, c := range deck {
				counts[c.PairKey]++
				if c.Position != i {
					t.Fatalf("card at %d has Position %d", i, c.Position)
				}
				if c.Face != FaceHidden || c.Locked || c.RevealClicks != 0 {
					t.Fatalf("card %d not dealt face-down and unlocked: %+v", i, c)
				}
			}
			if len(counts) != tt.groupCount {
				t.Fatalf("distinct pair keys = %d, want %d", len(counts), tt.groupCount)
			}
			for key, n := range counts {
				if n != tt.groupSize {
					t.Errorf("pair key %d appears %d times, want %d", key, n, tt.groupSize)
				}
			}
		})
	}
}

func TestBuildDeckInsufficientContent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	deck, err := BuildDeck(textEntries(4), 2, 5, rng)
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("err = %v, want ErrInsufficientContent", err)
	}
	if deck != nil {
		t.Fatalf("expected no deck on error")
	}
}

func TestBuildDeckInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		groupSize  int
		groupCount int
	}{
		{name: "group size one", groupSize: 1, groupCount: 2},
		{name: "group size zero", groupSize: 0, groupCount: 2},
		{name: "no groups", groupSize: 2, groupCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDeck(textEntries(10), tt.groupSize, tt.groupCount, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestConfigFromDeckSize(t *testing.T) {
	cfg, err := ConfigFromDeckSize(12, 3, "animals")
	if err != nil {
		t.Fatalf("ConfigFromDeckSize error: %v", err)
	}
	want := RoundConfig{GroupSize: 3, GroupCount: 4, Category: "animals"}
	if cfg != want {
		t.Fatalf("config = %+v, want %+v", cfg, want)
	}

	if _, err := ConfigFromDeckSize(10, 3, "animals"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("10 cards in triples: err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := ConfigFromDeckSize(0, 2, "animals"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("empty board: err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestBuildDeckContentFallback(t *testing.T) {
	tests := []struct {
		name      string
		entry     ContentEntry
		groupSize int
		want      map[ContentKind]int
	}{
		{
			name:      "image and video",
			entry:     ContentEntry{Text: "cat", Image: "cat.png", Video: "cat.mp4"},
			groupSize: 2,
			want:      map[ContentKind]int{ContentImage: 1, ContentVideo: 1},
		},
		{
			name:      "image only",
			entry:     ContentEntry{Text: "cat", Image: "cat.png"},
			groupSize: 2,
			want:      map[ContentKind]int{ContentImage: 1, ContentText: 1},
		},
		{
			name:      "video only",
			entry:     ContentEntry{Text: "cat", Video: "cat.mp4"},
			groupSize: 2,
			want:      map[ContentKind]int{ContentVideo: 1, ContentText: 1},
		},
		{
			name:      "text only",
			entry:     ContentEntry{Text: "cat"},
			groupSize: 2,
			want:      map[ContentKind]int{ContentText: 2},
		},
		{
			name:      "triple with media",
			entry:     ContentEntry{Text: "cat", Image: "cat.png", Video: "cat.mp4"},
			groupSize: 3,
			want:      map[ContentKind]int{ContentImage: 1, ContentVideo: 1, ContentText: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := BuildDeck([]ContentEntry{tt.entry}, tt.groupSize, 1, rand.New(rand.NewSource(3)))
			if err != nil {
				t.Fatalf("BuildDeck error: %v", err)
			}
			got := make(map[ContentKind]int)
			for _, c := range deck {
				got[c.Content.Kind]++
				switch c.Content.Kind {
				case ContentText:
					if c.Content.Ref != tt.entry.Text {
						t.Errorf("text card shows %q, want %q", c.Content.Ref, tt.entry.Text)
					}
				case ContentImage:
					if c.Content.Ref != tt.entry.Image {
						t.Errorf("image card ref %q, want %q", c.Content.Ref, tt.entry.Image)
					}
				case ContentVideo:
					if c.Content.Ref != tt.entry.Video {
						t.Errorf("video card ref %q, want %q", c.Content.Ref, tt.entry.Video)
					}
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("content kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildDeckDoesNotReorderEntries(t *testing.T) {
	entries := textEntries(6)
	before := append([]ContentEntry(nil), entries...)

	if _, err := BuildDeck(entries, 2, 3, rand.New(rand.NewSource(11))); err != nil {
		t.Fatalf("BuildDeck error: %v", err)
	}
	if !reflect.DeepEqual(entries, before) {
		t.Fatalf("entries were modified: %v", entries)
	}
}

func TestShuffleDeckIsPermutation(t *testing.T) {
	deck, err := BuildDeck(textEntries(8), 2, 8, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("BuildDeck error: %v", err)
	}
	before := make(map[*Card]bool, len(deck))
	for _, c := range deck {
		before[c] = true
	}

	ShuffleDeck(rand.New(rand.NewSource(6)), deck)

	if len(deck) != len(before) {
		t.Fatalf("deck size changed to %d", len(deck))
	}
	for i, c := range deck {
		if !before[c] {
			t.Fatalf("card at %d was not in the original deck", i)
		}
		delete(before, c)
		if c.Position != i {
			t.Fatalf("card at %d has Position %d", i, c.Position)
		}
	}
}

func TestShuffleDeckNearUniform(t *testing.T) {
	const trials = 60000
	rng := rand.New(rand.NewSource(2024))
	a, b, c := &Card{PairKey: 0}, &Card{PairKey: 1}, &Card{PairKey: 2}

	counts := make(map[[3]int]int)
	for i := 0; i < trials; i++ {
		deck := []*Card{a, b, c}
		ShuffleDeck(rng, deck)
		counts[[3]int{deck[0].PairKey, deck[1].PairKey, deck[2].PairKey}]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	expected := trials / 6
	for perm, n := range counts {
		if n < expected-600 || n > expected+600 {
			t.Errorf("permutation %v seen %d times, want about %d", perm, n, expected)
		}
	}
}
