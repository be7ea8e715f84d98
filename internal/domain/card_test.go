package domain

import "testing"

func TestCardRevealConcealLock(t *testing.T) {
	c := &Card{Content: TextContent("owl")}

	if !c.Reveal() {
		t.Fatalf("Reveal() on hidden card = false")
	}
	if c.Reveal() {
		t.Fatalf("Reveal() on revealed card = true")
	}
	if c.RevealClicks != 1 {
		t.Fatalf("RevealClicks = %d, want 1", c.RevealClicks)
	}

	if !c.Conceal() {
		t.Fatalf("Conceal() on revealed card = false")
	}
	if c.Conceal() {
		t.Fatalf("Conceal() on hidden card = true")
	}

	c.Reveal()
	c.Lock()
	if c.Conceal() {
		t.Fatalf("Conceal() on locked card = true")
	}
	if c.Face != FaceRevealed {
		t.Fatalf("locked card face = %s, want revealed", c.Face)
	}
	if c.RevealClicks != 2 {
		t.Fatalf("RevealClicks = %d, want 2", c.RevealClicks)
	}
}

func TestCardLockedIgnoresReveal(t *testing.T) {
	c := &Card{}
	c.Lock()
	if c.Reveal() {
		t.Fatalf("Reveal() on locked hidden card = true")
	}
	if c.RevealClicks != 0 {
		t.Fatalf("RevealClicks = %d, want 0", c.RevealClicks)
	}
}

func TestCardMediaKinds(t *testing.T) {
	tests := []struct {
		content Content
		media   bool
		video   bool
	}{
		{content: TextContent("owl"), media: false, video: false},
		{content: ImageContent("owl.png"), media: true, video: false},
		{content: VideoContent("owl.mp4"), media: true, video: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.content.Kind), func(t *testing.T) {
			c := &Card{Content: tt.content}
			if c.IsMedia() != tt.media {
				t.Errorf("IsMedia() = %t, want %t", c.IsMedia(), tt.media)
			}
			if c.IsVideo() != tt.video {
				t.Errorf("IsVideo() = %t, want %t", c.IsVideo(), tt.video)
			}
		})
	}
}
