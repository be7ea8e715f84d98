package domain

// ContentKind identifies what a card shows when face-up.
type ContentKind string

const (
	ContentImage ContentKind = "image"
	ContentText  ContentKind = "text"
	ContentVideo ContentKind = "video"
)

// Content is the face of a card. Ref holds the asset reference for image and
// video cards and the literal text for text cards.
type Content struct {
	Kind ContentKind
	Ref  string
}

// ImageContent returns image content for the given asset reference.
func ImageContent(ref string) Content { return Content{Kind: ContentImage, Ref: ref} }

// TextContent returns text content.
func TextContent(text string) Content { return Content{Kind: ContentText, Ref: text} }

// VideoContent returns video content for the given asset reference.
func VideoContent(ref string) Content { return Content{Kind: ContentVideo, Ref: ref} }

// Face is the visible side of a card.
type Face int

const (
	// FaceHidden shows the card back.
	FaceHidden Face = iota
	// FaceRevealed shows the card content.
	FaceRevealed
)

func (f Face) String() string {
	if f == FaceRevealed {
		return "revealed"
	}
	return "hidden"
}

// Card is a single entry of a round's deck.
type Card struct {
	Content  Content
	PairKey  int // group index; shared by exactly GroupSize cards
	Position int // board index after the final shuffle

	Face         Face
	Locked       bool
	RevealClicks int
}

// Reveal turns the card face-up and counts the flip. It does nothing and
// returns false when the card is locked or already face-up.
func (c *Card) Reveal() bool {
	if c.Locked || c.Face == FaceRevealed {
		return false
	}
	c.Face = FaceRevealed
	c.RevealClicks++
	return true
}

// Conceal turns an unlocked, face-up card face-down.
func (c *Card) Conceal() bool {
	if c.Locked || c.Face == FaceHidden {
		return false
	}
	c.Face = FaceHidden
	return true
}

// Lock marks the card as permanently matched.
func (c *Card) Lock() {
	c.Locked = true
}

// IsMedia reports whether the card plays an image or video when revealed.
func (c *Card) IsMedia() bool {
	return c.Content.Kind == ContentImage || c.Content.Kind == ContentVideo
}

// IsVideo reports whether the card shows video content.
func (c *Card) IsVideo() bool {
	return c.Content.Kind == ContentVideo
}
