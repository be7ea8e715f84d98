package domain

import "errors"

var (
	// ErrInsufficientContent is returned when a category holds fewer entries
	// than the number of groups requested.
	ErrInsufficientContent = errors.New("not enough cards to fill the playing field")
	// ErrInvalidConfiguration is returned when group size and group count
	// cannot form a deck.
	ErrInvalidConfiguration = errors.New("invalid round configuration")
)
