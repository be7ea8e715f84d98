package ports

import (
	"context"

	"concentration/internal/catalog"
)

// CategoryStore persists the content categories players add themselves.
type CategoryStore interface {
	// ListCategories returns the categories saved by the user, in save order.
	ListCategories(ctx context.Context, userID string) ([]catalog.Category, error)

	// SaveCategory adds the category for the user, replacing one with the same name.
	SaveCategory(ctx context.Context, userID string, category catalog.Category) error
}
