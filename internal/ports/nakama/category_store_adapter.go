package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"concentration/internal/catalog"
	"concentration/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	categoryCollection = "concentration"
	categoryKey        = "categories"
)

// categoryStorage is the subset of runtime.NakamaModule the store needs.
type categoryStorage interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

type storedCategories struct {
	Categories []catalog.Category `json:"categories"`
}

// NakamaCategoryStore keeps user categories in a single owner-readable
// storage object per user.
type NakamaCategoryStore struct {
	nk categoryStorage
}

// NewNakamaCategoryStore creates a new category store adapter.
func NewNakamaCategoryStore(nk categoryStorage) *NakamaCategoryStore {
	return &NakamaCategoryStore{nk: nk}
}

// ListCategories reads the user's saved categories.
func (s *NakamaCategoryStore) ListCategories(ctx context.Context, userID string) ([]catalog.Category, error) {
	stored, _, err := s.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stored.Categories, nil
}

// SaveCategory validates the category and writes it alongside the user's others.
// Concurrent saves are rejected by the storage version check.
func (s *NakamaCategoryStore) SaveCategory(ctx context.Context, userID string, category catalog.Category) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	if err := catalog.ValidateCategory(category); err != nil {
		return err
	}

	stored, version, err := s.read(ctx, userID)
	if err != nil {
		return err
	}
	replaced := false
	for i, c := range stored.Categories {
		if c.Name == category.Name {
			stored.Categories[i] = category
			replaced = true
			break
		}
	}
	if !replaced {
		stored.Categories = append(stored.Categories, category)
	}

	value, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	if version == "" {
		version = "*"
	}

	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      categoryCollection,
			Key:             categoryKey,
			UserID:          userID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (s *NakamaCategoryStore) read(ctx context.Context, userID string) (storedCategories, string, error) {
	var stored storedCategories
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: categoryCollection, Key: categoryKey, UserID: userID},
	})
	if err != nil {
		return stored, "", fmt.Errorf("failed to read categories: %w", err)
	}
	if len(objects) == 0 {
		return stored, "", nil
	}
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &stored); err != nil {
		return stored, "", fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	return stored, objects[0].GetVersion(), nil
}

var _ ports.CategoryStore = (*NakamaCategoryStore)(nil)
