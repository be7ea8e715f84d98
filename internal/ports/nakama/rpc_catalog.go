package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"concentration/internal/catalog"
	"concentration/internal/config"
	"concentration/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CategoryInfo describes one selectable category.
type CategoryInfo struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Custom  bool   `json:"custom"`
}

// ListCategoriesResponse is returned by list_categories.
type ListCategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
	Levels     []int          `json:"levels"`
}

// SaveCategoryResponse is returned by save_category.
type SaveCategoryResponse struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

func sharedCatalog(logger runtime.Logger) (*catalog.Catalog, error) {
	cfg := config.GetGameConfig()
	cat, err := catalog.LoadShared(cfg.CatalogPath, cfg.AssetRoot)
	if err != nil {
		logger.Error("Failed to load catalog %s: %v", cfg.CatalogPath, err)
		return nil, runtime.NewError("catalog unavailable", codeInternal)
	}
	return cat, nil
}

func rpcListCategories(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	cat, err := sharedCatalog(logger)
	if err != nil {
		return "", err
	}
	return listCategories(ctx, logger, cat, NewNakamaCategoryStore(nk), config.GetGameConfig().Levels)
}

func listCategories(ctx context.Context, logger runtime.Logger, cat *catalog.Catalog, store ports.CategoryStore, levels []int) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var custom []catalog.Category
	if userID != "" {
		var err error
		custom, err = store.ListCategories(ctx, userID)
		if err != nil {
			logger.Error("RpcListCategories [User:%s]: %v", userID, err)
			return "", runtime.NewError("failed to read categories", codeInternal)
		}
	}

	isCustom := make(map[string]bool, len(custom))
	for _, c := range custom {
		isCustom[c.Name] = true
	}
	merged := cat.With(custom...)

	resp := ListCategoriesResponse{Levels: levels}
	for _, name := range merged.Categories() {
		entries, _ := merged.Entries(name)
		resp.Categories = append(resp.Categories, CategoryInfo{
			Name:    name,
			Entries: len(entries),
			Custom:  isCustom[name],
		})
	}

	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcSaveCategory(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return saveCategory(ctx, logger, NewNakamaCategoryStore(nk), payload)
}

func saveCategory(ctx context.Context, logger runtime.Logger, store ports.CategoryStore, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user in context", codeInvalidArgument)
	}

	var category catalog.Category
	if err := json.Unmarshal([]byte(payload), &category); err != nil {
		return "", runtime.NewError("invalid save_category payload", codeInvalidArgument)
	}
	if err := catalog.ValidateCategory(category); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	if err := store.SaveCategory(ctx, userID, category); err != nil {
		logger.Error("RpcSaveCategory [User:%s]: %v", userID, err)
		return "", runtime.NewError("failed to save category", codeInternal)
	}
	logger.Info("RpcSaveCategory [User:%s]: Saved category %q with %d entries", userID, category.Name, len(category.Entries))

	b, _ := json.Marshal(SaveCategoryResponse{Name: category.Name, Entries: len(category.Entries)})
	return string(b), nil
}
