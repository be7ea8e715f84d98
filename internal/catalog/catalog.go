// Package catalog holds the content categories cards are dealt from.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"concentration/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Entry is one catalog item as stored on disk. Image and Video are file
// names relative to the category's asset folders, or absolute references.
// Text is mandatory: groups larger than an entry's media fall back to it.
type Entry struct {
	Text  string `json:"text" validate:"required,max=200"`
	Image string `json:"image,omitempty" validate:"omitempty,max=512"`
	Video string `json:"video,omitempty" validate:"omitempty,max=512"`
}

// Category is a named list of entries.
type Category struct {
	Name    string  `json:"name" validate:"required,max=64"`
	Entries []Entry `json:"entries" validate:"required,min=1,dive"`
}

// ErrUnknownCategory is returned for category names the catalog does not hold.
var ErrUnknownCategory = errors.New("unknown category")

var validate = validator.New()

// Catalog maps category names to their entries. A Catalog is immutable once
// built; With returns a copy.
type Catalog struct {
	assetRoot  string
	categories map[string][]Entry
}

// New builds a catalog from already validated categories.
func New(assetRoot string, categories map[string][]Entry) *Catalog {
	c := &Catalog{assetRoot: assetRoot, categories: make(map[string][]Entry, len(categories))}
	for name, entries := range categories {
		c.categories[name] = append([]Entry(nil), entries...)
	}
	return c
}

// Parse decodes a catalog document of the form {"<category>": [entries...]}.
func Parse(data []byte, assetRoot string) (*Catalog, error) {
	var raw map[string][]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	for name, entries := range raw {
		if err := ValidateCategory(Category{Name: name, Entries: entries}); err != nil {
			return nil, err
		}
	}
	return New(assetRoot, raw), nil
}

// Load reads and parses the catalog file at path.
func Load(path, assetRoot string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, assetRoot)
}

var (
	shared   *Catalog
	loadOnce sync.Once
	loadErr  error
)

// LoadShared loads the process-wide catalog once and returns it on every call.
func LoadShared(path, assetRoot string) (*Catalog, error) {
	loadOnce.Do(func() {
		shared, loadErr = Load(path, assetRoot)
	})
	return shared, loadErr
}

// ValidateCategory checks a category name and its entries.
func ValidateCategory(c Category) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid category %q: %w", c.Name, err)
	}
	if strings.ContainsAny(c.Name, "/\\") {
		return fmt.Errorf("invalid category %q: name must not contain path separators", c.Name)
	}
	return nil
}

// With returns a copy of the catalog that also holds the given categories.
// A category with an existing name replaces it.
func (c *Catalog) With(extra ...Category) *Catalog {
	merged := New(c.assetRoot, c.categories)
	for _, cat := range extra {
		merged.categories[cat.Name] = append([]Entry(nil), cat.Entries...)
	}
	return merged
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the catalog holds the named category.
func (c *Catalog) Has(category string) bool {
	_, ok := c.categories[category]
	return ok
}

// Entries returns the category's content with asset references resolved.
func (c *Catalog) Entries(category string) ([]domain.ContentEntry, error) {
	entries, ok := c.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	out := make([]domain.ContentEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.ContentEntry{
			Text:  e.Text,
			Image: c.resolve(category, "images", e.Image),
			Video: c.resolve(category, "videos", e.Video),
		}
	}
	return out, nil
}

// resolve maps a file name to <assetRoot>/<category>/<kind>/<file>.
// Empty, rooted and URL references are returned unchanged.
func (c *Catalog) resolve(category, kind, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref
	}
	return path.Join(c.assetRoot, category, kind, ref)
}
