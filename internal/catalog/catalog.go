// Package catalog supplies the fixed rank list and item sequence a session
// ranks over.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
)

// Catalog is the immutable input of a ranking session.
type Catalog struct {
	List  model.RankList `yaml:"list"`
	Items []model.Item   `yaml:"items"`
}

// Default returns the built-in geography tier list.
func Default() Catalog {
	return Catalog{
		List: model.RankList{ID: "geo-tier-list", Name: "Country Tier List", RankType: "country_tier"},
		Items: []model.Item{
			{ID: "fr", Name: "France", Glyph: "🇫🇷"},
			{ID: "jp", Name: "Japan", Glyph: "🇯🇵"},
			{ID: "br", Name: "Brazil", Glyph: "🇧🇷"},
			{ID: "ca", Name: "Canada", Glyph: "🇨🇦"},
			{ID: "ke", Name: "Kenya", Glyph: "🇰🇪"},
			{ID: "nz", Name: "New Zealand", Glyph: "🇳🇿"},
			{ID: "it", Name: "Italy", Glyph: "🇮🇹"},
			{ID: "mx", Name: "Mexico", Glyph: "🇲🇽"},
			{ID: "in", Name: "India", Glyph: "🇮🇳"},
			{ID: "is", Name: "Iceland", Glyph: "🇮🇸"},
		},
	}
}

// Parse decodes a YAML catalog and validates it.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Load reads a catalog file. An empty path yields the default catalog.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the catalog can back a session.
func (c Catalog) Validate() error {
	if strings.TrimSpace(c.List.ID) == "" {
		return fmt.Errorf("%w: list id is empty", ErrInvalidCatalog)
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	for i, it := range c.Items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("%w: item %d has an empty id", ErrInvalidCatalog, i)
		}
	}
	return nil
}

// Item looks up an item by id.
func (c Catalog) Item(id string) (model.Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}
