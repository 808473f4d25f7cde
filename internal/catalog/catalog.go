package catalog

import (
	"errors"
	"fmt"
	"strings"

	"seniorkiosk/internal/models"
)

// ErrInvalidCatalog is returned when a menu definition cannot be used
var ErrInvalidCatalog = errors.New("invalid catalog")

// Entry pairs a menu item with the spoken keywords that refer to it
type Entry struct {
	models.MenuItem `yaml:",inline"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords"`
}

// Catalog is the fixed, ordered list of drinks. It is read-only after construction.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// New creates a catalog from entries, preserving their order
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no menu items", ErrInvalidCatalog)
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := models.ValidateMenuItem(&e.MenuItem); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate menu id %s", ErrInvalidCatalog, e.ID)
		}
		if len(e.Keywords) == 0 {
			e.Keywords = []string{e.Name}
		}
		kw := make([]string, len(e.Keywords))
		copy(kw, e.Keywords)
		e.Keywords = kw

		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Items returns the menu items in catalog order
func (c *Catalog) Items() []models.MenuItem {
	items := make([]models.MenuItem, len(c.entries))
	for i, e := range c.entries {
		items[i] = e.MenuItem
	}
	return items
}

// Entries returns the catalog entries, keywords included, in catalog order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e
		out[i].Keywords = append([]string(nil), e.Keywords...)
	}
	return out
}

// Names returns the display names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Get looks an item up by id
func (c *Catalog) Get(id string) (models.MenuItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.MenuItem{}, false
	}
	return c.entries[i].MenuItem, true
}

// FindByName resolves a free-form item name to a catalog item. An item matches
// when its name contains the candidate or the candidate contains its name.
// The first match in catalog order wins.
func (c *Catalog) FindByName(candidate string) (models.MenuItem, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return models.MenuItem{}, false
	}
	for _, e := range c.entries {
		if strings.Contains(e.Name, candidate) || strings.Contains(candidate, e.Name) {
			return e.MenuItem, true
		}
	}
	return models.MenuItem{}, false
}

// MatchKeyword returns the first entry, in catalog order, that has a keyword
// contained in text.
func (c *Catalog) MatchKeyword(text string) (models.MenuItem, bool) {
	for _, e := range c.entries {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return e.MenuItem, true
			}
		}
	}
	return models.MenuItem{}, false
}
