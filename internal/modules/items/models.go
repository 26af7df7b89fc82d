// Package items implements the generic item collection: a small
// file-backed record store with list, search, create, delete and
// recommend operations.
package items

import "time"

// Item represents a record in the generic items collection.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Image       string   `json:"image,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// CreateInput holds the caller-supplied fields for a new item.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// Seed returns the fixed example items written on first access when
// the backing file does not exist.
func Seed() []Item {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return []Item{
		{
			ID:          "1",
			Title:       "Sample Item Alpha",
			Description: "A seeded example item",
			Tags:        []string{"example", "alpha"},
			Image:       "/example-guitar-flowers.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Sample Item Beta",
			Description: "Second seeded item",
			Tags:        []string{"example", "beta"},
			Image:       "/example-guitar-superhero.jpg",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
