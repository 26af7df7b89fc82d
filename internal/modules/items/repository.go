package items

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/storage"
)

// Repository implements item operations over a record store.
type Repository struct {
	store storage.Store[Item]
	log   zerolog.Logger
}

// NewRepository creates a new item repository
func NewRepository(store storage.Store[Item], log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "items").Logger(),
	}
}

// List returns all items in insertion order.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	return r.store.List(ctx)
}

// Search returns items whose title, description or tags contain the
// query, case-insensitively.
func (r *Repository) Search(ctx context.Context, query string) ([]Item, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := []Item{}
	for _, item := range all {
		if itemMatches(item, q) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Create appends a new item. The id is the highest existing numeric id
// plus one, so ids keep increasing even after deletions.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Item, error) {
	var created Item
	err := r.store.Mutate(ctx, func(records []Item) ([]Item, bool, error) {
		if input.Title == "" {
			return nil, false, fmt.Errorf("item title is required")
		}

		maxID := 0
		for _, item := range records {
			if n, err := strconv.Atoi(item.ID); err == nil && n > maxID {
				maxID = n
			}
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		created = Item{
			ID:          strconv.Itoa(maxID + 1),
			Title:       input.Title,
			Description: input.Description,
			Tags:        input.Tags,
			Image:       input.Image,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return append(records, created), true, nil
	})
	if err != nil {
		return Item{}, err
	}

	r.log.Info().Str("id", created.ID).Str("title", created.Title).Msg("Item created")
	return created, nil
}

// Delete removes an item by id. It reports false, and writes nothing,
// when the id is not present.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.store.Mutate(ctx, func(records []Item) ([]Item, bool, error) {
		next := make([]Item, 0, len(records))
		for _, item := range records {
			if item.ID == id {
				found = true
				continue
			}
			next = append(next, item)
		}
		return next, found, nil
	})
	if err != nil {
		return false, err
	}

	if found {
		r.log.Info().Str("id", id).Msg("Item deleted")
	}
	return found, nil
}

// Recommend returns the most recently updated item, or nil when the
// collection is empty.
func (r *Repository) Recommend(ctx context.Context) (*Item, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	sorted := make([]Item, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseStamp(sorted[i].UpdatedAt).After(parseStamp(sorted[j].UpdatedAt))
	})
	return &sorted[0], nil
}

// parseStamp parses an RFC 3339 timestamp. The fractional part is
// variable width, so string comparison would misorder close stamps;
// unparseable values sort to the beginning of time.
func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func itemMatches(item Item, q string) bool {
	if strings.Contains(strings.ToLower(item.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), q) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
