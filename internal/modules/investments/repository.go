package investments

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/storage"
)

// Repository implements account operations over a record store.
type Repository struct {
	store storage.Store[InvestmentAccount]
	log   zerolog.Logger
}

// NewRepository creates a new investment account repository
func NewRepository(store storage.Store[InvestmentAccount], log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "investments").Logger(),
	}
}

// List returns accounts matching every supplied filter, in insertion
// order. A zero Filters value returns the full collection.
func (r *Repository) List(ctx context.Context, filters Filters) ([]InvestmentAccount, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := []InvestmentAccount{}
	for _, account := range all {
		if filters.matches(account) {
			matched = append(matched, account)
		}
	}
	return matched, nil
}

// Get returns the account with the given id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*InvestmentAccount, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Create appends a new account. Ids take the form acct-N where N is
// one past the highest N ever assigned, so ids are never reused after
// deletions. Raw holdings are normalized; malformed rows are dropped.
func (r *Repository) Create(ctx context.Context, input CreateInput) (InvestmentAccount, error) {
	var created InvestmentAccount
	err := r.store.Mutate(ctx, func(records []InvestmentAccount) ([]InvestmentAccount, bool, error) {
		maxN := 0
		for _, account := range records {
			if n, ok := accountNumber(account.ID); ok && n > maxN {
				maxN = n
			}
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		created = InvestmentAccount{
			ID:          "acct-" + strconv.Itoa(maxN+1),
			Institution: input.Institution,
			AccountType: input.AccountType,
			Name:        input.Name,
			Balance:     input.Balance,
			Holdings:    NormalizeAll(input.Holdings),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return append(records, created), true, nil
	})
	if err != nil {
		return InvestmentAccount{}, err
	}

	r.log.Info().Str("id", created.ID).Str("institution", created.Institution).Msg("Account created")
	return created, nil
}

// Update applies a typed patch to the account with the given id. It
// returns nil, and writes nothing, when the id is not present. Set
// patch fields fully replace the account's fields; a Holdings
// replacement is applied before AddHoldings are appended.
func (r *Repository) Update(ctx context.Context, id string, patch Patch) (*InvestmentAccount, error) {
	var updated *InvestmentAccount
	err := r.store.Mutate(ctx, func(records []InvestmentAccount) ([]InvestmentAccount, bool, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}

			account := records[i]
			if patch.Institution != nil {
				account.Institution = *patch.Institution
			}
			if patch.AccountType != nil {
				account.AccountType = *patch.AccountType
			}
			if patch.Name != nil {
				account.Name = *patch.Name
			}
			if patch.Balance != nil {
				account.Balance = *patch.Balance
			}
			if patch.Holdings != nil {
				account.Holdings = *patch.Holdings
			}
			if len(patch.AddHoldings) > 0 {
				account.Holdings = append(account.Holdings, patch.AddHoldings...)
			}
			account.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

			records[i] = account
			updated = &account
			return records, true, nil
		}
		return records, false, nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		r.log.Info().Str("id", id).Msg("Account updated")
	}
	return updated, nil
}

// Delete removes an account by id. It reports false, and writes
// nothing, when the id is not present.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.store.Mutate(ctx, func(records []InvestmentAccount) ([]InvestmentAccount, bool, error) {
		next := make([]InvestmentAccount, 0, len(records))
		for _, account := range records {
			if account.ID == id {
				found = true
				continue
			}
			next = append(next, account)
		}
		return next, found, nil
	})
	if err != nil {
		return false, err
	}

	if found {
		r.log.Info().Str("id", id).Msg("Account deleted")
	}
	return found, nil
}

// Insights computes the read-only aggregation over the full collection.
func (r *Repository) Insights(ctx context.Context) (*Insights, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeInsights(all), nil
}

func (f Filters) matches(account InvestmentAccount) bool {
	if f.Institution != "" && account.Institution != f.Institution {
		return false
	}
	if f.AccountType != "" && account.AccountType != f.AccountType {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(account.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.MinBalance != nil && account.Balance < *f.MinBalance {
		return false
	}
	return true
}

func accountNumber(id string) (int, bool) {
	suffix, ok := strings.CutPrefix(id, "acct-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
