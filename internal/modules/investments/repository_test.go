package investments

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olufemi424/agentic-ui/internal/events"
	"github.com/olufemi424/agentic-ui/internal/storage"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "investments.json")
	store := storage.NewFileStore(path, Seed, zerolog.Nop())
	return NewRepository(store, zerolog.Nop()), path
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestListReturnsSeededAccounts(t *testing.T) {
	repo, _ := newTestRepo(t)

	all, err := repo.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "acct-1", all[0].ID)
	assert.Equal(t, "acct-2", all[1].ID)
}

func TestListFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	byInstitution, err := repo.List(ctx, Filters{Institution: "Fidelity"})
	require.NoError(t, err)
	require.Len(t, byInstitution, 1)
	assert.Equal(t, "acct-2", byInstitution[0].ID)

	// Exact match: partial institution does not match.
	none, err := repo.List(ctx, Filters{Institution: "Fid"})
	require.NoError(t, err)
	assert.Empty(t, none)

	byType, err := repo.List(ctx, Filters{AccountType: "Brokerage"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "acct-1", byType[0].ID)

	byName, err := repo.List(ctx, Filters{Name: "ROWTH"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "acct-1", byName[0].ID)

	byBalance, err := repo.List(ctx, Filters{MinBalance: floatPtr(20000)})
	require.NoError(t, err)
	require.Len(t, byBalance, 1)
	assert.Equal(t, "acct-1", byBalance[0].ID)

	// Conjunction of filters.
	combined, err := repo.List(ctx, Filters{Institution: "Fidelity", MinBalance: floatPtr(20000)})
	require.NoError(t, err)
	assert.Empty(t, combined)
}

func TestCreateAssignsMonotonicID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateInput{
		Institution: "Vanguard",
		AccountType: "Brokerage",
		Name:        "Index Fund",
		Balance:     5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "acct-3", created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	all, err := repo.List(ctx, Filters{})
	require.NoError(t, err)
	// Created record is the last element and appears exactly once.
	count := 0
	for _, a := range all {
		if a.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, created, all[len(all)-1])
}

func TestCreateNeverReusesIDAfterDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	third, err := repo.Create(ctx, CreateInput{Name: "A"})
	require.NoError(t, err)
	require.Equal(t, "acct-3", third.ID)

	ok, err := repo.Delete(ctx, "acct-3")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.Delete(ctx, "acct-2")
	require.NoError(t, err)
	require.True(t, ok)

	// Two of three accounts deleted; length+1 would collide with the
	// surviving acct-1's successor. The monotonic counter does not.
	next, err := repo.Create(ctx, CreateInput{Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, "acct-2", next.ID)
}

func TestCreateNormalizesHoldings(t *testing.T) {
	repo, _ := newTestRepo(t)

	created, err := repo.Create(context.Background(), CreateInput{
		Name: "Mixed",
		Holdings: []json.RawMessage{
			json.RawMessage(`"5 AAPL at 185"`),
			json.RawMessage(`{"ticker":"msft","qty":"3","price":"400"}`),
			json.RawMessage(`"bogus"`),
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Holdings, 2)
	assert.Equal(t, "AAPL", created.Holdings[0].Symbol)
	assert.Equal(t, "MSFT", created.Holdings[1].Symbol)
}

func TestUpdateBalanceLeavesHoldingsUntouched(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	before, err := repo.Get(ctx, "acct-1")
	require.NoError(t, err)
	require.NotNil(t, before)

	updated, err := repo.Update(ctx, "acct-1", Patch{Balance: floatPtr(26000)})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, float64(26000), updated.Balance)
	assert.Equal(t, before.Holdings, updated.Holdings)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, before.UpdatedAt)
}

func TestUpdateAddHoldingsAppends(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, "acct-1", Patch{
		AddHoldings: []Holding{{Symbol: "TSLA", Quantity: 1, AvgPrice: 900}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.Len(t, updated.Holdings, 4)
	assert.Equal(t, "TSLA", updated.Holdings[3].Symbol)
}

func TestUpdateHoldingsReplacesWholesale(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	replacement := []Holding{{Symbol: "VT", Quantity: 1, AvgPrice: 100}}
	updated, err := repo.Update(ctx, "acct-1", Patch{Holdings: &replacement})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, replacement, updated.Holdings)
}

func TestUpdateReplaceThenAppendPrecedence(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	replacement := []Holding{{Symbol: "VT", Quantity: 1, AvgPrice: 100}}
	updated, err := repo.Update(ctx, "acct-1", Patch{
		Holdings:    &replacement,
		AddHoldings: []Holding{{Symbol: "TSLA", Quantity: 1, AvgPrice: 900}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.Len(t, updated.Holdings, 2)
	assert.Equal(t, "VT", updated.Holdings[0].Symbol)
	assert.Equal(t, "TSLA", updated.Holdings[1].Symbol)
}

func TestUpdateScalarFields(t *testing.T) {
	repo, _ := newTestRepo(t)

	updated, err := repo.Update(context.Background(), "acct-2", Patch{
		Institution: strPtr("Schwab"),
		AccountType: strPtr("Traditional IRA"),
		Name:        strPtr("Renamed"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Schwab", updated.Institution)
	assert.Equal(t, "Traditional IRA", updated.AccountType)
	assert.Equal(t, "Renamed", updated.Name)
	// Untouched fields survive.
	assert.Equal(t, float64(18000), updated.Balance)
}

func TestUpdateMissingIDPerformsNoWrite(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.List(ctx, Filters{})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "acct-99", Patch{Balance: floatPtr(1)})
	require.NoError(t, err)
	assert.Nil(t, updated)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteMissingIDLeavesCollectionUnchanged(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.List(ctx, Filters{})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, "acct-99")
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDuplicateSymbolsAllowed(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, "acct-1", Patch{
		AddHoldings: []Holding{{Symbol: "AAPL", Quantity: 1, AvgPrice: 180}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	count := 0
	for _, h := range updated.Holdings {
		if h.Symbol == "AAPL" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestRepositoryWithSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "investments.db")
	store, err := storage.NewSQLiteStore(path, "investment_accounts", Seed, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	repo := NewRepository(store, zerolog.Nop())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateInput{Institution: "Vanguard", Name: "Index"})
	require.NoError(t, err)
	assert.Equal(t, "acct-3", created.ID)

	all, err := repo.List(ctx, Filters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, created, all[len(all)-1])
}

func TestSQLiteBackedMutationPublishesChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	store, err := storage.NewSQLiteStore(path, "investment_accounts", Seed, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	bus := events.NewBus(zerolog.Nop())
	changes := make(chan *events.Event, 4)
	bus.Subscribe(events.AccountsChanged, func(e *events.Event) {
		changes <- e
	})

	notifying := storage.NotifyOnWrite[InvestmentAccount](store, func() {
		bus.Publish(events.AccountsChanged, "storage", map[string]interface{}{
			"file": path,
			"ts":   time.Now().UnixMilli(),
		})
	})
	repo := NewRepository(notifying, zerolog.Nop())
	ctx := context.Background()

	_, err = repo.Create(ctx, CreateInput{Institution: "Vanguard", Name: "Index"})
	require.NoError(t, err)

	select {
	case e := <-changes:
		assert.Equal(t, path, e.Data["file"])
	case <-time.After(3 * time.Second):
		t.Fatal("expected an account change event after a sqlite-backed mutation")
	}

	// A lookup miss persists nothing and must stay silent.
	_, err = repo.Update(ctx, "acct-999", Patch{Balance: floatPtr(1)})
	require.NoError(t, err)
	select {
	case <-changes:
		t.Fatal("no change event expected when nothing was written")
	default:
	}
}
