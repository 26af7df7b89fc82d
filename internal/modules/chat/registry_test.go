package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/olufemi424/agentic-ui/internal/modules/investments"
	"github.com/olufemi424/agentic-ui/internal/modules/items"
	"github.com/olufemi424/agentic-ui/internal/storage"
)

func newTestRegistry(t *testing.T) (*Registry, *investments.Repository) {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	itemsStore := storage.NewFileStore(filepath.Join(dir, "items.json"), items.Seed, log)
	accountsStore := storage.NewFileStore(filepath.Join(dir, "investments.json"), investments.Seed, log)
	itemsRepo := items.NewRepository(itemsStore, log)
	accountsRepo := investments.NewRepository(accountsStore, log)

	tools := append(QueryTools(itemsRepo, accountsRepo), ProposalTools()...)
	return NewRegistry(tools...), accountsRepo
}

func TestRegistryDeclarationsCoverAllTools(t *testing.T) {
	registry, _ := newTestRegistry(t)

	decls := registry.Declarations()
	names := make(map[string]bool, len(decls))
	for _, d := range decls {
		names[d.Name] = true
	}

	for _, want := range []string{
		"listItems",
		"recommendItem",
		"listInvestments",
		"getInvestmentInsights",
		"proposeCreateInvestmentAccount",
		"proposeUpdateInvestmentAccount",
		"proposeDeleteInvestmentAccount",
	} {
		assert.True(t, names[want], "missing declaration for %s", want)
	}
}

func TestRegistryDispatchUnknownFunction(t *testing.T) {
	registry, _ := newTestRegistry(t)

	resp := registry.Dispatch(context.Background(), &genai.FunctionCall{
		ID:   "call-1",
		Name: "definitelyNotATool",
	})

	require.NotNil(t, resp)
	assert.Contains(t, resp.Response["error"], "definitelyNotATool")
}

func TestRegistryDispatchQueryTool(t *testing.T) {
	registry, _ := newTestRegistry(t)

	resp := registry.Dispatch(context.Background(), &genai.FunctionCall{
		ID:   "call-2",
		Name: "listInvestments",
		Args: map[string]any{"institution": "Fidelity"},
	})

	require.NotNil(t, resp)
	require.NotContains(t, resp.Response, "error")
	accounts, ok := resp.Response["output"].([]investments.InvestmentAccount)
	require.True(t, ok)
	require.Len(t, accounts, 1)
	assert.Equal(t, "acct-2", accounts[0].ID)
}

func TestProposalToolsDoNotMutate(t *testing.T) {
	registry, repo := newTestRegistry(t)

	before, err := repo.List(context.Background(), investments.Filters{})
	require.NoError(t, err)

	resp := registry.Dispatch(context.Background(), &genai.FunctionCall{
		ID:   "call-3",
		Name: "proposeDeleteInvestmentAccount",
		Args: map[string]any{"id": "acct-1"},
	})

	require.NotNil(t, resp)
	pending, ok := resp.Response["pendingAction"].(PendingAction)
	require.True(t, ok)
	assert.Equal(t, ActionDeleteAccount, pending.Action)
	assert.Equal(t, "acct-1", pending.Payload["id"])
	assert.True(t, pending.RequiresConfirmation)
	assert.NotEmpty(t, pending.ID)

	after, err := repo.List(context.Background(), investments.Filters{})
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "proposal must not delete anything")
}

func TestProposalToolRequiresID(t *testing.T) {
	registry, _ := newTestRegistry(t)

	resp := registry.Dispatch(context.Background(), &genai.FunctionCall{
		ID:   "call-4",
		Name: "proposeUpdateInvestmentAccount",
		Args: map[string]any{"payload": map[string]any{"balance": 100.0}},
	})

	require.NotNil(t, resp)
	assert.Contains(t, resp.Response, "error")
}

func TestPendingActionsHaveUniqueIDs(t *testing.T) {
	registry, _ := newTestRegistry(t)

	call := &genai.FunctionCall{
		Name: "proposeCreateInvestmentAccount",
		Args: map[string]any{"payload": map[string]any{"name": "IRA"}},
	}
	first := registry.Dispatch(context.Background(), call)
	second := registry.Dispatch(context.Background(), call)

	a := first.Response["pendingAction"].(PendingAction)
	b := second.Response["pendingAction"].(PendingAction)
	assert.NotEqual(t, a.ID, b.ID)
}
