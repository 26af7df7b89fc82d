// Package investments implements the investment account collection:
// filtered listing, create/update/delete with normalized holdings, and
// the read-only insights aggregation.
package investments

import (
	"encoding/json"
	"time"
)

// Holding represents a single position inside an account. Position
// value is always derived as Quantity*AvgPrice, never stored.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avgPrice"`
	Sector   string  `json:"sector,omitempty"`
}

// Position returns the derived position value.
func (h Holding) Position() float64 {
	return h.Quantity * h.AvgPrice
}

// InvestmentAccount represents a record in the accounts collection.
// Duplicate holdings by symbol are allowed; there is no merge-by-symbol.
type InvestmentAccount struct {
	ID          string    `json:"id"`
	Institution string    `json:"institution"`
	AccountType string    `json:"accountType"`
	Name        string    `json:"name"`
	Balance     float64   `json:"balance"`
	Holdings    []Holding `json:"holdings"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// CreateInput holds the caller-supplied fields for a new account.
// Holdings are raw values (objects or strings) that pass through the
// normalizer before the account is stored.
type CreateInput struct {
	Institution string            `json:"institution"`
	AccountType string            `json:"accountType"`
	Name        string            `json:"name"`
	Balance     float64           `json:"balance"`
	Holdings    []json.RawMessage `json:"holdings"`
}

// PatchRequest is the wire shape of an account patch. Holdings fields
// carry raw values for normalization; a present (possibly empty)
// "holdings" array replaces the list wholesale, "addHoldings" appends.
type PatchRequest struct {
	Institution *string            `json:"institution,omitempty"`
	AccountType *string            `json:"accountType,omitempty"`
	Name        *string            `json:"name,omitempty"`
	Balance     *float64           `json:"balance,omitempty"`
	Holdings    *[]json.RawMessage `json:"holdings,omitempty"`
	AddHoldings []json.RawMessage  `json:"addHoldings,omitempty"`
}

// Patch is the typed, normalized form applied by the repository. Each
// set field fully replaces the same-named account field. When both
// Holdings and AddHoldings are present, the replacement is applied
// first and the additions are appended after.
type Patch struct {
	Institution *string
	AccountType *string
	Name        *string
	Balance     *float64
	Holdings    *[]Holding
	AddHoldings []Holding
}

// Normalize converts a wire patch into its typed form, silently
// dropping malformed holding rows.
func (p PatchRequest) Normalize() Patch {
	patch := Patch{
		Institution: p.Institution,
		AccountType: p.AccountType,
		Name:        p.Name,
		Balance:     p.Balance,
		AddHoldings: NormalizeAll(p.AddHoldings),
	}
	if p.Holdings != nil {
		replaced := NormalizeAll(*p.Holdings)
		patch.Holdings = &replaced
	}
	return patch
}

// Filters is a conjunction of list predicates; a record must satisfy
// every supplied filter.
type Filters struct {
	Institution string   // exact match
	AccountType string   // exact match
	Name        string   // case-insensitive substring
	MinBalance  *float64 // numeric floor
}

// Seed returns the fixed example accounts written on first access when
// the backing file does not exist.
func Seed() []InvestmentAccount {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return []InvestmentAccount{
		{
			ID:          "acct-1",
			Institution: "Charles Schwab",
			AccountType: "Brokerage",
			Name:        "Growth",
			Balance:     25000,
			Holdings: []Holding{
				{Symbol: "AAPL", Quantity: 10, AvgPrice: 175, Sector: "Technology"},
				{Symbol: "MSFT", Quantity: 5, AvgPrice: 320, Sector: "Technology"},
				{Symbol: "VTI", Quantity: 20, AvgPrice: 210, Sector: "Index"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "acct-2",
			Institution: "Fidelity",
			AccountType: "Roth IRA",
			Name:        "Retirement",
			Balance:     18000,
			Holdings: []Holding{
				{Symbol: "VOO", Quantity: 15, AvgPrice: 400, Sector: "Index"},
				{Symbol: "NVDA", Quantity: 2, AvgPrice: 650, Sector: "Technology"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
