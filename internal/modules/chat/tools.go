package chat

import (
	"context"

	"google.golang.org/genai"

	"github.com/olufemi424/agentic-ui/internal/modules/investments"
	"github.com/olufemi424/agentic-ui/internal/modules/items"
)

// QueryTools builds the read-only tool set over the two stores. These
// run directly, without confirmation.
func QueryTools(itemsRepo *items.Repository, investmentsRepo *investments.Repository) []Tool {
	return []Tool{
		listItemsTool(itemsRepo),
		recommendItemTool(itemsRepo),
		listInvestmentsTool(investmentsRepo),
		investmentInsightsTool(investmentsRepo),
	}
}

func listItemsTool(repo *items.Repository) Tool {
	return &toolFunc{
		decl: &genai.FunctionDeclaration{
			Name:        "listItems",
			Description: "List all items from the items collection, optionally filtered by a search query over title, description and tags.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "Optional case-insensitive search query.",
					},
				},
			},
		},
		fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			query, _ := args["query"].(string)
			var (
				result []items.Item
				err    error
			)
			if query != "" {
				result, err = repo.Search(ctx, query)
			} else {
				result, err = repo.List(ctx)
			}
			if err != nil {
				return errorResponse(id, "listItems", err)
			}
			return outputResponse(id, "listItems", result)
		},
	}
}

func recommendItemTool(repo *items.Repository) Tool {
	return &toolFunc{
		decl: &genai.FunctionDeclaration{
			Name:        "recommendItem",
			Description: "Recommend a single item to the user (the most recently updated one).",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
		fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			item, err := repo.Recommend(ctx)
			if err != nil {
				return errorResponse(id, "recommendItem", err)
			}
			if item == nil {
				return outputResponse(id, "recommendItem", "no items available")
			}
			return outputResponse(id, "recommendItem", item)
		},
	}
}

func listInvestmentsTool(repo *investments.Repository) Tool {
	return &toolFunc{
		decl: &genai.FunctionDeclaration{
			Name:        "listInvestments",
			Description: "List investment accounts. All filters are optional and combine as a conjunction.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"institution": {
						Type:        genai.TypeString,
						Description: "Exact institution name, e.g. Fidelity.",
					},
					"accountType": {
						Type:        genai.TypeString,
						Description: "Exact account type, e.g. Brokerage or Roth IRA.",
					},
					"name": {
						Type:        genai.TypeString,
						Description: "Case-insensitive substring of the account name.",
					},
					"minBalance": {
						Type:        genai.TypeNumber,
						Description: "Minimum account balance.",
					},
				},
			},
		},
		fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			filters := investments.Filters{}
			if s, ok := args["institution"].(string); ok {
				filters.Institution = s
			}
			if s, ok := args["accountType"].(string); ok {
				filters.AccountType = s
			}
			if s, ok := args["name"].(string); ok {
				filters.Name = s
			}
			if n, ok := args["minBalance"].(float64); ok {
				filters.MinBalance = &n
			}

			accounts, err := repo.List(ctx, filters)
			if err != nil {
				return errorResponse(id, "listInvestments", err)
			}
			return outputResponse(id, "listInvestments", accounts)
		},
	}
}

func investmentInsightsTool(repo *investments.Repository) Tool {
	return &toolFunc{
		decl: &genai.FunctionDeclaration{
			Name:        "getInvestmentInsights",
			Description: "Compute portfolio insights: total balance, balances by institution, position values by sector, and the largest single holding.",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
		fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			insights, err := repo.Insights(ctx)
			if err != nil {
				return errorResponse(id, "getInvestmentInsights", err)
			}
			return outputResponse(id, "getInvestmentInsights", insights)
		},
	}
}
