package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Action names a mutation the model wants performed.
type Action string

const (
	ActionCreateAccount Action = "createInvestmentAccount"
	ActionUpdateAccount Action = "updateInvestmentAccount"
	ActionDeleteAccount Action = "deleteInvestmentAccount"
)

// PendingAction describes a proposed mutation awaiting explicit user
// confirmation. It lives only in the message stream and client state;
// nothing is persisted until the client calls the real HTTP endpoint.
type PendingAction struct {
	ID                   string         `json:"id"`
	Type                 string         `json:"type"` // always "proposed-action"
	Action               Action         `json:"action"`
	Payload              map[string]any `json:"payload"`
	RequiresConfirmation bool           `json:"requiresConfirmation"` // always true
}

// NewPendingAction builds a pending action descriptor.
func NewPendingAction(action Action, payload map[string]any) PendingAction {
	return PendingAction{
		ID:                   uuid.NewString(),
		Type:                 "proposed-action",
		Action:               action,
		Payload:              payload,
		RequiresConfirmation: true,
	}
}

// ProposalTools builds the propose-only tool set. Each tool returns a
// pending action and performs no side effect; the real mutation
// endpoints are reachable only from the confirmed client path, never
// from the registry.
func ProposalTools() []Tool {
	return []Tool{
		proposeTool(
			"proposeCreateInvestmentAccount",
			"Propose creating a new investment account. Provide institution, accountType, name, balance and optional holdings in the payload. The user must confirm before anything is created.",
			ActionCreateAccount,
			false,
		),
		proposeTool(
			"proposeUpdateInvestmentAccount",
			"Propose updating an existing investment account by id. Provide the account id and the fields to change (balance, name, holdings to replace, addHoldings to append). The user must confirm before anything changes.",
			ActionUpdateAccount,
			true,
		),
		proposeTool(
			"proposeDeleteInvestmentAccount",
			"Propose deleting an investment account by id. The user must confirm before anything is deleted.",
			ActionDeleteAccount,
			true,
		),
	}
}

func proposeTool(name, description string, action Action, requireID bool) Tool {
	properties := map[string]*genai.Schema{
		"payload": {
			Type:        genai.TypeObject,
			Description: "The fields of the proposed mutation, shown to the user for editing before confirmation.",
		},
	}
	var required []string
	if requireID {
		properties["id"] = &genai.Schema{
			Type:        genai.TypeString,
			Description: "The id of the target account, e.g. acct-2.",
		}
		required = []string{"id"}
	}

	return &toolFunc{
		decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		},
		fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			payload, _ := args["payload"].(map[string]any)
			if payload == nil {
				payload = map[string]any{}
			}
			if requireID {
				targetID, ok := args["id"].(string)
				if !ok || targetID == "" {
					return errorResponse(id, name, fmt.Errorf("account id is required"))
				}
				payload["id"] = targetID
			}

			pending := NewPendingAction(action, payload)
			return &genai.FunctionResponse{
				ID:   id,
				Name: name,
				Response: map[string]any{
					"pendingAction": pending,
				},
			}
		},
	}
}
