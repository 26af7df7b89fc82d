// Package chat implements the LLM orchestration loop and the tool
// registry it calls into. Query tools read the stores directly;
// mutating intents are only ever expressed as propose-* tools that
// return a pending action for the client to confirm. The registry
// exposes no real mutating capability, so confirmation is enforced by
// construction rather than by prompt convention.
package chat

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Tool is a callable, schema-declared function exposed to the model.
type Tool interface {
	// Declaration describes this tool to the model.
	Declaration() *genai.FunctionDeclaration
	// Call executes the tool with the model-supplied arguments.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// toolFunc adapts a declaration plus a function into a Tool.
type toolFunc struct {
	decl *genai.FunctionDeclaration
	fn   func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (t *toolFunc) Declaration() *genai.FunctionDeclaration { return t.decl }
func (t *toolFunc) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return t.fn(ctx, id, args)
}

// Registry holds the tool set consumed by the orchestration loop.
type Registry struct {
	tools []Tool
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	return &Registry{tools: tools}
}

// Declarations returns the function declarations for every tool.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	return decls
}

// Dispatch routes a function call to the matching tool. Unknown
// function names produce an error response rather than an error: the
// model gets to see what went wrong and recover.
func (r *Registry) Dispatch(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	for _, t := range r.tools {
		if t.Declaration().Name == call.Name {
			return t.Call(ctx, call.ID, call.Args)
		}
	}
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf("unknown function %s", call.Name),
		},
	}
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func outputResponse(id, name string, output any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}
