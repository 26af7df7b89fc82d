package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// maxSteps bounds the tool-call loop for one user turn.
const maxSteps = 5

// Message is one entry of the client-supplied conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// StreamEvent is one event of the streamed chat response.
type StreamEvent struct {
	Type          string         `json:"type"` // text, tool-call, tool-result, proposed-action, done, error
	Text          string         `json:"text,omitempty"`
	ToolName      string         `json:"toolName,omitempty"`
	ToolArgs      map[string]any `json:"toolArgs,omitempty"`
	ToolResult    map[string]any `json:"toolResult,omitempty"`
	PendingAction *PendingAction `json:"pendingAction,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Service runs the chat orchestration loop against the model.
type Service struct {
	client   *genai.Client
	model    string
	registry *Registry
	sessions *SessionStore
	log      zerolog.Logger
}

// NewService creates a chat service. A nil client leaves the service
// unavailable; the handler reports that as a service error.
func NewService(client *genai.Client, model string, registry *Registry, sessions *SessionStore, log zerolog.Logger) *Service {
	return &Service{
		client:   client,
		model:    model,
		registry: registry,
		sessions: sessions,
		log:      log.With().Str("component", "chat").Logger(),
	}
}

// Available reports whether a model client is configured.
func (s *Service) Available() bool { return s.client != nil }

// Stream runs one user turn: it sends the latest message with the
// prior history, dispatches any tool calls through the registry, and
// emits stream events until the model produces a plain text reply or
// the step bound is hit.
func (s *Service) Stream(ctx context.Context, sessionID string, messages []Message, emit func(StreamEvent)) error {
	if !s.Available() {
		return fmt.Errorf("chat model is not configured")
	}
	if len(messages) == 0 {
		return fmt.Errorf("no messages supplied")
	}

	history := toContents(messages[:len(messages)-1])
	chat, err := s.client.Chats.Create(ctx, s.model, s.config(), history)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	last := messages[len(messages)-1]
	parts := []*genai.Part{{Text: last.Content}}

	var finalText string
	for step := 0; step < maxSteps; step++ {
		resp, err := chat.Send(ctx, parts...)
		if err != nil {
			return fmt.Errorf("model call failed: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return fmt.Errorf("empty response from model")
		}

		var calls []*genai.FunctionCall
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.FunctionCall != nil {
				calls = append(calls, part.FunctionCall)
			} else if part.Text != "" {
				finalText += part.Text
			}
		}

		if len(calls) == 0 {
			break
		}

		parts = parts[:0]
		for _, call := range calls {
			emit(StreamEvent{Type: "tool-call", ToolName: call.Name, ToolArgs: call.Args})
			s.log.Debug().Str("tool", call.Name).Msg("Dispatching tool call")

			fresp := s.registry.Dispatch(ctx, call)
			if pending, ok := pendingFromResponse(fresp); ok {
				emit(StreamEvent{Type: "proposed-action", ToolName: call.Name, PendingAction: pending})
			} else {
				emit(StreamEvent{Type: "tool-result", ToolName: call.Name, ToolResult: fresp.Response})
			}
			parts = append(parts, &genai.Part{FunctionResponse: fresp})
		}
	}

	if finalText != "" {
		emit(StreamEvent{Type: "text", Text: finalText})
	}
	emit(StreamEvent{Type: "done"})

	if s.sessions != nil {
		transcript := append(messages, Message{Role: "assistant", Content: finalText})
		if err := s.sessions.Save(sessionID, transcript); err != nil {
			// Transcript persistence is best effort.
			s.log.Warn().Err(err).Str("session", sessionID).Msg("Failed to save session transcript")
		}
	}
	return nil
}

func (s *Service) config() *genai.GenerateContentConfig {
	temperature := float32(0.7)
	return &genai.GenerateContentConfig{
		Temperature: &temperature,
		Tools: []*genai.Tool{
			{FunctionDeclarations: s.registry.Declarations()},
		},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
}

func toContents(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}

func pendingFromResponse(fresp *genai.FunctionResponse) (*PendingAction, bool) {
	raw, found := fresp.Response["pendingAction"]
	if !found {
		return nil, false
	}
	pending, ok := raw.(PendingAction)
	if !ok {
		return nil, false
	}
	return &pending, true
}
