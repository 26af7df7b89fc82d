// Package speech provides the voice glue for the chat UI: audio in,
// transcript out, and text to synthesized speech.
package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, mimeType string, err error)
}

const (
	transcribeModel = "gemini-2.5-flash"
	ttsModel        = "gemini-2.5-flash-preview-tts"
	ttsVoice        = "Kore"
)

// Service implements both directions against the model API. The
// client may be nil; the handlers report the feature as unavailable.
type Service struct {
	client *genai.Client
	log    zerolog.Logger
}

func NewService(client *genai.Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("component", "speech").Logger(),
	}
}

// Available reports whether a model client is configured.
func (s *Service) Available() bool { return s.client != nil }

func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("speech model is not configured")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio supplied")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: "Transcribe this audio. Return only the spoken text."},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	resp, err := s.client.Models.GenerateContent(ctx, transcribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty transcription response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return strings.TrimSpace(text.String()), nil
}

func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if !s.Available() {
		return nil, "", fmt.Errorf("speech model is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("no text supplied")
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: ttsVoice},
			},
		},
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	}}

	resp, err := s.client.Models.GenerateContent(ctx, ttsModel, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("empty synthesis response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", fmt.Errorf("synthesis response contained no audio")
}
