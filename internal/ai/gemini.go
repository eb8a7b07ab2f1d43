package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements ChatCompleter using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Model returns the default model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// CompleteChat maps system messages onto the model's system instruction and sends
// the remaining messages as ordered text parts.
func (p *GeminiProvider) CompleteChat(ctx context.Context, model string, messages []Message) (string, error) {
	system, parts := splitGeminiMessages(messages)
	if len(parts) == 0 {
		return "", &TransportError{Provider: "gemini", Err: errors.New("no user content to send")}
	}
	if model == "" {
		model = p.model
	}
	gm := p.client.GenerativeModel(model)

	// Force JSON response for structured parsing.
	gm.ResponseMIMEType = "application/json"
	gm.SetTemperature(0.4)
	if len(system) > 0 {
		gm.SystemInstruction = &genai.Content{Parts: system}
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", geminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &TransportError{Provider: "gemini", Err: errEmptyChoices}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", &TransportError{Provider: "gemini", Err: errors.New("api returned empty text parts")}
	}
	return text.String(), nil
}

// splitGeminiMessages separates system messages from the conversation turns,
// keeping the order of each.
func splitGeminiMessages(messages []Message) (system, parts []genai.Part) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	return system, parts
}

func geminiError(err error) error {
	te := &TransportError{Provider: "gemini", Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		te.StatusCode = gerr.Code
		te.Body = gerr.Message
	}
	return te
}
