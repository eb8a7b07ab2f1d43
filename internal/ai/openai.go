package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel    = "gpt-4o"

	// maxErrorBody bounds how much of a failed response is kept for diagnostics.
	maxErrorBody = 2048
)

// OpenAIOptions configures an OpenAIClient. Zero values fall back to the defaults above.
type OpenAIOptions struct {
	APIKey     string
	Endpoint   string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client. The API key is not checked here; a missing or
// invalid key surfaces as a 401 TransportError on the first call.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:     opts.APIKey,
		endpoint:   opts.Endpoint,
		model:      opts.Model,
		httpClient: opts.HTTPClient,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultOpenAIEndpoint
	}
	if c.model == "" {
		c.model = DefaultOpenAIModel
	}
	if c.httpClient == nil {
		// Timeout 0 keeps the platform default (no client-side deadline); context
		// cancellation is still honoured via NewRequestWithContext.
		c.httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return c
}

// Model returns the default model used when CompleteChat is called without one.
func (c *OpenAIClient) Model() string {
	return c.model
}

// CompleteChat sends messages to the chat completions endpoint and returns the first choice's content.
func (c *OpenAIClient) CompleteChat(ctx context.Context, model string, messages []Message) (string, error) {
	if model == "" {
		model = c.model
	}
	reqBody, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Provider: "openai", StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var cr chatResponse
	decodeErr := json.Unmarshal(body, &cr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		return "", &TransportError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Body:       truncate(body, maxErrorBody),
			Err:        fmt.Errorf("api error: %s", msg),
		}
	}
	if decodeErr != nil {
		return "", &TransportError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Body:       truncate(body, maxErrorBody),
			Err:        fmt.Errorf("unmarshal response: %w", decodeErr),
		}
	}
	if cr.Error != nil {
		return "", &TransportError{Provider: "openai", StatusCode: resp.StatusCode, Err: fmt.Errorf("api error: %s", cr.Error.Message)}
	}
	if len(cr.Choices) == 0 {
		return "", &TransportError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Body:       truncate(body, maxErrorBody),
			Err:        errEmptyChoices,
		}
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
