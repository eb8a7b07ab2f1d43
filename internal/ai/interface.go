package ai

import (
	"context"
)

// ChatCompleter performs a single chat-completion round trip against a remote model.
// This interface allows for swapping providers (OpenAI, Gemini, test stubs) without touching callers.
type ChatCompleter interface {
	// CompleteChat sends the ordered messages to the given model and returns the reply text
	// of the first choice, uninterpreted. An empty model selects the provider default.
	// Every failure is reported as a *TransportError.
	CompleteChat(ctx context.Context, model string, messages []Message) (string, error)
}
