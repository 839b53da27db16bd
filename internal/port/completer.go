package port

import (
	"context"
	"encoding/json"
)

// Completer is the single point of contact with the generative model: one
// system prompt, one user payload, one structured JSON response.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error)

func (f CompleterFunc) Complete(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error) {
	return f(ctx, systemPrompt, payload)
}
