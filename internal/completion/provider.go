package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antoniostano/luna/internal/session"
)

var ErrMissingCredential = errors.New("completion api key is not configured")

// Request is one non-streaming chat completion call.
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []session.Turn
	Temperature  float64
}

// Provider generates the assistant reply for a conversation.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Configured reports whether the provider has the credential it needs.
	Configured() bool
	Name() string
}

// ProviderConfig controls provider construction.
type ProviderConfig struct {
	Mode    string
	APIKey  string
	BaseURL string
}

func NewProvider(cfg ProviderConfig) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "openai"
	}

	switch mode {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported completion mode %q", cfg.Mode)
	}
}
