package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/antoniostano/luna/internal/session"
)

// MockProvider provides deterministic local replies for development.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Configured() bool { return true }

func (p *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var last string
	userTurns := 0
	for _, t := range req.Messages {
		if t.Role == session.RoleUser {
			userTurns++
			last = strings.TrimSpace(t.Content)
		}
	}
	if last == "" {
		last = "…"
	}
	return fmt.Sprintf("Te escucho ✨ (%d): %s", userTurns, last), nil
}
