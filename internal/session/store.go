// Package session keeps the ordered conversation history of each Instagram
// user. A session exists from the user's first message until it is reset.
package session

import (
	"context"
	"errors"
	"time"
)

// Role tags who spoke a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrNotFound = errors.New("session not found")

// Turn is one message of a conversation. Turns are never modified after
// they are appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists per-user turn sequences. Insertion order is chronological
// order and is replayed verbatim to the completion endpoint.
type Store interface {
	// AppendUserTurn creates the session when absent.
	AppendUserTurn(ctx context.Context, userID, text string) error
	// AppendAssistantTurn returns ErrNotFound when the session does not exist.
	AppendAssistantTurn(ctx context.Context, userID, text string) error
	// Reset discards the whole session. Resetting an unknown user is a no-op.
	Reset(ctx context.Context, userID string) error
	// History returns a copy of the user's turns, empty when there is none.
	History(ctx context.Context, userID string) ([]Turn, error)
	Users(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
