package session

import (
	"context"
	"strings"
)

// Options selects a Store backend.
type Options struct {
	DatabaseURL string
	SQLitePath  string
}

// NewStore creates a postgres-backed store when a database URL is set, a
// SQLite store when a path is set, and an in-memory store otherwise.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	if url := strings.TrimSpace(opts.DatabaseURL); url != "" {
		return NewPostgresStore(ctx, url)
	}
	if path := strings.TrimSpace(opts.SQLitePath); path != "" {
		return NewSQLiteStore(ctx, path)
	}
	return NewMemoryStore(), nil
}

// Backend names the concrete store for health output.
func Backend(s Store) string {
	switch s.(type) {
	case *PostgresStore:
		return "postgres"
	case *SQLiteStore:
		return "sqlite"
	case *MemoryStore:
		return "memory"
	default:
		return "custom"
	}
}
