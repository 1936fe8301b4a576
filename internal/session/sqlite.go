package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps sessions in a local SQLite file, surviving restarts of a
// single relay process.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite at %s: %w", path, err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_session_turns_user_seq ON session_turns(user_id, seq);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AppendUserTurn(ctx context.Context, userID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_turns (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(RoleUser), text, time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append user turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendAssistantTurn(ctx context.Context, userID, text string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_turns (user_id, role, content, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM session_turns WHERE user_id = ?)`,
		userID, string(RoleAssistant), text, time.Now().UTC().UnixNano(), userID,
	)
	if err != nil {
		return fmt.Errorf("append assistant turn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append assistant turn: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_turns WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, userID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM session_turns WHERE user_id = ? ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			role    string
			content string
			created int64
		)
		if err := rows.Scan(&role, &content, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		turns = append(turns, Turn{Role: Role(role), Content: content, CreatedAt: time.Unix(0, created).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return turns, nil
}

func (s *SQLiteStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM session_turns ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
