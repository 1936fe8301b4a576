package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in PostgreSQL so several relay processes can
// share them. Row order is given by the seq column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_turns (
			seq BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_turns_user_seq ON session_turns (user_id, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) AppendUserTurn(ctx context.Context, userID, text string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_turns (user_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
		userID, string(RoleUser), text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append user turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendAssistantTurn(ctx context.Context, userID, text string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO session_turns (user_id, role, content, created_at)
		 SELECT $1::text, $2::text, $3::text, $4::timestamptz
		 WHERE EXISTS (SELECT 1 FROM session_turns WHERE user_id=$1)`,
		userID, string(RoleAssistant), text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append assistant turn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_turns WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, userID string) ([]Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content, created_at FROM session_turns WHERE user_id=$1 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t    Turn
			role string
		)
		if err := rows.Scan(&role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		t.Role = Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return turns, nil
}

func (s *PostgresStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM session_turns ORDER BY user_id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
