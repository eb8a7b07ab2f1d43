package aiusage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"myitinerary/internal/types"
)

// Store handles ai_usage and ai_calls persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func currentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

// UseToken atomically checks the monthly quota and deducts one token.
// It resets the counter to allowance when last_reset_month is behind the current month.
// Returns ErrInsufficientTokens when 0 rows are updated (quota exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid string, allowance int) error {
	now := currentMonth()

	tag, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, now, allowance, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureUser inserts a new ai_usage row for uid with the given allowance.
// If the row already exists the insert is silently skipped (ON CONFLICT DO NOTHING).
func (s *Store) EnsureUser(ctx context.Context, uid string, allowance int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, allowance, currentMonth())
	return err
}

// Remaining returns the tokens left this month, treating a stale month as a full allowance.
func (s *Store) Remaining(ctx context.Context, uid string, allowance int) (int, error) {
	var remaining int
	var month string
	err := s.db.QueryRow(ctx, `
		SELECT tokens_remaining, last_reset_month FROM ai_usage WHERE uid = $1
	`, uid).Scan(&remaining, &month)
	if errors.Is(err, pgx.ErrNoRows) {
		return allowance, nil
	}
	if err != nil {
		return 0, err
	}
	if month < currentMonth() {
		return allowance, nil
	}
	return remaining, nil
}

func (s *Store) InsertCall(ctx context.Context, c Call) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_calls (id, uid, operation, provider, model, outcome, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(c.ID), c.UID, c.Operation, c.Provider, c.Model, c.Outcome, c.Latency.Milliseconds(), c.CreatedAt)
	return err
}

// RecentCalls lists the latest calls for uid, newest first.
func (s *Store) RecentCalls(ctx context.Context, uid string, limit int) ([]Call, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, uid, operation, provider, model, outcome, latency_ms, created_at
		FROM ai_calls WHERE uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		var id string
		var latencyMs int64
		if err := rows.Scan(&id, &c.UID, &c.Operation, &c.Provider, &c.Model, &c.Outcome, &latencyMs, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = types.ID(id)
		c.Latency = time.Duration(latencyMs) * time.Millisecond
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
