package aiusage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles ai_usage persistence.
type Store struct {
	db        *pgxpool.Pool
	allowance int
	now       func() time.Time
}

// NewStore returns a Store granting allowance tokens per month. A
// non-positive allowance falls back to DefaultTokens.
func NewStore(db *pgxpool.Pool, allowance int) *Store {
	if allowance <= 0 {
		allowance = DefaultTokens
	}
	return &Store{db: db, allowance: allowance, now: time.Now}
}

func (s *Store) month() string {
	return s.now().Format(monthLayout)
}

// UseToken atomically checks the monthly quota and deducts one token.
// The counter is reset to the allowance when last_reset_month is behind the
// current month. Returns ErrInsufficientTokens when no row is updated
// (quota exhausted or caller absent).
func (s *Store) UseToken(ctx context.Context, uid string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, s.month(), s.allowance, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureUser inserts a fresh row for uid. Existing rows are left alone.
func (s *Store) EnsureUser(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, s.allowance, s.month())
	return err
}

// Log records a consumed token.
func (s *Store) Log(ctx context.Context, uid, operation string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO ai_usage_log (uid, operation) VALUES ($1, $2)`, uid, operation)
	return err
}

// Get returns the caller's usage for the current month. A caller with no row,
// or whose row is from an earlier month, has the full allowance.
func (s *Store) Get(ctx context.Context, uid string) (Usage, error) {
	month := s.month()
	u := Usage{UID: uid, Remaining: s.allowance, Allowance: s.allowance, Month: month}

	var (
		remaining int
		last      string
	)
	err := s.db.QueryRow(ctx,
		`SELECT tokens_remaining, last_reset_month FROM ai_usage WHERE uid = $1`, uid,
	).Scan(&remaining, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}
	if last == month {
		u.Remaining = remaining
	}
	return u, nil
}
