package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
)

// CounterRepository implements domain.CounterRepository using SQLite.
type CounterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new SQLite-backed CounterRepository.
func NewCounterRepository(db *DB) *CounterRepository {
	return &CounterRepository{db: db.SqlDB}
}

func (r *CounterRepository) Get(ctx context.Context, userID string) (*domain.Counter, error) {
	c := &domain.Counter{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, count, last_updated, started_at
		 FROM counters WHERE user_id = ?`, userID,
	).Scan(&c.UserID, &c.Count, &c.LastUpdated, &c.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("query counter", err)
	}
	return c, nil
}

// Reset provisions the counter or overwrites it back to the initial count.
// The first-progress timestamp is cleared so statistics start over.
func (r *CounterRepository) Reset(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO counters (user_id, count, last_updated, started_at)
		 VALUES (?, ?, ?, NULL)
		 ON CONFLICT(user_id) DO UPDATE SET
		   count = excluded.count, last_updated = excluded.last_updated, started_at = NULL`,
		userID, domain.InitialCount, now,
	)
	if err != nil {
		return storeErr("reset counter", err)
	}
	return nil
}

// Decrement lowers the count by one, guarded in SQL so the stored value
// can never go negative regardless of concurrent callers. The first
// successful decrement stamps started_at. The updated row comes back from
// the same statement via RETURNING: each caller sees the value its own
// decrement produced, so exactly one of two concurrent callers taking the
// counter through zero observes count == 0.
func (r *CounterRepository) Decrement(ctx context.Context, userID string) (*domain.Counter, bool, error) {
	now := time.Now().UTC()
	c := &domain.Counter{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`UPDATE counters SET
		   count = count - 1,
		   last_updated = ?,
		   started_at = COALESCE(started_at, ?)
		 WHERE user_id = ? AND count > 0
		 RETURNING count, last_updated, started_at`,
		now, now, userID,
	).Scan(&c.Count, &c.LastUpdated, &c.StartedAt)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, storeErr("decrement counter", err)
	}

	// No row matched: the counter is already at zero (or missing).
	counter, err := r.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return counter, false, nil
}
