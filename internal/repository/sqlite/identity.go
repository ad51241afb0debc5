package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/google/uuid"
)

// IdentityRepository implements domain.IdentityDirectory using SQLite.
type IdentityRepository struct {
	db *sql.DB
}

// NewIdentityRepository creates a new SQLite-backed IdentityRepository.
func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{db: db.SqlDB}
}

// Create registers a new credential entry and assigns it an opaque id.
// Returns domain.ErrEmailInUse when the email is already registered,
// whether or not a profile record exists for it.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		id, identity.Email, identity.PasswordHash, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrEmailInUse
		}
		return storeErr("insert identity", err)
	}

	identity.ID = id
	identity.CreatedAt = now
	return nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	identity := &domain.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM identities WHERE email = ?`, email,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("query identity by email", err)
	}
	return identity, nil
}

func (r *IdentityRepository) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM identities WHERE email = ?)", email,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("check identity email", err)
	}
	return exists, nil
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
