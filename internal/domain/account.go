package domain

import (
	"context"
	"time"
)

// Role determines what a signed-in account is allowed to do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is the profile record kept for every user, keyed by the opaque
// id the identity directory assigned at creation. Accounts are never
// removed; deletion flips the Deleted flag so the same email can later be
// reactivated with its original credentials.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Deleted     bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AccountRepository defines persistence operations for profile records.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	// GetByEmail returns the record matching email regardless of its
	// deleted flag. Soft-deleted records are part of the lookup on purpose:
	// the lifecycle manager needs them to decide between reactivation and
	// creation.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ListActive(ctx context.Context) ([]Account, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	SoftDelete(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id, displayName string) error
}

// Identity is a credential entry in the identity directory. Entries are
// never deleted, so a soft-deleted account's email stays registered and
// its password keeps working after reactivation.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// IdentityDirectory defines the credential store. It fails independently
// of the profile store; the two are never covered by one transaction.
type IdentityDirectory interface {
	Create(ctx context.Context, identity *Identity) error
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	// EmailRegistered reports whether the directory already knows this
	// email, deleted profiles included.
	EmailRegistered(ctx context.Context, email string) (bool, error)
}
