package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// EmailAvailability is the advisory result of CheckEmailAvailability.
type EmailAvailability string

const (
	// EmailAvailable means no record of the email exists anywhere.
	EmailAvailable EmailAvailability = "available"
	// EmailReactivatable means a soft-deleted account holds the email and
	// creating with it will reactivate that account.
	EmailReactivatable EmailAvailability = "reactivatable"
	// EmailActive means an active account already uses the email.
	EmailActive EmailAvailability = "active"
	// EmailZombie means the identity directory knows the email but no
	// profile record exists. The desync cannot be healed from here; the
	// admin needs a different email.
	EmailZombie EmailAvailability = "zombie"
)

// CreateResult reports the outcome of CreateOrReactivate.
type CreateResult struct {
	Account *domain.Account
	// Reactivated is true when an existing soft-deleted account was
	// brought back instead of a new one being created. In that case the
	// submitted password was ignored and the original credentials still
	// apply.
	Reactivated bool
}

// AccountService is the admin-facing account lifecycle manager. It
// coordinates the identity directory and the profile store, which fail
// independently; soft-delete-and-reactivate keeps the two eventually
// consistent without a shared transaction.
type AccountService struct {
	identities domain.IdentityDirectory
	accounts   domain.AccountRepository
	counters   domain.CounterRepository
	bcryptCost int

	// createMu serializes create/reactivate submissions. A second submit
	// arriving mid-flight queues behind the first and then fails the
	// re-check instead of racing it into a duplicate account.
	createMu sync.Mutex
}

// NewAccountService creates a new AccountService.
func NewAccountService(identities domain.IdentityDirectory, accounts domain.AccountRepository, counters domain.CounterRepository, bcryptCost int) *AccountService {
	return &AccountService{
		identities: identities,
		accounts:   accounts,
		counters:   counters,
		bcryptCost: bcryptCost,
	}
}

// CreateOrReactivate provisions an account for the email. An existing
// soft-deleted account is reactivated in place with its counter reset;
// otherwise a fresh identity, profile record, and counter are created.
// Password validation happens before any store is touched.
func (s *AccountService) CreateOrReactivate(ctx context.Context, email, displayName, password string) (*CreateResult, error) {
	if email == "" || displayName == "" {
		return nil, fmt.Errorf("%w: email and display name are required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up account: %w", err)
	}

	if existing != nil {
		if !existing.Deleted {
			return nil, domain.ErrEmailAlreadyActive
		}
		return s.reactivate(ctx, existing, displayName)
	}

	return s.create(ctx, email, displayName, password)
}

// reactivate flips the deleted flag back, takes the new display name, and
// resets the counter. The identity entry is untouched, so the original
// password keeps working; the submitted one is deliberately not applied.
func (s *AccountService) reactivate(ctx context.Context, account *domain.Account, displayName string) (*CreateResult, error) {
	if err := s.accounts.Reactivate(ctx, account.ID, displayName); err != nil {
		return nil, fmt.Errorf("reactivate account: %w", err)
	}
	if err := s.counters.Reset(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("reset counter: %w", err)
	}

	reactivated, err := s.accounts.GetByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("get reactivated account: %w", err)
	}
	return &CreateResult{Account: reactivated, Reactivated: true}, nil
}

func (s *AccountService) create(ctx context.Context, email, displayName, password string) (*CreateResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{Email: email, PasswordHash: string(hash)}
	if err := s.identities.Create(ctx, identity); err != nil {
		// ErrEmailInUse here means a zombie: the directory knows the email
		// but no profile record exists. Surfaced as-is to the admin.
		return nil, err
	}

	account := &domain.Account{
		ID:          identity.ID,
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleUser,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// The identity write already happened; a failure here leaves a
		// zombie the availability check will flag on the next attempt.
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.counters.Reset(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("provision counter: %w", err)
	}

	return &CreateResult{Account: account}, nil
}

// SeedAdmin provisions the bootstrap admin account on startup. Idempotent:
// an email already known to the identity directory is left alone.
func (s *AccountService) SeedAdmin(ctx context.Context, email, displayName, password string) error {
	if email == "" {
		return nil
	}

	registered, err := s.identities.EmailRegistered(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin email: %w", err)
	}
	if registered {
		return nil
	}

	if len(password) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	identity := &domain.Identity{Email: email, PasswordHash: string(hash)}
	if err := s.identities.Create(ctx, identity); err != nil {
		return fmt.Errorf("create admin identity: %w", err)
	}

	account := &domain.Account{
		ID:          identity.ID,
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleAdmin,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	return s.counters.Reset(ctx, account.ID)
}

// Rename updates the display name only. Email and role are immutable
// through this operation. Unchanged names are a no-op.
func (s *AccountService) Rename(ctx context.Context, id, displayName string) (*domain.Account, error) {
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.DisplayName == displayName {
		return account, nil
	}

	if err := s.accounts.UpdateDisplayName(ctx, id, displayName); err != nil {
		return nil, fmt.Errorf("rename account: %w", err)
	}
	return s.accounts.GetByID(ctx, id)
}

// SoftDelete marks the account deleted. The identity entry and the counter
// stay in place so the account can be reactivated later with its original
// credentials. Admin accounts are never a valid target.
func (s *AccountService) SoftDelete(ctx context.Context, id string) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.IsAdmin() {
		return fmt.Errorf("%w: admin accounts cannot be deleted", domain.ErrPermissionDenied)
	}
	if account.Deleted {
		return domain.ErrNotFound
	}

	return s.accounts.SoftDelete(ctx, id)
}

// ListActive returns all non-deleted accounts in creation order.
func (s *AccountService) ListActive(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.ListActive(ctx)
}

// CheckEmailAvailability is the advisory pre-creation check. It is racy by
// nature (time-of-check vs time-of-use); CreateOrReactivate re-verifies
// and is the only authoritative guard.
func (s *AccountService) CheckEmailAvailability(ctx context.Context, email string) (EmailAvailability, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("look up account: %w", err)
	}

	if account != nil {
		if account.Deleted {
			return EmailReactivatable, nil
		}
		return EmailActive, nil
	}

	registered, err := s.identities.EmailRegistered(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check identity directory: %w", err)
	}
	if registered {
		return EmailZombie, nil
	}
	return EmailAvailable, nil
}
