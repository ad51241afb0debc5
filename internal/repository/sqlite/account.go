package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
)

// AccountRepository implements domain.AccountRepository using SQLite.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new SQLite-backed AccountRepository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db.SqlDB}
}

const accountColumns = "id, email, display_name, role, deleted, deleted_at, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.Role, &a.Deleted,
		&a.DeletedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, display_name, role, deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		account.ID, account.Email, account.DisplayName, account.Role, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrEmailAlreadyActive
		}
		return storeErr("insert account", err)
	}

	account.Deleted = false
	account.DeletedAt = nil
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("query account by id", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	// Prefer the active record when an active and a soft-deleted row share
	// the email; otherwise return the most recently deleted one.
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+` FROM accounts WHERE email = ?
		 ORDER BY deleted ASC, updated_at DESC LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("query account by email", err)
	}
	return account, nil
}

func (r *AccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+` FROM accounts
		 WHERE deleted = 0 ORDER BY created_at, id`)
	if err != nil {
		return nil, storeErr("list active accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr("scan account", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET display_name = ?, updated_at = ? WHERE id = ?",
		displayName, time.Now().UTC(), id,
	)
	if err != nil {
		return storeErr("update display name", err)
	}
	return requireRowAffected(result)
}

func (r *AccountRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET deleted = 1, deleted_at = ?, updated_at = ?
		 WHERE id = ? AND deleted = 0`,
		now, now, id,
	)
	if err != nil {
		return storeErr("soft delete account", err)
	}
	return requireRowAffected(result)
}

func (r *AccountRepository) Reactivate(ctx context.Context, id, displayName string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET deleted = 0, deleted_at = NULL, display_name = ?, updated_at = ?
		 WHERE id = ? AND deleted = 1`,
		displayName, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Another active account claimed the email in the meantime.
			return domain.ErrEmailAlreadyActive
		}
		return storeErr("reactivate account", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
