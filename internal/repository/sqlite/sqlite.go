package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle and hands out the repositories that share it.
// The identity directory, profile store, and counter store are separate
// tables with no cross-store transactions, mirroring the independently
// failing backends they stand in for.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all unapplied schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Identities returns the identity directory backed by this database.
func (db *DB) Identities() *IdentityRepository {
	return NewIdentityRepository(db)
}

// Accounts returns the profile record store backed by this database.
func (db *DB) Accounts() *AccountRepository {
	return NewAccountRepository(db)
}

// Counters returns the counter store backed by this database.
func (db *DB) Counters() *CounterRepository {
	return NewCounterRepository(db)
}

// storeErr classifies a driver failure as a transient store outage so
// callers can dispatch on domain.ErrStoreUnavailable while keeping the
// underlying cause in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStoreUnavailable, err))
}
