package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedAccount creates an identity and its profile record, returning the
// assigned id. Most repository tests need both because of the foreign keys.
func seedAccount(t *testing.T, db *sqlite.DB, email, displayName string, role domain.Role) string {
	t.Helper()
	ctx := context.Background()

	identity := &domain.Identity{Email: email, PasswordHash: "hashedpw"}
	if err := db.Identities().Create(ctx, identity); err != nil {
		t.Fatalf("create identity: %v", err)
	}

	account := &domain.Account{
		ID:          identity.ID,
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}
	if err := db.Accounts().Create(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return identity.ID
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations a second time must be a no-op.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := sqlite.New(filepath.Join(t.TempDir(), "missing", "nested", "test.db"))
	if err == nil {
		t.Fatal("expected error for unreachable database path")
	}
}
