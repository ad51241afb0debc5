package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/eakyuz/zikirmatik/internal/domain"
)

func TestCounterRepository_ResetProvisions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := seedAccount(t, db, "counter@example.com", "Counter", domain.RoleUser)

	_, err := db.Counters().Get(ctx, id)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before provisioning, got %v", err)
	}

	if err := db.Counters().Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	counter, err := db.Counters().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if counter.Count != domain.InitialCount {
		t.Fatalf("expected count %d, got %d", domain.InitialCount, counter.Count)
	}
	if counter.StartedAt != nil {
		t.Fatal("expected StartedAt to be nil after reset")
	}
}

func TestCounterRepository_Decrement(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := seedAccount(t, db, "dec@example.com", "Dec", domain.RoleUser)
	if err := db.Counters().Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	counter, changed, err := db.Counters().Decrement(ctx, id)
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if !changed {
		t.Fatal("expected the decrement to apply")
	}
	if counter.Count != domain.InitialCount-1 {
		t.Fatalf("expected count %d, got %d", domain.InitialCount-1, counter.Count)
	}
	if counter.StartedAt == nil {
		t.Fatal("expected first decrement to stamp StartedAt")
	}

	first := *counter.StartedAt
	counter, _, err = db.Counters().Decrement(ctx, id)
	if err != nil {
		t.Fatalf("second Decrement: %v", err)
	}
	if counter.StartedAt == nil || !counter.StartedAt.Equal(first) {
		t.Fatal("expected StartedAt to be stamped once and kept")
	}
}

func TestCounterRepository_DecrementFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := seedAccount(t, db, "floor@example.com", "Floor", domain.RoleUser)
	if err := db.Counters().Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	// Force the counter to 1 so the floor is reachable without 40k updates.
	if _, err := db.SqlDB.ExecContext(ctx, "UPDATE counters SET count = 1 WHERE user_id = ?", id); err != nil {
		t.Fatalf("force count: %v", err)
	}

	counter, changed, err := db.Counters().Decrement(ctx, id)
	if err != nil {
		t.Fatalf("Decrement to zero: %v", err)
	}
	if !changed || counter.Count != 0 {
		t.Fatalf("expected changed decrement to 0, got changed=%v count=%d", changed, counter.Count)
	}

	counter, changed, err = db.Counters().Decrement(ctx, id)
	if err != nil {
		t.Fatalf("Decrement at zero: %v", err)
	}
	if changed {
		t.Fatal("decrement at zero must be a no-op")
	}
	if counter.Count != 0 {
		t.Fatalf("count must stay at 0, got %d", counter.Count)
	}
}

func TestCounterRepository_ResetOverwritesProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := seedAccount(t, db, "over@example.com", "Over", domain.RoleUser)
	if err := db.Counters().Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, _, err := db.Counters().Decrement(ctx, id); err != nil {
		t.Fatalf("Decrement: %v", err)
	}

	if err := db.Counters().Reset(ctx, id); err != nil {
		t.Fatalf("second Reset: %v", err)
	}

	counter, err := db.Counters().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if counter.Count != domain.InitialCount {
		t.Fatalf("expected count %d after reset, got %d", domain.InitialCount, counter.Count)
	}
	if counter.StartedAt != nil {
		t.Fatal("expected reset to clear StartedAt")
	}
}
