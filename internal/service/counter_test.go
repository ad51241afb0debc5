package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/repository/sqlite"
	"github.com/eakyuz/zikirmatik/internal/service"
)

func newTestCounterService(t *testing.T) (*service.CounterService, *service.Broadcaster, string, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)

	accounts := service.NewAccountService(db.Identities(), db.Accounts(), db.Counters(), testBcryptCost)
	created, err := accounts.CreateOrReactivate(context.Background(), "c@x.com", "Counter", "pw123456")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	broadcast := service.NewBroadcaster()
	counters := service.NewCounterService(db.Counters(), broadcast)
	return counters, broadcast, created.Account.ID, db
}

func forceCount(t *testing.T, db *sqlite.DB, userID string, count int) {
	t.Helper()
	if _, err := db.SqlDB.ExecContext(context.Background(),
		"UPDATE counters SET count = ? WHERE user_id = ?", count, userID); err != nil {
		t.Fatalf("force count: %v", err)
	}
}

func TestCounterService_Get_InitialState(t *testing.T) {
	counters, _, userID, _ := newTestCounterService(t)

	state, err := counters.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Remaining != domain.InitialCount {
		t.Fatalf("expected %d remaining, got %d", domain.InitialCount, state.Remaining)
	}
	if state.ProgressPercent != 0 {
		t.Fatalf("expected 0%% progress, got %f", state.ProgressPercent)
	}
	if state.Completed {
		t.Fatal("fresh counter must not be completed")
	}
}

func TestCounterService_Decrement_MonotonicNonIncrease(t *testing.T) {
	counters, _, userID, _ := newTestCounterService(t)
	ctx := context.Background()

	prev := domain.InitialCount
	for i := 0; i < 5; i++ {
		state, _, err := counters.Decrement(ctx, userID)
		if err != nil {
			t.Fatalf("Decrement %d: %v", i, err)
		}
		if state.Remaining >= prev {
			t.Fatalf("remaining must strictly decrease while positive: %d -> %d", prev, state.Remaining)
		}
		if state.Remaining < 0 {
			t.Fatalf("remaining went negative: %d", state.Remaining)
		}
		prev = state.Remaining
	}
	if prev != domain.InitialCount-5 {
		t.Fatalf("expected %d after 5 decrements, got %d", domain.InitialCount-5, prev)
	}
}

func TestCounterService_CompletionSignalFiresOnce(t *testing.T) {
	counters, _, userID, db := newTestCounterService(t)
	ctx := context.Background()

	forceCount(t, db, userID, 1)

	state, completed, err := counters.Decrement(ctx, userID)
	if err != nil {
		t.Fatalf("Decrement to zero: %v", err)
	}
	if state.Remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", state.Remaining)
	}
	if !state.Completed || !completed {
		t.Fatal("expected completion on the decrement that reached zero")
	}

	// Further decrements are no-ops and must not signal again.
	for i := 0; i < 3; i++ {
		state, completed, err = counters.Decrement(ctx, userID)
		if err != nil {
			t.Fatalf("Decrement at zero: %v", err)
		}
		if completed {
			t.Fatal("completion signal must fire exactly once")
		}
		if state.Remaining != 0 {
			t.Fatalf("remaining must stay at 0, got %d", state.Remaining)
		}
	}
}

func TestCounterService_CompletionSignalOnceUnderConcurrentDecrements(t *testing.T) {
	counters, _, userID, db := newTestCounterService(t)
	ctx := context.Background()

	// Two concurrent decrements take the counter 2 -> 1 -> 0. Each caller
	// must observe the value its own decrement produced, so exactly one of
	// them sees the transition to zero.
	forceCount(t, db, userID, 2)

	var wg sync.WaitGroup
	completions := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, completed, err := counters.Decrement(ctx, userID)
			if err != nil {
				t.Errorf("Decrement: %v", err)
				return
			}
			completions <- completed
		}()
	}
	wg.Wait()
	close(completions)

	fired := 0
	for completed := range completions {
		if completed {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("completion signal fired %d times for one transition to zero", fired)
	}

	state, err := counters.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", state.Remaining)
	}
}

func TestCounterService_Reset(t *testing.T) {
	counters, _, userID, db := newTestCounterService(t)
	ctx := context.Background()

	forceCount(t, db, userID, 0)

	state, err := counters.Reset(ctx, userID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if state.Remaining != domain.InitialCount {
		t.Fatalf("expected %d after reset, got %d", domain.InitialCount, state.Remaining)
	}
	if state.Completed {
		t.Fatal("reset counter must be active again")
	}
}

func TestCounterService_ProgressPercentRounding(t *testing.T) {
	tests := []struct {
		remaining int
		want      float64
	}{
		{domain.InitialCount, 0},
		{0, 100},
		{20000, 50},
		{39999, 0},   // 0.0025% rounds to 0.0
		{39950, 0.1}, // 0.125% rounds to 0.1
	}

	for _, tt := range tests {
		if got := service.ProgressPercent(tt.remaining); got != tt.want {
			t.Fatalf("ProgressPercent(%d) = %v, want %v", tt.remaining, got, tt.want)
		}
	}
}

func TestCounterService_Stats_CalculatingWithoutProgress(t *testing.T) {
	counters, _, userID, _ := newTestCounterService(t)

	stats, err := counters.GetStats(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if !stats.Calculating {
		t.Fatal("stats without progress must report calculating")
	}
}

func TestCounterService_Stats_AfterProgress(t *testing.T) {
	counters, _, userID, db := newTestCounterService(t)
	ctx := context.Background()

	if _, _, err := counters.Decrement(ctx, userID); err != nil {
		t.Fatalf("Decrement: %v", err)
	}

	// Backdate the start so the elapsed window is meaningful.
	if _, err := db.SqlDB.ExecContext(ctx,
		"UPDATE counters SET started_at = datetime('now', '-10 minutes') WHERE user_id = ?", userID); err != nil {
		t.Fatalf("backdate started_at: %v", err)
	}

	stats, err := counters.GetStats(ctx, userID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Calculating {
		t.Fatal("expected usable statistics after progress")
	}
	if stats.Elapsed <= 0 {
		t.Fatalf("expected positive elapsed, got %v", stats.Elapsed)
	}
	if stats.AveragePerMinute <= 0 {
		t.Fatalf("expected positive average, got %v", stats.AveragePerMinute)
	}
	if stats.EstimatedRemaining <= 0 {
		t.Fatalf("expected positive ETA, got %v", stats.EstimatedRemaining)
	}
}

func TestCounterService_ShareText(t *testing.T) {
	counters, _, userID, db := newTestCounterService(t)
	ctx := context.Background()

	text, err := counters.ShareText(ctx, userID)
	if err != nil {
		t.Fatalf("ShareText: %v", err)
	}
	if text == "" {
		t.Fatal("expected share text")
	}

	forceCount(t, db, userID, 0)
	completedText, err := counters.ShareText(ctx, userID)
	if err != nil {
		t.Fatalf("ShareText completed: %v", err)
	}
	if completedText == text {
		t.Fatal("completed share text must differ from in-progress text")
	}
}

func TestCounterService_DecrementPublishesUpdate(t *testing.T) {
	counters, _, userID, _ := newTestCounterService(t)
	ctx := context.Background()

	updates, cancel := counters.Subscribe(userID)
	defer cancel()

	state, _, err := counters.Decrement(ctx, userID)
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}

	update := <-updates
	if update.Count != state.Remaining {
		t.Fatalf("published count %d does not match state %d", update.Count, state.Remaining)
	}
	if update.UserID != userID {
		t.Fatalf("expected update for %s, got %s", userID, update.UserID)
	}
}
