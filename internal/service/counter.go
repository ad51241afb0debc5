package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
)

// CounterService is the per-user recitation counter state machine. The
// store is the single source of truth: a decrement that fails to persist
// advances nothing, and every published update carries a store-confirmed
// value.
type CounterService struct {
	counters  domain.CounterRepository
	broadcast *Broadcaster
}

// NewCounterService creates a new CounterService.
func NewCounterService(counters domain.CounterRepository, broadcast *Broadcaster) *CounterService {
	return &CounterService{counters: counters, broadcast: broadcast}
}

// CounterState is the read model of a counter.
type CounterState struct {
	Remaining       int
	ProgressPercent float64
	Completed       bool
	LastUpdated     time.Time
}

// Stats are best-effort derived statistics, computed from the
// first-progress timestamp and the current remaining value. They are
// presentation data, not authoritative state.
type Stats struct {
	// Calculating is true while there is no usable rate yet (no progress,
	// or a zero average). The other fields are zero in that case.
	Calculating        bool
	Elapsed            time.Duration
	AveragePerMinute   float64
	EstimatedRemaining time.Duration
}

// Decrement lowers the counter by one. At zero it is a no-op: the count
// never goes negative. The returned completed flag is true only for the
// call whose decrement landed on zero, so completion feedback fires
// exactly once per run.
func (s *CounterService) Decrement(ctx context.Context, userID string) (*CounterState, bool, error) {
	counter, changed, err := s.counters.Decrement(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("decrement: %w", err)
	}

	completed := changed && counter.Count == 0
	if changed {
		s.broadcast.Publish(CounterUpdate{
			UserID:    userID,
			Count:     counter.Count,
			Completed: completed,
		})
	}

	return toState(counter), completed, nil
}

// Reset puts the counter back to the initial target, discarding all
// progress. Available to the owner at any time.
func (s *CounterService) Reset(ctx context.Context, userID string) (*CounterState, error) {
	if err := s.counters.Reset(ctx, userID); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	counter, err := s.counters.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read after reset: %w", err)
	}

	s.broadcast.Publish(CounterUpdate{UserID: userID, Count: counter.Count})
	return toState(counter), nil
}

// Get returns the current counter state, provisioning the counter on
// first read so a freshly created user always starts at the full target.
func (s *CounterService) Get(ctx context.Context, userID string) (*CounterState, error) {
	counter, err := s.getOrProvision(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toState(counter), nil
}

// GetStats computes the derived statistics. A counter with no recorded
// progress, or one whose elapsed time rounds to a zero rate, reports
// Calculating instead of failing.
func (s *CounterService) GetStats(ctx context.Context, userID string) (*Stats, error) {
	counter, err := s.getOrProvision(ctx, userID)
	if err != nil {
		return nil, err
	}

	done := domain.InitialCount - counter.Count
	if counter.StartedAt == nil || done <= 0 {
		return &Stats{Calculating: true}, nil
	}

	elapsed := time.Since(*counter.StartedAt)
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return &Stats{Calculating: true}, nil
	}

	avg := float64(done) / minutes
	if avg <= 0 {
		return &Stats{Calculating: true}, nil
	}

	eta := time.Duration(float64(counter.Count) / avg * float64(time.Minute))
	return &Stats{
		Elapsed:            elapsed,
		AveragePerMinute:   avg,
		EstimatedRemaining: eta,
	}, nil
}

// ShareText builds the human-readable progress summary used by the share
// sheet.
func (s *CounterService) ShareText(ctx context.Context, userID string) (string, error) {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	if state.Completed {
		return fmt.Sprintf("İhlas Suresi zikrimi tamamladım! %d okuma bitti. 🎉", domain.InitialCount), nil
	}
	return fmt.Sprintf("İhlas Suresi zikrimde %%%.1f tamamlandı, %d okuma kaldı.",
		state.ProgressPercent, state.Remaining), nil
}

// Subscribe registers a live listener for the user's counter. The cancel
// func must be called when the consuming view goes away.
func (s *CounterService) Subscribe(userID string) (<-chan CounterUpdate, func()) {
	return s.broadcast.Subscribe(userID)
}

// Provision makes sure a counter exists at the full target. Used when an
// account is created; idempotence comes from Reset's upsert.
func (s *CounterService) Provision(ctx context.Context, userID string) error {
	return s.counters.Reset(ctx, userID)
}

func (s *CounterService) getOrProvision(ctx context.Context, userID string) (*domain.Counter, error) {
	counter, err := s.counters.Get(ctx, userID)
	if err == nil {
		return counter, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.counters.Reset(ctx, userID); err != nil {
		return nil, fmt.Errorf("provision counter: %w", err)
	}
	return s.counters.Get(ctx, userID)
}

func toState(c *domain.Counter) *CounterState {
	return &CounterState{
		Remaining:       c.Count,
		ProgressPercent: ProgressPercent(c.Count),
		Completed:       c.Count == 0,
		LastUpdated:     c.LastUpdated,
	}
}

// ProgressPercent converts a remaining count into the completion
// percentage shown to the user, rounded to one decimal.
func ProgressPercent(remaining int) float64 {
	done := domain.InitialCount - remaining
	pct := float64(done) / float64(domain.InitialCount) * 100
	return math.Round(pct*10) / 10
}
