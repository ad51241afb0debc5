package handler

import (
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/service"
)

// AccountDTO is the JSON representation of an account. The field names
// mirror the persisted record shape and must stay stable.
type AccountDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	Deleted     bool    `json:"deleted"`
	DeletedAt   *string `json:"deletedAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toAccountDTO(a *domain.Account) AccountDTO {
	dto := AccountDTO{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		Deleted:     a.Deleted,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
	if a.DeletedAt != nil {
		t := a.DeletedAt.Format(time.RFC3339)
		dto.DeletedAt = &t
	}
	return dto
}

func toAccountDTOs(accounts []domain.Account) []AccountDTO {
	dtos := make([]AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	return dtos
}

// CounterDTO is the JSON representation of the counter state.
type CounterDTO struct {
	Count           int     `json:"count"`
	ProgressPercent float64 `json:"progressPercent"`
	Completed       bool    `json:"completed"`
	LastUpdated     string  `json:"lastUpdated"`
}

func toCounterDTO(s *service.CounterState) CounterDTO {
	return CounterDTO{
		Count:           s.Remaining,
		ProgressPercent: s.ProgressPercent,
		Completed:       s.Completed,
		LastUpdated:     s.LastUpdated.Format(time.RFC3339),
	}
}

// StatsDTO is the JSON representation of the derived statistics.
type StatsDTO struct {
	Calculating        bool    `json:"calculating"`
	ElapsedSeconds     int64   `json:"elapsedSeconds"`
	AveragePerMinute   float64 `json:"averagePerMinute"`
	EstimatedRemaining int64   `json:"estimatedRemainingSeconds"`
}

func toStatsDTO(s *service.Stats) StatsDTO {
	return StatsDTO{
		Calculating:        s.Calculating,
		ElapsedSeconds:     int64(s.Elapsed.Seconds()),
		AveragePerMinute:   s.AveragePerMinute,
		EstimatedRemaining: int64(s.EstimatedRemaining.Seconds()),
	}
}
