package repositories

import (
	"time"

	"pocketlog/internal/models"

	"github.com/shopspring/decimal"
)

// GoalRepository defines the interface for monthly goal data access.
// Every month argument must already be a month start.
type GoalRepository interface {
	Upsert(kakaoID int64, month time.Time, target decimal.Decimal) (*models.SpendingGoal, error)
	Find(kakaoID int64, month time.Time) (*models.SpendingGoal, error)
	IncrementCurrentSpending(kakaoID int64, month time.Time, amount decimal.Decimal) (*models.SpendingGoal, error)
}

// ReactionRepository defines the interface for daily mood records.
type ReactionRepository interface {
	Upsert(reaction *models.Reaction) error
	ListByDateRange(kakaoID int64, start, end time.Time) ([]models.Reaction, error)
}
