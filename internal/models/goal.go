package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpendingGoal is the monthly budget for one user. GoalDate is always the first day of the month.
type SpendingGoal struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	KakaoID         int64           `json:"kakaoId" gorm:"not null;uniqueIndex:idx_goal_user_month"`
	GoalDate        time.Time       `json:"goalDate" gorm:"type:date;not null;uniqueIndex:idx_goal_user_month"`
	MonthlyGoal     decimal.Decimal `json:"monthlyGoal" gorm:"type:decimal(15,2);not null"`
	CurrentSpending decimal.Decimal `json:"currentSpending" gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BudgetStatus compares a month's goal with what the ledger recorded.
type BudgetStatus struct {
	Month     string          `json:"month"`
	Target    decimal.Decimal `json:"target"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Exceeded  bool            `json:"exceeded"`
}
