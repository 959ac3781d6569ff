package repositories

import (
	"fmt"
	"time"

	"pocketlog/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMGoalRepository struct {
	db *gorm.DB
}

func NewGORMGoalRepository(db *gorm.DB) *GORMGoalRepository {
	return &GORMGoalRepository{db: db}
}

// Upsert creates the month's goal or replaces its target. The running total is never touched.
func (r *GORMGoalRepository) Upsert(kakaoID int64, month time.Time, target decimal.Decimal) (*models.SpendingGoal, error) {
	goal := models.SpendingGoal{
		KakaoID:         kakaoID,
		GoalDate:        month,
		MonthlyGoal:     target,
		CurrentSpending: decimal.Zero,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kakao_id"}, {Name: "goal_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_goal", "updated_at"}),
	}).Create(&goal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert goal for %d/%s: %w", kakaoID, month.Format(models.MonthLayout), translate(err))
	}
	return r.Find(kakaoID, month)
}

// Find returns the month's goal or ErrNotFound.
func (r *GORMGoalRepository) Find(kakaoID int64, month time.Time) (*models.SpendingGoal, error) {
	var goal models.SpendingGoal
	if err := r.db.First(&goal, "kakao_id = ? AND goal_date = ?", kakaoID, month).Error; err != nil {
		return nil, fmt.Errorf("goal for %d/%s: %w", kakaoID, month.Format(models.MonthLayout), translate(err))
	}
	return &goal, nil
}

// IncrementCurrentSpending adds amount to the running total in a single UPDATE.
// The sum is rounded to the column scale since SQLite stores decimal columns as REAL.
func (r *GORMGoalRepository) IncrementCurrentSpending(kakaoID int64, month time.Time, amount decimal.Decimal) (*models.SpendingGoal, error) {
	res := r.db.Model(&models.SpendingGoal{}).
		Where("kakao_id = ? AND goal_date = ?", kakaoID, month).
		Update("current_spending", gorm.Expr("ROUND(current_spending + ?, 2)", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record expense for %d/%s: %w", kakaoID, month.Format(models.MonthLayout), res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("goal for %d/%s: %w", kakaoID, month.Format(models.MonthLayout), ErrNotFound)
	}
	return r.Find(kakaoID, month)
}
