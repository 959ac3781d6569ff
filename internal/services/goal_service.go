package services

import (
	"fmt"
	"time"

	"pocketlog/internal/models"
	"pocketlog/internal/repositories"

	"github.com/shopspring/decimal"
)

// GoalService tracks monthly budgets. The ledger is the only source of truth
// for what was spent; the goal's running total is a separate counter fed by
// RecordExpenseAgainstGoal.
type GoalService struct {
	goalRepo repositories.GoalRepository
	spending *SpendingService
}

func NewGoalService(goalRepo repositories.GoalRepository, spending *SpendingService) *GoalService {
	return &GoalService{
		goalRepo: goalRepo,
		spending: spending,
	}
}

// SetOrUpdateGoal upserts the target of the month containing anchor.
func (s *GoalService) SetOrUpdateGoal(kakaoID int64, anchor time.Time, target decimal.Decimal) (*models.SpendingGoal, error) {
	if target.IsNegative() {
		return nil, fmt.Errorf("%w: goal must not be negative", ErrValidation)
	}
	return s.goalRepo.Upsert(kakaoID, models.MonthStart(anchor), target)
}

// GetGoal returns the month's target, or zero when none was set.
func (s *GoalService) GetGoal(kakaoID int64, anchor time.Time) (decimal.Decimal, error) {
	goal, err := s.goalRepo.Find(kakaoID, models.MonthStart(anchor))
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return goal.MonthlyGoal, nil
}

// RecordExpenseAgainstGoal adds amount to the running total of date's month.
// It fails with ErrNotFound when that month has no goal.
func (s *GoalService) RecordExpenseAgainstGoal(kakaoID int64, date time.Time, amount decimal.Decimal) (*models.SpendingGoal, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return s.goalRepo.IncrementCurrentSpending(kakaoID, models.MonthStart(date), amount)
}

// CurrentSpendingForMonth is the ledger total for the month containing anchor.
func (s *GoalService) CurrentSpendingForMonth(kakaoID int64, anchor time.Time) (decimal.Decimal, error) {
	return s.spending.SumAmountInRange(kakaoID, models.MonthStart(anchor), models.MonthEnd(anchor))
}

// BudgetStatus compares the month's target with the ledger total.
func (s *GoalService) BudgetStatus(kakaoID int64, anchor time.Time) (*models.BudgetStatus, error) {
	target, err := s.GetGoal(kakaoID, anchor)
	if err != nil {
		return nil, err
	}
	spent, err := s.CurrentSpendingForMonth(kakaoID, anchor)
	if err != nil {
		return nil, err
	}
	return &models.BudgetStatus{
		Month:     models.MonthStart(anchor).Format(models.MonthLayout),
		Target:    target,
		Spent:     spent,
		Remaining: target.Sub(spent),
		Exceeded:  target.IsPositive() && spent.GreaterThan(target),
	}, nil
}
