package services

import (
	"fmt"
	"time"

	"pocketlog/internal/models"
	"pocketlog/internal/repositories"
)

// ReactionService keeps one mood per user per calendar date.
type ReactionService struct {
	reactionRepo repositories.ReactionRepository
}

func NewReactionService(reactionRepo repositories.ReactionRepository) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo}
}

// Submit records the mood for date, replacing an earlier one.
func (s *ReactionService) Submit(kakaoID int64, date time.Time, reactionType models.ReactionType, spendingID *uint) error {
	if !reactionType.Valid() {
		return fmt.Errorf("%w: unknown reaction type %q", ErrValidation, reactionType)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return s.reactionRepo.Upsert(&models.Reaction{
		KakaoID:      kakaoID,
		Date:         models.Day(date),
		ReactionType: reactionType,
		SpendingID:   spendingID,
	})
}

// ListByDateRange returns the moods between start and end inclusive, in date order.
func (s *ReactionService) ListByDateRange(kakaoID int64, start, end time.Time) ([]models.DailyReaction, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	rows, err := s.reactionRepo.ListByDateRange(kakaoID, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]models.DailyReaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.DailyReaction{
			Date:         r.Date.Format(models.DateLayout),
			ReactionType: r.ReactionType,
			SpendingID:   r.SpendingID,
		})
	}
	return out, nil
}

// ListByMonth is ListByDateRange over the month containing anchor.
func (s *ReactionService) ListByMonth(kakaoID int64, anchor time.Time) ([]models.DailyReaction, error) {
	return s.ListByDateRange(kakaoID, models.MonthStart(anchor), models.MonthEnd(anchor))
}
