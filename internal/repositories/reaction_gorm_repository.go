package repositories

import (
	"fmt"
	"time"

	"pocketlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMReactionRepository struct {
	db *gorm.DB
}

func NewGORMReactionRepository(db *gorm.DB) *GORMReactionRepository {
	return &GORMReactionRepository{db: db}
}

// Upsert stores the reaction, overwriting the user's earlier one for the same date.
func (r *GORMReactionRepository) Upsert(reaction *models.Reaction) error {
	reaction.Date = models.Day(reaction.Date)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kakao_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction_type", "spending_id", "updated_at"}),
	}).Create(reaction).Error
	if err != nil {
		return fmt.Errorf("failed to save reaction for %d on %s: %w", reaction.KakaoID, reaction.Date.Format(models.DateLayout), translate(err))
	}
	return nil
}

// ListByDateRange returns reactions between start and end inclusive, oldest first.
func (r *GORMReactionRepository) ListByDateRange(kakaoID int64, start, end time.Time) ([]models.Reaction, error) {
	var list []models.Reaction
	err := r.db.Where("kakao_id = ? AND date >= ? AND date <= ?", kakaoID, models.Day(start), models.Day(end)).
		Order("date").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions for %d: %w", kakaoID, err)
	}
	return list, nil
}
