package repositories

import (
	"fmt"
	"strconv"
	"time"

	"pocketlog/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSpendingRepository is a GORM implementation of SpendingRepository.
type GORMSpendingRepository struct {
	db *gorm.DB
}

// NewGORMSpendingRepository creates a new instance of GORMSpendingRepository.
func NewGORMSpendingRepository(db *gorm.DB) *GORMSpendingRepository {
	return &GORMSpendingRepository{
		db: db,
	}
}

// Create inserts a new ledger entry.
func (r *GORMSpendingRepository) Create(spending *models.Spending) error {
	spending.Date = models.Day(spending.Date)
	if spending.Images == nil {
		spending.Images = datatypes.JSONSlice[string]{}
	}
	if spending.Reactions.Data() == nil {
		spending.Reactions = datatypes.NewJSONType(map[string]string{})
	}
	if err := r.db.Create(spending).Error; err != nil {
		return fmt.Errorf("failed to create spending: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a ledger entry by id.
func (r *GORMSpendingRepository) GetByID(id uint) (*models.Spending, error) {
	var spending models.Spending
	if err := r.db.First(&spending, id).Error; err != nil {
		return nil, fmt.Errorf("spending %d: %w", id, translate(err))
	}
	return &spending, nil
}

// Update writes the mutable fields of an existing entry.
func (r *GORMSpendingRepository) Update(spending *models.Spending) error {
	res := r.db.Model(spending).
		Select("amount", "description", "note", "images", "updated_at").
		Updates(spending)
	if res.Error != nil {
		return fmt.Errorf("failed to update spending %d: %w", spending.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spending %d: %w", spending.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an entry owned by kakaoID.
func (r *GORMSpendingRepository) Delete(id uint, kakaoID int64) error {
	res := r.db.Where("id = ? AND kakao_id = ?", id, kakaoID).Delete(&models.Spending{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete spending %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spending %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListByDate returns the owner's entries for one calendar day.
func (r *GORMSpendingRepository) ListByDate(kakaoID int64, date time.Time) ([]models.Spending, error) {
	var list []models.Spending
	err := r.db.Where("kakao_id = ? AND date = ?", kakaoID, models.Day(date)).
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spending for %d on %s: %w", kakaoID, date.Format(models.DateLayout), err)
	}
	return list, nil
}

// ListByDateRange returns the owner's entries between start and end, both inclusive.
func (r *GORMSpendingRepository) ListByDateRange(kakaoID int64, start, end time.Time) ([]models.Spending, error) {
	var list []models.Spending
	err := r.db.Where("kakao_id = ? AND date >= ? AND date <= ?", kakaoID, models.Day(start), models.Day(end)).
		Order("date, id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spending for %d: %w", kakaoID, err)
	}
	return list, nil
}

// AmountsInRange plucks the amounts in the inclusive range so callers can add them exactly.
func (r *GORMSpendingRepository) AmountsInRange(kakaoID int64, start, end time.Time) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.Spending{}).
		Where("kakao_id = ? AND date >= ? AND date <= ?", kakaoID, models.Day(start), models.Day(end)).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load amounts for %d: %w", kakaoID, err)
	}
	return amounts, nil
}

// ListByOwners pages through the entries of several owners, newest first, and reports the total count.
func (r *GORMSpendingRepository) ListByOwners(kakaoIDs []int64, offset, limit int) ([]models.Spending, int64, error) {
	if len(kakaoIDs) == 0 {
		return []models.Spending{}, 0, nil
	}

	var total int64
	if err := r.db.Model(&models.Spending{}).Where("kakao_id IN ?", kakaoIDs).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count feed: %w", err)
	}

	var list []models.Spending
	err := r.db.Where("kakao_id IN ?", kakaoIDs).
		Order("date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load feed: %w", err)
	}
	return list, total, nil
}

// SetReaction records reactorID's reaction on the entry, replacing any earlier one.
func (r *GORMSpendingRepository) SetReaction(id uint, reactorID int64, reactionType models.ReactionType) (*models.Spending, error) {
	var spending models.Spending
	err := r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&spending, id).Error; err != nil {
			return err
		}

		reactions := spending.ReactionMap()
		reactions[strconv.FormatInt(reactorID, 10)] = string(reactionType)
		spending.Reactions = datatypes.NewJSONType(reactions)

		return tx.Model(&spending).Select("reactions", "updated_at").Updates(&spending).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to react to spending %d: %w", id, translate(err))
	}
	return &spending, nil
}
