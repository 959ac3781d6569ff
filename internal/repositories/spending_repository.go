package repositories

import (
	"time"

	"pocketlog/internal/models"

	"github.com/shopspring/decimal"
)

// SpendingRepository defines the interface for ledger data access.
type SpendingRepository interface {
	Create(spending *models.Spending) error
	GetByID(id uint) (*models.Spending, error)
	Update(spending *models.Spending) error
	Delete(id uint, kakaoID int64) error
	ListByDate(kakaoID int64, date time.Time) ([]models.Spending, error)
	ListByDateRange(kakaoID int64, start, end time.Time) ([]models.Spending, error)
	AmountsInRange(kakaoID int64, start, end time.Time) ([]decimal.Decimal, error)
	ListByOwners(kakaoIDs []int64, offset, limit int) ([]models.Spending, int64, error)
	SetReaction(id uint, reactorID int64, reactionType models.ReactionType) (*models.Spending, error)
}
