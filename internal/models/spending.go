package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Spending is a single ledger entry.
type Spending struct {
	ID          uint                                  `json:"id" gorm:"primaryKey"`
	KakaoID     int64                                 `json:"kakaoId" gorm:"not null;index:idx_spending_owner_date"`
	Amount      decimal.Decimal                       `json:"amount" gorm:"type:decimal(15,2);not null"`
	Description string                                `json:"description" gorm:"type:varchar(255);not null"`
	Note        string                                `json:"note" gorm:"type:text"`
	Images      datatypes.JSONSlice[string]           `json:"images"`
	Date        time.Time                             `json:"date" gorm:"type:date;not null;index:idx_spending_owner_date"`
	Reactions   datatypes.JSONType[map[string]string] `json:"reactions"` // reactor kakao id -> reaction type
	CreatedAt   time.Time                             `json:"createdAt"`
	UpdatedAt   time.Time                             `json:"updatedAt"`
}

// ReactionMap returns a copy of the per-reactor annotations, never nil.
func (s *Spending) ReactionMap() map[string]string {
	out := make(map[string]string)
	for k, v := range s.Reactions.Data() {
		out[k] = v
	}
	return out
}

// SpendingSummary is the projection shown in a follower's feed.
type SpendingSummary struct {
	ID          uint              `json:"id"`
	KakaoID     int64             `json:"kakaoId"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Note        string            `json:"note"`
	Images      []string          `json:"images"`
	Date        string            `json:"date"`
	Reactions   map[string]string `json:"reactions"`
}

// Summary projects the entry for the friend feed.
func (s *Spending) Summary() SpendingSummary {
	images := []string(s.Images)
	if images == nil {
		images = []string{}
	}
	return SpendingSummary{
		ID:          s.ID,
		KakaoID:     s.KakaoID,
		Description: s.Description,
		Amount:      s.Amount,
		Note:        s.Note,
		Images:      images,
		Date:        s.Date.Format(DateLayout),
		Reactions:   s.ReactionMap(),
	}
}
