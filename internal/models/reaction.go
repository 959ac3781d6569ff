package models

import "time"

// ReactionType is the mood tag attached to a day or an entry.
type ReactionType string

const (
	ReactionHappy     ReactionType = "HAPPY"
	ReactionWonder    ReactionType = "WONDER"
	ReactionSurprised ReactionType = "SURPRISED"
	ReactionSad       ReactionType = "SAD"
	ReactionAngry     ReactionType = "ANGRY"
)

// Valid reports whether r is one of the known mood tags.
func (r ReactionType) Valid() bool {
	switch r {
	case ReactionHappy, ReactionWonder, ReactionSurprised, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// Reaction is the single mood record of a user for a calendar date.
type Reaction struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	KakaoID      int64        `json:"kakaoId" gorm:"not null;uniqueIndex:idx_reaction_user_date"`
	Date         time.Time    `json:"date" gorm:"type:date;not null;uniqueIndex:idx_reaction_user_date"`
	ReactionType ReactionType `json:"reactionType" gorm:"type:varchar(20);not null"`
	SpendingID   *uint        `json:"spendingId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// DailyReaction is the listing projection of a Reaction.
type DailyReaction struct {
	Date         string       `json:"date"`
	ReactionType ReactionType `json:"reactionType"`
	SpendingID   *uint        `json:"spendingId,omitempty"`
}
