package models

import "time"

// User is the local record of a Kakao account.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	KakaoID         int64     `json:"kakaoId" gorm:"uniqueIndex;not null"`
	Nickname        string    `json:"nickname" gorm:"type:varchar(100)"`                 // provider display name
	UserNickname    *string   `json:"userNickname" gorm:"uniqueIndex;type:varchar(100)"` // chosen during onboarding
	ProfileImageURL string    `json:"profileImageUrl" gorm:"type:varchar(512)"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ChosenNickname returns the onboarding nickname or "" when it is unset.
func (u *User) ChosenNickname() string {
	if u.UserNickname == nil {
		return ""
	}
	return *u.UserNickname
}

// Follow is a directed edge: FollowerID follows FolloweeID. Both are Kakao ids.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID int64     `json:"followerId" gorm:"not null;uniqueIndex:idx_follow_pair"`
	FolloweeID int64     `json:"followeeId" gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt  time.Time `json:"createdAt"`
}
