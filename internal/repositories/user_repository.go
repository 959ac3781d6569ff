package repositories

import "pocketlog/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	UpsertFromLogin(kakaoID int64, nickname, profileImageURL string) (*models.User, bool, error)
	GetByKakaoID(kakaoID int64) (*models.User, error)
	GetByNickname(nickname string) (*models.User, error)
	SetNicknameIfUnset(kakaoID int64, nickname string) error
	UpdateNickname(kakaoID int64, nickname string) error
	UpdateProfileImage(kakaoID int64, url string) error
	SearchByNickname(query string, limit int) ([]models.User, error)
}

// FollowRepository defines the interface for the follow graph.
type FollowRepository interface {
	Create(followerID, followeeID int64) error
	Delete(followerID, followeeID int64) error
	Exists(followerID, followeeID int64) (bool, error)
	FolloweeIDs(followerID int64) ([]int64, error)
}
