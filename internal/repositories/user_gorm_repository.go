package repositories

import (
	"fmt"
	"strings"

	"pocketlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// UpsertFromLogin inserts the user or refreshes the provider fields of an existing one.
// The boolean reports whether the row was created by this call.
func (r *GORMUserRepository) UpsertFromLogin(kakaoID int64, nickname, profileImageURL string) (*models.User, bool, error) {
	var created bool
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("kakao_id = ?", kakaoID).Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		row := models.User{KakaoID: kakaoID, Nickname: nickname, ProfileImageURL: profileImageURL}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kakao_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"nickname", "profile_image_url", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.First(&user, "kakao_id = ?", kakaoID).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user %d: %w", kakaoID, translate(err))
	}
	return &user, created, nil
}

// GetByKakaoID retrieves a user by their external id.
func (r *GORMUserRepository) GetByKakaoID(kakaoID int64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "kakao_id = ?", kakaoID).Error; err != nil {
		return nil, fmt.Errorf("user with kakao id %d: %w", kakaoID, translate(err))
	}
	return &user, nil
}

// GetByNickname retrieves a user by their chosen nickname (exact, case-sensitive).
func (r *GORMUserRepository) GetByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "user_nickname = ?", nickname).Error; err != nil {
		return nil, fmt.Errorf("user with nickname %q: %w", nickname, translate(err))
	}
	return &user, nil
}

// SetNicknameIfUnset sets the chosen nickname only while it is still empty.
// It returns ErrConflict when the user already has one or another user holds it.
func (r *GORMUserRepository) SetNicknameIfUnset(kakaoID int64, nickname string) error {
	res := r.db.Model(&models.User{}).
		Where("kakao_id = ? AND (user_nickname IS NULL OR user_nickname = '')", kakaoID).
		Update("user_nickname", nickname)
	if res.Error != nil {
		return fmt.Errorf("failed to set nickname for %d: %w", kakaoID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByKakaoID(kakaoID); err != nil {
			return err
		}
		return fmt.Errorf("user %d already has a nickname: %w", kakaoID, ErrConflict)
	}
	return nil
}

// UpdateNickname overwrites the chosen nickname.
func (r *GORMUserRepository) UpdateNickname(kakaoID int64, nickname string) error {
	res := r.db.Model(&models.User{}).Where("kakao_id = ?", kakaoID).Update("user_nickname", nickname)
	if res.Error != nil {
		return fmt.Errorf("failed to update nickname for %d: %w", kakaoID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with kakao id %d: %w", kakaoID, ErrNotFound)
	}
	return nil
}

// UpdateProfileImage stores a new profile image URL; an empty url clears it.
func (r *GORMUserRepository) UpdateProfileImage(kakaoID int64, url string) error {
	res := r.db.Model(&models.User{}).Where("kakao_id = ?", kakaoID).Update("profile_image_url", url)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile image for %d: %w", kakaoID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with kakao id %d: %w", kakaoID, ErrNotFound)
	}
	return nil
}

// SearchByNickname returns users whose chosen nickname contains query.
func (r *GORMUserRepository) SearchByNickname(query string, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("user_nickname LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%").
		Order("user_nickname").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users by nickname %q: %w", query, err)
	}
	return users, nil
}

// escapeLike makes query match literally inside a LIKE pattern that uses '!' as its escape character.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
