package repositories

import (
	"fmt"

	"pocketlog/internal/models"

	"gorm.io/gorm"
)

// GORMFollowRepository stores follow edges in the follows table.
type GORMFollowRepository struct {
	db *gorm.DB
}

func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{db: db}
}

// Create inserts the edge; an existing edge yields ErrConflict.
func (r *GORMFollowRepository) Create(followerID, followeeID int64) error {
	edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.Create(&edge).Error; err != nil {
		return fmt.Errorf("failed to follow %d -> %d: %w", followerID, followeeID, translate(err))
	}
	return nil
}

// Delete removes the edge if present.
func (r *GORMFollowRepository) Delete(followerID, followeeID int64) error {
	err := r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfollow %d -> %d: %w", followerID, followeeID, err)
	}
	return nil
}

func (r *GORMFollowRepository) Exists(followerID, followeeID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow %d -> %d: %w", followerID, followeeID, err)
	}
	return count > 0, nil
}

// FolloweeIDs lists the external ids followerID follows.
func (r *GORMFollowRepository) FolloweeIDs(followerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", followerID).Order("followee_id").Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followees of %d: %w", followerID, err)
	}
	return ids, nil
}
