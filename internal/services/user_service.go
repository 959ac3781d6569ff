package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"pocketlog/internal/models"
	"pocketlog/internal/repositories"
	"pocketlog/pkg/blobstore"

	"github.com/google/uuid"
)

const (
	searchLimit = 20

	// profileMediaPrefix is the blob key prefix of uploaded profile images.
	profileMediaPrefix = "profiles/"
)

// UserService owns user records, chosen nicknames, profile images and the follow graph.
type UserService struct {
	userRepo   repositories.UserRepository
	followRepo repositories.FollowRepository
	store      blobstore.Store
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, store blobstore.Store) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		store:      store,
	}
}

// UpsertFromLogin creates the user on first login and refreshes provider fields afterwards.
// An uploaded profile image is kept in place of the provider avatar.
func (s *UserService) UpsertFromLogin(kakaoID int64, displayName, avatarURL string) (*models.User, bool, error) {
	if s.store != nil {
		existing, err := s.userRepo.GetByKakaoID(kakaoID)
		switch {
		case err == nil && s.ownsBlob(existing.ProfileImageURL):
			avatarURL = existing.ProfileImageURL
		case err != nil && !isNotFound(err):
			return nil, false, err
		}
	}
	return s.userRepo.UpsertFromLogin(kakaoID, displayName, avatarURL)
}

func (s *UserService) GetByExternalID(kakaoID int64) (*models.User, error) {
	return s.userRepo.GetByKakaoID(kakaoID)
}

func (s *UserService) GetByNickname(nickname string) (*models.User, error) {
	return s.userRepo.GetByNickname(nickname)
}

// CompleteOnboarding sets the chosen nickname. It can succeed only once per user.
func (s *UserService) CompleteOnboarding(kakaoID int64, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname must not be blank", ErrValidation)
	}

	if err := s.userRepo.SetNicknameIfUnset(kakaoID, nickname); err != nil {
		return nil, err
	}
	log.Printf("User %d completed onboarding as %q", kakaoID, nickname)
	return s.userRepo.GetByKakaoID(kakaoID)
}

// IsNicknameAvailable reports whether no user holds nickname. Matching is exact and case-sensitive.
func (s *UserService) IsNicknameAvailable(nickname string) (bool, error) {
	_, err := s.userRepo.GetByNickname(nickname)
	switch {
	case err == nil:
		return false, nil
	case isNotFound(err):
		return true, nil
	default:
		return false, err
	}
}

// UpdateNickname replaces the chosen nickname. Re-setting one's own nickname is allowed.
func (s *UserService) UpdateNickname(kakaoID int64, nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", fmt.Errorf("%w: nickname must not be blank", ErrValidation)
	}

	holder, err := s.userRepo.GetByNickname(nickname)
	if err != nil && !isNotFound(err) {
		return "", err
	}
	if holder != nil && holder.KakaoID != kakaoID {
		return "", fmt.Errorf("%w: nickname %q is already taken", ErrConflict, nickname)
	}

	if err := s.userRepo.UpdateNickname(kakaoID, nickname); err != nil {
		return "", err
	}
	return fmt.Sprintf("Nickname changed to %s", nickname), nil
}

// Follow adds the edge follower -> followee. An existing edge is ErrConflict.
func (s *UserService) Follow(followerID, followeeID int64) error {
	if _, err := s.userRepo.GetByKakaoID(followeeID); err != nil {
		return err
	}
	return s.followRepo.Create(followerID, followeeID)
}

// Unfollow removes the edge and is a no-op when it does not exist.
func (s *UserService) Unfollow(followerID, followeeID int64) error {
	return s.followRepo.Delete(followerID, followeeID)
}

func (s *UserService) IsFollowing(followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(followerID, followeeID)
}

// FolloweeIDs lists who followerID follows.
func (s *UserService) FolloweeIDs(followerID int64) ([]int64, error) {
	return s.followRepo.FolloweeIDs(followerID)
}

// SearchByNickname is a substring search over chosen nicknames.
func (s *UserService) SearchByNickname(query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be blank", ErrValidation)
	}
	return s.userRepo.SearchByNickname(query, searchLimit)
}

// ProfileImage returns the current profile image URL, which may be empty.
func (s *UserService) ProfileImage(kakaoID int64) (string, error) {
	user, err := s.userRepo.GetByKakaoID(kakaoID)
	if err != nil {
		return "", err
	}
	return user.ProfileImageURL, nil
}

// UploadProfileImage stores a new profile image and drops the previous one if it lived in our store.
func (s *UserService) UploadProfileImage(kakaoID int64, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: profile image is empty", ErrValidation)
	}
	user, err := s.userRepo.GetByKakaoID(kakaoID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%d-%s%s", profileMediaPrefix, kakaoID, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.store.Put(key, data, blobstore.ContentTypeFor(filename))
	if err != nil {
		return "", fmt.Errorf("failed to store profile image: %w", err)
	}
	if err := s.userRepo.UpdateProfileImage(kakaoID, url); err != nil {
		s.removeBlob(url)
		return "", err
	}
	s.removeBlob(user.ProfileImageURL)
	return url, nil
}

// DeleteProfileImage clears the profile image.
func (s *UserService) DeleteProfileImage(kakaoID int64) error {
	user, err := s.userRepo.GetByKakaoID(kakaoID)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateProfileImage(kakaoID, ""); err != nil {
		return err
	}
	s.removeBlob(user.ProfileImageURL)
	return nil
}

// removeBlob deletes url from the store when it points there. Provider-hosted URLs are left alone.
func (s *UserService) removeBlob(url string) {
	if !s.ownsBlob(url) {
		return
	}
	key, _ := s.store.KeyFromURL(url)
	if err := s.store.Delete(key); err != nil {
		log.Printf("Failed to delete blob %s: %v", key, err)
	}
}

// ownsBlob reports whether url is a profile image held in our store.
func (s *UserService) ownsBlob(url string) bool {
	if s.store == nil || url == "" {
		return false
	}
	key, ok := s.store.KeyFromURL(url)
	return ok && strings.HasPrefix(key, profileMediaPrefix)
}
