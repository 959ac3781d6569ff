package services_test

import (
	"context"

	"pocketlog/internal/models"
	"pocketlog/pkg/kakao"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UpsertFromLogin(kakaoID int64, nickname, profileImageURL string) (*models.User, bool, error) {
	args := m.Called(kakaoID, nickname, profileImageURL)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetByKakaoID(kakaoID int64) (*models.User, error) {
	args := m.Called(kakaoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByNickname(nickname string) (*models.User, error) {
	args := m.Called(nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetNicknameIfUnset(kakaoID int64, nickname string) error {
	args := m.Called(kakaoID, nickname)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateNickname(kakaoID int64, nickname string) error {
	args := m.Called(kakaoID, nickname)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfileImage(kakaoID int64, url string) error {
	args := m.Called(kakaoID, url)
	return args.Error(0)
}

func (m *MockUserRepository) SearchByNickname(query string, limit int) ([]models.User, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockFollowRepository is a mock implementation of repositories.FollowRepository
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(followerID, followeeID int64) error {
	return m.Called(followerID, followeeID).Error(0)
}

func (m *MockFollowRepository) Delete(followerID, followeeID int64) error {
	return m.Called(followerID, followeeID).Error(0)
}

func (m *MockFollowRepository) Exists(followerID, followeeID int64) (bool, error) {
	args := m.Called(followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) FolloweeIDs(followerID int64) ([]int64, error) {
	args := m.Called(followerID)
	return args.Get(0).([]int64), args.Error(1)
}

// MockIdentityProvider is a mock implementation of services.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) AuthorizeURL(redirectURI, state string) string {
	return m.Called(redirectURI, state).String(0)
}

func (m *MockIdentityProvider) ExchangeCodeForToken(ctx context.Context, code, redirectURI string) (*kakao.Token, error) {
	args := m.Called(ctx, code, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kakao.Token), args.Error(1)
}

func (m *MockIdentityProvider) FetchProfile(ctx context.Context, accessToken string) (*kakao.Profile, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kakao.Profile), args.Error(1)
}
