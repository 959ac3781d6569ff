package services_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pocketlog/internal/models"
	"pocketlog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Onboarding(t *testing.T) {
	s := newStack(t)
	_, _, err := s.users.UpsertFromLogin(1, "provider name", "")
	require.NoError(t, err)

	_, err = s.users.CompleteOnboarding(1, "   ")
	assert.ErrorIs(t, err, services.ErrValidation)

	user, err := s.users.CompleteOnboarding(1, "moon")
	require.NoError(t, err)
	assert.Equal(t, "moon", user.ChosenNickname())

	_, err = s.users.CompleteOnboarding(1, "sun")
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = s.users.CompleteOnboarding(404, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUserService_NicknameUniqueness(t *testing.T) {
	s := newStack(t)
	for _, id := range []int64{1, 2} {
		_, _, err := s.users.UpsertFromLogin(id, "p", "")
		require.NoError(t, err)
	}
	_, err := s.users.CompleteOnboarding(1, "N")
	require.NoError(t, err)

	available, err := s.users.IsNicknameAvailable("N")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = s.users.IsNicknameAvailable("n")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = s.users.CompleteOnboarding(2, "N")
	assert.ErrorIs(t, err, services.ErrConflict)
	_, err = s.users.UpdateNickname(2, "N")
	assert.ErrorIs(t, err, services.ErrConflict)

	msg, err := s.users.UpdateNickname(1, "N")
	require.NoError(t, err)
	assert.Contains(t, msg, "N")

	_, err = s.users.UpdateNickname(2, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = s.users.UpdateNickname(2, "M")
	require.NoError(t, err)
	user, err := s.users.GetByNickname("M")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.KakaoID)
}

func TestUserService_FollowGraph(t *testing.T) {
	s := newStack(t)
	for _, id := range []int64{1, 2} {
		_, _, err := s.users.UpsertFromLogin(id, "p", "")
		require.NoError(t, err)
	}

	require.NoError(t, s.users.Unfollow(1, 2))

	require.NoError(t, s.users.Follow(1, 2))
	ok, err := s.users.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.users.IsFollowing(2, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.users.Follow(1, 2), services.ErrConflict)
	assert.ErrorIs(t, s.users.Follow(1, 3), services.ErrNotFound)

	require.NoError(t, s.users.Unfollow(1, 2))
	ok, err = s.users.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.users.Follow(1, 1), "self-follow is allowed")
}

func TestUserService_Search(t *testing.T) {
	userRepo := new(MockUserRepository)
	users := services.NewUserService(userRepo, new(MockFollowRepository), nil)

	nick := "pineapple"
	userRepo.On("SearchByNickname", "apple", 20).Return([]models.User{{KakaoID: 3, UserNickname: &nick}}, nil).Once()

	found, err := users.SearchByNickname("  apple ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "pineapple", found[0].ChosenNickname())

	_, err = users.SearchByNickname(" ")
	assert.ErrorIs(t, err, services.ErrValidation)
	userRepo.AssertExpectations(t)
}

func TestUserService_ProfileImage(t *testing.T) {
	s := newStack(t)
	_, _, err := s.users.UpsertFromLogin(9, "p", "http://k.kakaocdn.net/original.jpg")
	require.NoError(t, err)

	current, err := s.users.ProfileImage(9)
	require.NoError(t, err)
	assert.Equal(t, "http://k.kakaocdn.net/original.jpg", current)

	first, err := s.users.UploadProfileImage(9, "me.PNG", []byte("png-1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "/media/profiles/9-"))
	assert.True(t, strings.HasSuffix(first, ".png"))

	firstKey, _ := s.store.KeyFromURL(first)
	firstPath := filepath.Join(s.store.BasePath(), filepath.FromSlash(firstKey))
	_, err = os.Stat(firstPath)
	require.NoError(t, err)

	second, err := s.users.UploadProfileImage(9, "me2.jpg", []byte("jpg-2"))
	require.NoError(t, err)
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "replaced image should be removed")

	current, err = s.users.ProfileImage(9)
	require.NoError(t, err)
	assert.Equal(t, second, current)

	require.NoError(t, s.users.DeleteProfileImage(9))
	current, err = s.users.ProfileImage(9)
	require.NoError(t, err)
	assert.Empty(t, current)

	_, err = s.users.UploadProfileImage(9, "empty.png", nil)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestUserService_LoginKeepsUploadedProfileImage(t *testing.T) {
	s := newStack(t)
	_, created, err := s.users.UpsertFromLogin(9, "p", "http://k.kakaocdn.net/original.jpg")
	require.NoError(t, err)
	assert.True(t, created)

	uploaded, err := s.users.UploadProfileImage(9, "me.png", []byte("png"))
	require.NoError(t, err)

	user, created, err := s.users.UpsertFromLogin(9, "renamed", "http://k.kakaocdn.net/newer.jpg")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "renamed", user.Nickname)
	assert.Equal(t, uploaded, user.ProfileImageURL)

	key, _ := s.store.KeyFromURL(uploaded)
	_, err = os.Stat(filepath.Join(s.store.BasePath(), filepath.FromSlash(key)))
	assert.NoError(t, err)

	require.NoError(t, s.users.DeleteProfileImage(9))
	user, _, err = s.users.UpsertFromLogin(9, "renamed", "http://k.kakaocdn.net/newer.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://k.kakaocdn.net/newer.jpg", user.ProfileImageURL)
}
