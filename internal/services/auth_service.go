package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"pocketlog/internal/metrics"
	"pocketlog/internal/models"
	"pocketlog/pkg/kakao"
	"pocketlog/pkg/rabbitmq"

	nanoid "github.com/jaevor/go-nanoid"
)

// IdentityProvider is the OAuth provider the login flow talks to. *kakao.Client satisfies it.
type IdentityProvider interface {
	AuthorizeURL(redirectURI, state string) string
	ExchangeCodeForToken(ctx context.Context, code, redirectURI string) (*kakao.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (*kakao.Profile, error)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      *models.User `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

// AuthService handles the login handshake: code exchange, profile fetch, user upsert and token issuance.
type AuthService struct {
	provider  IdentityProvider
	users     *UserService
	tokens    *TokenService
	publisher EventPublisher
	newState  func() string
}

// NewAuthService creates a new AuthService. publisher may be nil.
func NewAuthService(provider IdentityProvider, users *UserService, tokens *TokenService, publisher EventPublisher) (*AuthService, error) {
	newState, err := nanoid.Standard(32)
	if err != nil {
		return nil, fmt.Errorf("failed to create state generator: %w", err)
	}
	return &AuthService{
		provider:  provider,
		users:     users,
		tokens:    tokens,
		publisher: publisher,
		newState:  newState,
	}, nil
}

// LoginURL builds the provider login page URL with a fresh state value.
// The server keeps no session, so the caller must compare the state Kakao echoes back before posting the code.
func (s *AuthService) LoginURL(redirectURI string) (string, string, error) {
	if redirectURI == "" {
		return "", "", fmt.Errorf("%w: redirect uri is required", ErrValidation)
	}
	state := s.newState()
	return s.provider.AuthorizeURL(redirectURI, state), state, nil
}

// ExchangeCode trades an authorization code for a provider token.
func (s *AuthService) ExchangeCode(ctx context.Context, code, redirectURI string) (*kakao.Token, error) {
	if code == "" || redirectURI == "" {
		return nil, fmt.Errorf("%w: code and redirect uri are required", ErrValidation)
	}
	token, err := s.provider.ExchangeCodeForToken(ctx, code, redirectURI)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}
	return token, nil
}

// LoginWithAccessToken fetches the provider profile, upserts the user and issues a bearer token.
func (s *AuthService) LoginWithAccessToken(ctx context.Context, accessToken string) (*LoginResult, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrValidation)
	}
	profile, err := s.provider.FetchProfile(ctx, accessToken)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}

	user, isNew, err := s.users.UpsertFromLogin(profile.ID, profile.Nickname, profile.ProfileImageURL)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.KakaoID, 10))
	if err != nil {
		return nil, err
	}

	if isNew {
		metrics.Logins.WithLabelValues("new_user").Inc()
		log.Printf("Registered new user %d", user.KakaoID)
		publishEvent(s.publisher, rabbitmq.RoutingKeyUserRegistered, UserRegisteredEvent{
			KakaoID:  user.KakaoID,
			Nickname: user.Nickname,
		})
	} else {
		metrics.Logins.WithLabelValues("returning_user").Inc()
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
		IsNewUser: isNew,
	}, nil
}

// Login runs the whole flow from an authorization code.
func (s *AuthService) Login(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	token, err := s.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}
	return s.LoginWithAccessToken(ctx, token.AccessToken)
}

// Authenticate resolves a bearer token to the external identity it was issued for.
func (s *AuthService) Authenticate(tokenString string) (int64, error) {
	subject, err := s.tokens.VerifySubject(tokenString)
	if err != nil {
		return 0, err
	}
	kakaoID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return kakaoID, nil
}
