package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// TokenClaims is the full payload of an issued bearer token.
type TokenClaims struct {
	jwt.StandardClaims
}

// ClaimsOption adjusts the claims of a token before it is signed.
type ClaimsOption func(*TokenClaims)

// WithAudience sets the aud claim.
func WithAudience(audience string) ClaimsOption {
	return func(c *TokenClaims) {
		c.Audience = audience
	}
}

// TokenService issues and verifies HS256 bearer tokens.
//
// The HMAC key is derived from the configured secret and key id, so rotating
// either one invalidates every outstanding token. Tokens carry the key id in
// their "kid" header and are rejected when it does not match.
type TokenService struct {
	key    []byte
	keyID  string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithIssuer sets the iss claim of issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		s.issuer = issuer
	}
}

// NewTokenService creates a TokenService. A non-positive ttl falls back to 24 hours.
func NewTokenService(secret, keyID string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token secret must not be empty", ErrValidation)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("pocketlog-jwt:"+keyID)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	s := &TokenService{
		key:   key,
		keyID: keyID,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL is the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token whose subject is the given external identity.
func (s *TokenService) Issue(subject string, opts ...ClaimsOption) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject must not be empty", ErrValidation)
	}

	now := s.now()
	claims := &TokenClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
			Id:        uuid.New().String(),
			Issuer:    s.issuer,
		},
	}
	for _, opt := range opts {
		opt(claims)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = s.keyID

	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifySubject checks signature and expiry and returns the token subject.
// Failures are ErrTokenMalformed, ErrTokenSignatureInvalid or ErrTokenExpired,
// all of which match ErrUnauthorized with errors.Is.
func (s *TokenService) VerifySubject(tokenString string) (string, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse is VerifySubject returning the full claims.
func (s *TokenService) Parse(tokenString string) (*TokenClaims, error) {
	// Expiry is checked below against the injected clock, not jwt.TimeFunc.
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	claims := &TokenClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if kid, _ := token.Header["kid"].(string); kid != s.keyID {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return s.key, nil
	})
	if err != nil {
		kind := classifyTokenError(err)
		log.Printf("Token validation error (%v): %v", kind, err)
		return nil, kind
	}

	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return ErrTokenMalformed
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrTokenMalformed
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return ErrTokenSignatureInvalid
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
