package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pocketlog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, opts ...services.TokenOption) *services.TokenService {
	t.Helper()
	ts, err := services.NewTokenService("test_jwt_secret", "v1", time.Hour, opts...)
	require.NoError(t, err)
	return ts
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	ts := newTestTokenService(t, services.WithIssuer("pocketlog"))

	token, err := ts.Issue("12345", services.WithAudience("web"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	subject, err := ts.VerifySubject(token)
	assert.NoError(t, err)
	assert.Equal(t, "12345", subject)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "pocketlog", claims.Issuer)
	assert.Equal(t, "web", claims.Audience)
	assert.NotEmpty(t, claims.Id)
	assert.Equal(t, int64(time.Hour/time.Second), claims.ExpiresAt-claims.IssuedAt)
}

func TestTokenService_IssueRejectsEmptySubject(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Issue("")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestTokenService_NewRequiresSecret(t *testing.T) {
	_, err := services.NewTokenService("", "v1", time.Hour)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	ts, err := services.NewTokenService("secret", "v1", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ts.TTL())
}

func TestTokenService_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	ts := newTestTokenService(t, services.WithClock(func() time.Time { return now }))

	token, err := ts.Issue("777")
	require.NoError(t, err)

	now = issuedAt.Add(59 * time.Minute)
	_, err = ts.VerifySubject(token)
	assert.NoError(t, err)

	now = issuedAt.Add(61 * time.Minute)
	_, err = ts.VerifySubject(token)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestTokenService_Malformed(t *testing.T) {
	ts := newTestTokenService(t)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := ts.VerifySubject(token)
		assert.ErrorIs(t, err, services.ErrTokenMalformed, "token %q", token)
		assert.ErrorIs(t, err, services.ErrUnauthorized, "token %q", token)
	}
}

func TestTokenService_SignatureInvalid(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue("42")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other, err := services.NewTokenService("another_secret", "v1", time.Hour)
		require.NoError(t, err)
		_, err = other.VerifySubject(token)
		assert.ErrorIs(t, err, services.ErrTokenSignatureInvalid)
	})

	t.Run("rotated key id", func(t *testing.T) {
		rotated, err := services.NewTokenService("test_jwt_secret", "v2", time.Hour)
		require.NoError(t, err)
		_, err = rotated.VerifySubject(token)
		assert.ErrorIs(t, err, services.ErrTokenSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: "43", ExpiresAt: time.Now().Add(time.Hour).Unix()})
		forged.Header["kid"] = "v1"
		forgedString, err := forged.SignedString([]byte("guess"))
		require.NoError(t, err)
		forgedParts := strings.Split(forgedString, ".")

		_, err = ts.VerifySubject(parts[0] + "." + forgedParts[1] + "." + parts[2])
		assert.ErrorIs(t, err, services.ErrTokenSignatureInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{Subject: "42"})
		unsigned.Header["kid"] = "v1"
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ts.VerifySubject(s)
		assert.True(t, errors.Is(err, services.ErrUnauthorized))
	})
}
