package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/config"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:      config.AppConfig{Port: ":0"},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: "file:main_app?mode=memory&cache=shared"},
		JWT:      config.JWTConfig{Secret: "test_jwt_secret", KeyID: "v1", TTL: time.Hour, Issuer: "pocketlog"},
		Kakao: config.KakaoConfig{
			ClientID:     "client",
			AuthURL:      "https://kauth.example.com/oauth/authorize",
			TokenURL:     "https://kauth.example.com/oauth/token",
			ProfileURL:   "https://kapi.example.com/v2/user/me",
			RedirectProd: "https://app.example.com/callback",
			Timeout:      time.Second,
		},
		Storage: config.StorageConfig{Path: t.TempDir(), PublicURL: "/media"},
		Feed:    config.FeedConfig{PageSize: 50},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["rabbitMQ"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/users/me", "/api/spending/today", "/api/friends/spending", "/api/reaction/reactions/by-month"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/user-nickname-check?userNickname=sally", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/kakao/login/dev", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body["loginUrl"], "https://kauth.example.com/oauth/authorize?"))
	assert.Contains(t, body["loginUrl"], "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback")
	assert.NotEmpty(t, body["state"])
}

func TestStartConsumersWithoutBroker(t *testing.T) {
	app := newTestApp(t)
	assert.NoError(t, app.StartConsumers())
}
