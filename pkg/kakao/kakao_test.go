package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Method != http.MethodPost || r.PostForm.Get("grant_type") != "authorization_code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("redirect_uri") != "http://localhost:5173/auth/kakao" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"bearer","access_token":"kakao-access","refresh_token":"kakao-refresh","expires_in":21599}`))
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer kakao-access":
			w.Write([]byte(`{"id":375402,"properties":{"nickname":"포차코","profile_image":"http://img.example/p.png"}}`))
		case "Bearer garbage":
			w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      srv.URL + "/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		ProfileURL:   srv.URL + "/v2/user/me",
		Timeout:      2 * time.Second,
	})
}

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(Config{ClientID: "abc", AuthURL: "https://kauth.kakao.com/oauth/authorize"})

	raw := c.AuthorizeURL("https://app.example/auth/kakao", "xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "kauth.kakao.com", u.Host)
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "abc", u.Query().Get("client_id"))
	assert.Equal(t, "https://app.example/auth/kakao", u.Query().Get("redirect_uri"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
}

func TestExchangeCodeForToken(t *testing.T) {
	c := newTestClient(newTestServer(t))

	token, err := c.ExchangeCodeForToken(context.Background(), "good-code", "http://localhost:5173/auth/kakao")
	require.NoError(t, err)
	assert.Equal(t, "kakao-access", token.AccessToken)
	assert.Equal(t, "kakao-refresh", token.RefreshToken)

	_, err = c.ExchangeCodeForToken(context.Background(), "bad-code", "http://localhost:5173/auth/kakao")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchProfile(t *testing.T) {
	c := newTestClient(newTestServer(t))

	profile, err := c.FetchProfile(context.Background(), "kakao-access")
	require.NoError(t, err)
	assert.Equal(t, int64(375402), profile.ID)
	assert.Equal(t, "포차코", profile.Nickname)
	assert.Equal(t, "http://img.example/p.png", profile.ProfileImageURL)

	_, err = c.FetchProfile(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = c.FetchProfile(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(srv)
	srv.Close()

	_, err := c.ExchangeCodeForToken(context.Background(), "good-code", "http://localhost:5173/auth/kakao")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestTimeoutIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{ProfileURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.FetchProfile(context.Background(), "kakao-access")
	assert.ErrorIs(t, err, ErrUpstream)
}
