package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUpstream is returned for any transport, status or decode failure when talking to Kakao.
var ErrUpstream = errors.New("kakao request failed")

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	Timeout      time.Duration
}

// Token is the token endpoint response.
type Token struct {
	TokenType             string `json:"token_type"`
	AccessToken           string `json:"access_token"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	Scope                 string `json:"scope,omitempty"`
}

// Profile is the subset of /v2/user/me the service uses.
type Profile struct {
	ID              int64  `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image"`
}

type profileResponse struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

// Client talks to the Kakao OAuth and profile endpoints. Calls are made once, without retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Kakao client. A zero timeout defaults to 10 seconds.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// AuthorizeURL builds the login page URL the browser is sent to.
func (c *Client) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	if state != "" {
		q.Set("state", state)
	}
	return c.cfg.AuthURL + "?" + q.Encode()
}

// ExchangeCodeForToken trades an authorization code for an access token.
func (c *Client) ExchangeCodeForToken(ctx context.Context, code, redirectURI string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build token request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	var token Token
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrUpstream)
	}
	return &token, nil
}

// FetchProfile loads the account behind an access token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build profile request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var body profileResponse
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	if body.ID == 0 {
		return nil, fmt.Errorf("%w: profile response has no id", ErrUpstream)
	}
	return &Profile{
		ID:              body.ID,
		Nickname:        body.Properties.Nickname,
		ProfileImageURL: body.Properties.ProfileImage,
	}, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUpstream, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %s: %s", ErrUpstream, req.Method, req.URL.Path, strconv.Itoa(resp.StatusCode), truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
