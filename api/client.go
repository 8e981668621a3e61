// Package api is the typed client for the remote CertiTrack API. It
// owns the wire shapes and envelope decoding; token persistence and
// retry policy live in the credentials and transport packages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/certitrack/client-go/credentials"
	"github.com/certitrack/client-go/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const maxResponseBytes = 1 << 20

// Client calls the remote CertiTrack API. Credential-exchange
// endpoints (login, register, refresh) always go over the raw client
// so a refresh can never recurse through the interceptor; bearer
// endpoints (profile, logout) go over the configured http client,
// which is normally wrapped with the transport interceptor.
type Client struct {
	baseURL string
	http    *http.Client // bearer traffic (profile, logout)
	raw     *http.Client // credential exchange (login, register, refresh)
	log     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets the client used for bearer-carrying calls.
// Timeout semantics are whatever this client carries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRawClient sets the client used for credential-exchange calls.
func WithRawClient(hc *http.Client) Option {
	return func(c *Client) { c.raw = hc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		raw:     &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token pair and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/login", req, &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The remote API logs the new user in
// implicitly, so the response carries a token pair like Login's.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/register", req, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair. Rejections here
// are treated as unrecoverable by callers.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, &resp, "Token refresh failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshCredentials performs the refresh exchange and returns just the
// stored pair. It satisfies the transport package's Refresher.
func (c *Client) RefreshCredentials(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	resp, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return credentials.Pair{}, err
	}
	return credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// Logout notifies the remote API that the bearer token's session
// ended. Callers treat this as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.http, http.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// Profile fetches the current user. Goes over the intercepted client,
// so an expired access token is refreshed and retried transparently.
func (c *Client) Profile(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.do(ctx, c.http, http.MethodGet, "/profile", nil, &user, "Profile fetch failed"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out interface{}, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request")
		}
		// bytes.Reader gives net/http a GetBody, so the interceptor
		// can replay the request after a refresh.
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "[Client.do] new request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("method", method).Str("path", path).Msg("api call")

	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(err, "[Client.do] read response %s %s", method, path)
	}

	var env envelope
	// The body may be empty (logout) or unwrapped; decode failures on
	// success paths without an expected payload are not errors.
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := env.Error
		if message == "" {
			message = fallback
		}
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return errors.Errorf("[Client.do] %s %s: response carries no data", method, path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode data %s %s", method, path)
	}
	return nil
}
