// Package session is the single source of truth for "who is logged
// in". The Manager owns the status state machine (anonymous →
// authenticating → authenticated → refreshing → expired), drives the
// remote auth endpoints through an AuthAPI, and keeps the credential
// store consistent with the visible state: no failure path leaves a
// user profile behind cleared tokens or a mismatched pair behind a
// profile.
package session

import (
	"context"
	"time"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/credentials"
	interrors "github.com/certitrack/client-go/internal/errors"
	"github.com/certitrack/client-go/token"
	"github.com/certitrack/client-go/users"
	"github.com/pkg/errors"
)

const logoutNotifyTimeout = 5 * time.Second

// Login checks the credentials against the remote API and, on success,
// stores the returned pair and profile. On rejection the session
// returns to anonymous and the error carries the remote-supplied
// message (api.Error), with the endpoint's generic fallback when the
// remote sent none.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.transition(StatusAuthenticating, nil)

	resp, err := m.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.transition(StatusAnonymous, nil)
		return errors.Wrap(err, "[Manager.Login] login exchange")
	}
	return m.adopt(resp, "[Manager.Login]")
}

// Register creates an account. The remote API logs the new user in
// implicitly, so the contract is Login's.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	m.transition(StatusAuthenticating, nil)

	resp, err := m.client.Register(ctx, req)
	if err != nil {
		m.transition(StatusAnonymous, nil)
		return errors.Wrap(err, "[Manager.Register] register exchange")
	}
	return m.adopt(resp, "[Manager.Register]")
}

// Initialize resolves the session once at start-up. With a stored
// access token it fetches the profile; any failure there means the
// credentials are stale and is recovered locally, never surfaced.
// Gated views must not render until Initialize has returned.
func (m *Manager) Initialize(ctx context.Context) {
	defer m.setInitialized()

	pair, ok := m.store.Get()
	if !ok || pair.AccessToken == "" {
		m.transition(StatusAnonymous, nil)
		return
	}

	user, err := m.client.Profile(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("stale credentials at initialize, clearing")
		if clearErr := m.store.Clear(); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("clearing stale credentials")
		}
		m.transition(StatusAnonymous, nil)
		return
	}
	m.transition(StatusAuthenticated, user)
}

// Logout clears the credential store and resets the session before
// anything else; the remote notification is fire-and-forget and its
// outcome never reaches the caller.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(); err != nil {
		m.log.Error().Err(err).Msg("clearing credentials on logout")
	}
	m.transition(StatusAnonymous, nil)

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutNotifyTimeout)
	go func() {
		defer cancel()
		if err := m.client.Logout(notifyCtx); err != nil {
			m.log.Debug().Err(err).Msg("logout notification failed")
		}
	}()
}

// Refresh runs the refresh exchange explicitly. Without a stored
// refresh token it fails immediately, no remote call. A rejected
// exchange is fatal to the session: credentials cleared, state reset,
// navigation hook fired, error surfaced after the cleanup.
func (m *Manager) Refresh(ctx context.Context) error {
	pair, ok := m.store.Get()
	if !ok || pair.RefreshToken == "" {
		return errors.Wrap(interrors.ErrNoRefreshToken, "[Manager.Refresh]")
	}

	m.transition(StatusRefreshing, m.User())

	resp, err := m.client.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		m.expire()
		return errors.Wrap(err, "[Manager.Refresh] refresh exchange")
	}

	fresh := credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if storeErr := m.store.Set(fresh); storeErr != nil {
		m.expire()
		return errors.Wrap(storeErr, "[Manager.Refresh] store pair")
	}

	user := resp.User
	if user == nil {
		// The refresh endpoint may omit the profile; keep the one we have.
		user = m.User()
	}
	m.transition(StatusAuthenticated, user)
	return nil
}

// HandleSessionExpired is the hook for the transport interceptor's
// cascade: the interceptor has already cleared the store, the session
// follows it down and navigation to the login entry point fires.
func (m *Manager) HandleSessionExpired() {
	m.expire()
}

// adopt stores the pair from a successful auth exchange and moves to
// authenticated. A store failure is treated like a failed exchange so
// a profile never sits alongside unusable credentials.
func (m *Manager) adopt(resp *api.AuthResponse, op string) error {
	pair := credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := m.store.Set(pair); err != nil {
		m.transition(StatusAnonymous, nil)
		return errors.Wrap(err, op+" store pair")
	}
	m.transition(StatusAuthenticated, resp.User)
	return nil
}

// expire tears the session down after an unrecoverable refresh
// failure: expired is observable to subscribers, then the session
// settles anonymous with the store empty.
func (m *Manager) expire() {
	if err := m.store.Clear(); err != nil {
		m.log.Error().Err(err).Msg("clearing credentials on expiry")
	}
	m.transition(StatusExpired, nil)
	m.transition(StatusAnonymous, nil)
	if m.navigateToLogin != nil {
		m.navigateToLogin()
	}
}

// TokenExpiry peeks at the stored access token's exp claim, for
// display surfaces.
func (m *Manager) TokenExpiry() (time.Time, error) {
	pair, ok := m.store.Get()
	if !ok || pair.AccessToken == "" {
		return time.Time{}, errors.New("[Manager.TokenExpiry] no access token stored")
	}
	return token.Expiry(pair.AccessToken)
}

// User returns a copy of the current profile, or nil when anonymous.
func (m *Manager) User() *users.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}
