package session

import (
	"context"
	"sync"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/credentials"
	"github.com/certitrack/client-go/internal/utils"
	"github.com/certitrack/client-go/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the session's lifecycle state.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusRefreshing     Status = "refreshing"
	StatusExpired        Status = "expired"
)

// Snapshot is the read-only session record handed to subscribers. UI
// layers read it and never mutate it; mutation happens only through
// the Manager's operations.
type Snapshot struct {
	User   *users.User
	Status Status
}

// AuthAPI is what the Manager needs from the remote collaborator.
// api.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*users.User, error)
}

// Manager owns the session record. It is an explicit, injected object
// with a defined lifecycle (New → Initialize → operations), not
// ambient module state.
type Manager struct {
	store           credentials.Store
	client          AuthAPI
	navigateToLogin func()
	log             zerolog.Logger

	mu          sync.RWMutex
	status      Status
	user        *users.User
	initialized bool
	observers   []func(Snapshot)
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithNavigateToLogin sets the side effect fired when the session dies
// unrecoverably (failed refresh). The web surface redirects to /login
// here, the CLI prints a hint.
func WithNavigateToLogin(fn func()) Option {
	return func(m *Manager) { m.navigateToLogin = fn }
}

// New initializes a Manager with required dependencies. The session
// starts anonymous; call Initialize before gating anything on it.
func New(store credentials.Store, client AuthAPI, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[session.New] credential store is required")
	}
	if client == nil {
		return nil, errors.New("[session.New] api client is required")
	}

	m := &Manager{
		store:  store,
		client: client,
		status: StatusAnonymous,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// OnChange subscribes fn to every session transition. Subscribers are
// called synchronously, in registration order, outside the Manager's
// lock.
func (m *Manager) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Snapshot returns the current session record. The user is a copy;
// mutating it cannot reach back into the manager.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{User: cloneUser(m.user), Status: m.status}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Initialized reports whether Initialize has resolved. Gated views
// must show a loading state until it has.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// IsAuthenticated is true iff a user profile is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// IsAdmin is true iff a profile is present and carries the admin role.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsAdmin()
}

func (m *Manager) setInitialized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
}

func (m *Manager) transition(status Status, user *users.User) {
	m.mu.Lock()
	m.status = status
	m.user = user
	observers := make([]func(Snapshot), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	m.log.Debug().Str("status", string(status)).Bool("user", user != nil).Msg("session transition")

	snap := Snapshot{User: cloneUser(user), Status: status}
	for _, fn := range observers {
		fn(snap)
	}
}

// cloneUser copies a profile so snapshot holders can never mutate the
// manager's record.
func cloneUser(user *users.User) *users.User {
	if user == nil {
		return nil
	}
	return utils.Ptr(*user)
}
