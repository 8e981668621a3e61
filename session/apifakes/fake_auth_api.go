package apifakes

import (
	"context"
	"sync"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/session"
	"github.com/certitrack/client-go/users"
	"github.com/pkg/errors"
)

var _ session.AuthAPI = (*FakeAuthAPI)(nil)

// FakeAuthAPI is a stub remote collaborator for session tests. Stub
// the per-endpoint functions you need; unstubbed endpoints fail, except
// Logout which succeeds silently like a healthy remote.
type FakeAuthAPI struct {
	LoginFn    func(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	RegisterFn func(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	RefreshFn  func(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
	LogoutFn   func(ctx context.Context) error
	ProfileFn  func(ctx context.Context) (*users.User, error)

	lock          sync.Mutex
	loginCalls    int
	registerCalls int
	refreshCalls  int
	logoutCalls   int
	profileCalls  int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	f.count(&f.loginCalls)
	if f.LoginFn == nil {
		return nil, errors.New("FakeAuthAPI.Login not stubbed")
	}
	return f.LoginFn(ctx, req)
}

func (f *FakeAuthAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	f.count(&f.registerCalls)
	if f.RegisterFn == nil {
		return nil, errors.New("FakeAuthAPI.Register not stubbed")
	}
	return f.RegisterFn(ctx, req)
}

func (f *FakeAuthAPI) Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	f.count(&f.refreshCalls)
	if f.RefreshFn == nil {
		return nil, errors.New("FakeAuthAPI.Refresh not stubbed")
	}
	return f.RefreshFn(ctx, refreshToken)
}

func (f *FakeAuthAPI) Logout(ctx context.Context) error {
	f.count(&f.logoutCalls)
	if f.LogoutFn == nil {
		return nil
	}
	return f.LogoutFn(ctx)
}

func (f *FakeAuthAPI) Profile(ctx context.Context) (*users.User, error) {
	f.count(&f.profileCalls)
	if f.ProfileFn == nil {
		return nil, errors.New("FakeAuthAPI.Profile not stubbed")
	}
	return f.ProfileFn(ctx)
}

func (f *FakeAuthAPI) LoginCalls() int    { return f.read(&f.loginCalls) }
func (f *FakeAuthAPI) RegisterCalls() int { return f.read(&f.registerCalls) }
func (f *FakeAuthAPI) RefreshCalls() int  { return f.read(&f.refreshCalls) }
func (f *FakeAuthAPI) LogoutCalls() int   { return f.read(&f.logoutCalls) }
func (f *FakeAuthAPI) ProfileCalls() int  { return f.read(&f.profileCalls) }

func (f *FakeAuthAPI) count(field *int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	*field++
}

func (f *FakeAuthAPI) read(field *int) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return *field
}
