// Package cookiestore keeps the credential pair in the browser
// client's cookies. A Store is bound to one request/response exchange:
// reads come from the request's cookies, writes go out on the response,
// and writes made earlier in the same exchange shadow what the request
// carried so the interceptor sees tokens it just refreshed.
package cookiestore

import (
	"net/http"
	"sync"
	"time"

	"github.com/certitrack/client-go/credentials"
)

// Cookie names and horizons match the certitrack browser front-end.
const (
	AccessTokenCookie  = "certitrack_access_token"
	RefreshTokenCookie = "certitrack_refresh_token"
)

type Store struct {
	w          http.ResponseWriter
	r          *http.Request
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool

	lock    sync.Mutex
	pending *credentials.Pair
	cleared bool
}

var _ credentials.Store = (*Store)(nil)

// Option defines a function type to modify the Store instance.
type Option func(*Store)

func WithAccessTTL(d time.Duration) Option {
	return func(s *Store) { s.accessTTL = d }
}

func WithRefreshTTL(d time.Duration) Option {
	return func(s *Store) { s.refreshTTL = d }
}

// WithSecure marks the cookies Secure (HTTPS-only deployments).
func WithSecure(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// New creates a cookie-backed store bound to a single exchange.
func New(w http.ResponseWriter, r *http.Request, options ...Option) *Store {
	s := &Store{
		w:          w,
		r:          r,
		accessTTL:  24 * time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get returns the pair for this exchange. A write or clear made during
// the exchange wins over whatever the request carried. The access
// cookie can be gone while the refresh cookie survives; that is not
// absence, the caller just proceeds without a bearer token.
func (s *Store) Get() (credentials.Pair, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cleared {
		return credentials.Pair{}, false
	}
	if s.pending != nil {
		return *s.pending, true
	}

	pair := credentials.Pair{
		AccessToken:  cookieValue(s.r, AccessTokenCookie),
		RefreshToken: cookieValue(s.r, RefreshTokenCookie),
	}
	if pair.Empty() {
		return credentials.Pair{}, false
	}
	return pair, true
}

// Set writes both cookies on the response. Both go out on the same
// response, so the browser applies them as a unit.
func (s *Store) Set(pair credentials.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.setCookie(AccessTokenCookie, pair.AccessToken, s.accessTTL)
	s.setCookie(RefreshTokenCookie, pair.RefreshToken, s.refreshTTL)
	s.pending = &pair
	s.cleared = false
	return nil
}

// Clear expires both cookies. Idempotent.
func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cleared {
		return nil
	}
	s.setCookie(AccessTokenCookie, "", -time.Second)
	s.setCookie(RefreshTokenCookie, "", -time.Second)
	s.pending = nil
	s.cleared = true
	return nil
}

func (s *Store) setCookie(name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
