package server

import (
	"context"
	"net/http"

	"github.com/certitrack/client-go/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the request's resolved session manager
const ContextKeySession ContextKey = "session"

// WithSession assembles and resolves the session for this exchange.
// Initialize completes before any downstream handler runs, so gated
// views never render against an unresolved session.
func (s *Server) WithSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mgr, err := s.sessionFor(w, r)
			if err != nil {
				s.log.Error().Err(err).Msg("building session")
				http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
				return
			}
			mgr.Initialize(r.Context())

			ctx := context.WithValue(r.Context(), ContextKeySession, mgr)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAuth gates a view on an authenticated session. Unauthenticated
// browsers are redirected to the configured login entry point. Chain
// after WithSession.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mgr := SessionFromContext(r.Context())
			if mgr == nil || !mgr.IsAuthenticated() {
				http.Redirect(w, r, s.config.GetLoginPath(), http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// RequireAdmin gates a view on the admin role. An authenticated
// non-admin gets the access-denied page, not a redirect. Chain after
// RequireAuth.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mgr := SessionFromContext(r.Context())
			if mgr == nil || !mgr.IsAdmin() {
				s.renderAccessDenied(w, mgr)
				return
			}
			next(w, r)
		}
	}
}

// SessionFromContext returns the session manager WithSession stored
// for this request, or nil outside the middleware chain.
func SessionFromContext(ctx context.Context) *session.Manager {
	mgr, _ := ctx.Value(ContextKeySession).(*session.Manager)
	return mgr
}
