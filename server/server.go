// Package server is the CertiTrack web front-end: the landing page,
// the login and register forms, and the gated dashboard and admin
// views. Each browser client's session lives in its cookies; per
// request the server assembles the credential store → transport
// interceptor → api client → session manager stack and gates the
// protected views on it.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/credentials/cookiestore"
	"github.com/certitrack/client-go/internal/config"
	"github.com/certitrack/client-go/session"
	"github.com/certitrack/client-go/transport"
	"github.com/rs/zerolog"
)

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	log    zerolog.Logger

	// base is the transport under the per-request interceptor, shared
	// so outbound connections are pooled across requests.
	base http.RoundTripper
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithBaseTransport sets the RoundTripper under the interceptor
// (primarily for testing).
func WithBaseTransport(base http.RoundTripper) Option {
	return func(s *Server) { s.base = base }
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[server.New] config is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		log:    zerolog.Nop(),
		base:   http.DefaultTransport,
	}
	s.env = cfg.GetEnv()
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.log.Info().Str("route", route).Msg("registered")
	}
}

// sessionFor assembles the session stack for one request/response
// exchange. The interceptor's expiry cascade feeds back into the
// manager so a dead refresh token leaves the browser anonymous with
// its cookies expired.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Manager, error) {
	store := cookiestore.New(w, r,
		cookiestore.WithAccessTTL(s.config.GetAccessTokenHorizon()),
		cookiestore.WithRefreshTTL(s.config.GetRefreshTokenHorizon()),
	)

	exchange := api.New(s.config.GetAPIBaseURL(),
		api.WithRawClient(&http.Client{Transport: s.base, Timeout: 30 * time.Second}),
		api.WithLogger(s.log),
	)

	var mgr *session.Manager
	interceptor := transport.New(store, exchange,
		transport.WithBase(s.base),
		transport.WithLogger(s.log),
		transport.WithOnExpired(func() {
			if mgr != nil {
				mgr.HandleSessionExpired()
			}
		}),
	)

	client := api.New(s.config.GetAPIBaseURL(),
		api.WithHTTPClient(&http.Client{Transport: interceptor, Timeout: 30 * time.Second}),
		api.WithRawClient(&http.Client{Transport: s.base, Timeout: 30 * time.Second}),
		api.WithLogger(s.log),
	)

	mgr, err := session.New(store, client, session.WithLogger(s.log))
	if err != nil {
		return nil, fmt.Errorf("[Server.sessionFor] %w", err)
	}
	return mgr, nil
}
