package server

import (
	"net/http"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/session"
	"github.com/pkg/errors"
)

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteIndex {
			http.NotFound(w, r)
			return
		}
		mgr := SessionFromContext(r.Context())
		s.render(w, http.StatusOK, indexTemplate, pageData{Title: "Home", User: mgr.User()})
	}
}

func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr := SessionFromContext(r.Context())
		if mgr.IsAuthenticated() {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, loginTemplate, pageData{Title: "Log in", Error: r.URL.Query().Get("error")})
	}
}

func (s *Server) LoginSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "400 - Bad Request", http.StatusBadRequest)
			return
		}
		mgr := SessionFromContext(r.Context())

		email := r.PostFormValue("email")
		if err := mgr.Login(r.Context(), email, r.PostFormValue("password")); err != nil {
			s.log.Debug().Err(err).Str("email", email).Msg("login rejected")
			s.render(w, http.StatusOK, loginTemplate, pageData{
				Title: "Log in",
				Error: userMessage(err, "Login failed"),
				Email: email,
			})
			return
		}
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr := SessionFromContext(r.Context())
		if mgr.IsAuthenticated() {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, registerTemplate, pageData{Title: "Register"})
	}
}

func (s *Server) RegisterSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "400 - Bad Request", http.StatusBadRequest)
			return
		}
		mgr := SessionFromContext(r.Context())

		req := api.RegisterRequest{
			Email:     r.PostFormValue("email"),
			Password:  r.PostFormValue("password"),
			FirstName: r.PostFormValue("firstName"),
			LastName:  r.PostFormValue("lastName"),
			Phone:     r.PostFormValue("phone"),
		}
		if err := mgr.Register(r.Context(), req); err != nil {
			s.log.Debug().Err(err).Str("email", req.Email).Msg("registration rejected")
			s.render(w, http.StatusOK, registerTemplate, pageData{
				Title:     "Register",
				Error:     userMessage(err, "Registration failed"),
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Phone:     req.Phone,
			})
			return
		}
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr := SessionFromContext(r.Context())
		mgr.Logout(r.Context())
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr := SessionFromContext(r.Context())
		s.render(w, http.StatusOK, dashboardTemplate, pageData{
			Title: "Dashboard",
			User:  mgr.User(),
			// Placeholder statistics until the certification domain
			// endpoints exist.
			Stats: dashboardStats{},
		})
	}
}

func (s *Server) AdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr := SessionFromContext(r.Context())
		s.render(w, http.StatusOK, adminTemplate, pageData{Title: "Admin", User: mgr.User()})
	}
}

func (s *Server) renderAccessDenied(w http.ResponseWriter, mgr *session.Manager) {
	var data pageData
	data.Title = "Access Denied"
	if mgr != nil {
		data.User = mgr.User()
	}
	s.render(w, http.StatusForbidden, accessDeniedTemplate, data)
}

// userMessage extracts the remote-supplied message for display,
// falling back to a generic one for transport-level failures.
func userMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
