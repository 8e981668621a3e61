package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware(s.WithSession())...))

	// LOGIN / REGISTER
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware(s.WithSession())...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmitHandler(), s.HTMLMiddleware(s.WithSession())...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleware(s.WithSession())...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmitHandler(), s.HTMLMiddleware(s.WithSession())...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware(s.WithSession())...))

	// Gated views: the session resolves before anything renders;
	// unauthenticated browsers are sent to the login entry point, and
	// /admin additionally requires the admin role (access denied, not
	// a redirect, for authenticated non-admins).
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.WithSession(), s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminHandler(), s.HTMLMiddleware(s.WithSession(), s.RequireAuth(), s.RequireAdmin())...))
}
