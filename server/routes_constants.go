package server

const (
	RouteIndex     = "/"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteLogout    = "/logout"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)
