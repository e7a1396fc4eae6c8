package server

// Route path constants
const (
	RouteAuthRegister = "/auth/register"
	RouteAuthLogin    = "/auth/login"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthCSRF     = "/auth/csrf"

	RouteProfile = "/profile"
	RouteMetrics = "/metrics"
)
