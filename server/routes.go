package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCSRF, ChainMiddleware(s.CSRFTokenHandler(), s.APIMiddleware()...))

	// Session protected resources
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.GetProfileHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("PUT "+RouteProfile, ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware(s.RequireSession, s.CSRFMiddleware)...))

	// CORS preflight for every path
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	metrics := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics)
}
