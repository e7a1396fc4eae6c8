package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-session-refresh/auth"
	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const loginLimiterTTL = 10 * time.Minute

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions *auth.SessionService
	limiter  *ipRateLimiter // nil when rate limiting is off
	registry *prometheus.Registry
	metrics  *Metrics
}

type ServerOption func(*Server)

// WithRegistry exposes metrics from reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.registry = reg
	}
}

func New(cfg config.Config, sessions *auth.SessionService, options ...ServerOption) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("[Server New] session service is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessions,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	s.metrics = NewMetrics(s.registry)

	if cfg.GetEnableRateLimiting() {
		s.limiter = newIPRateLimiter(rate.Limit(cfg.GetLoginRatePerSecond()), cfg.GetLoginBurst(), loginLimiterTTL)
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

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
