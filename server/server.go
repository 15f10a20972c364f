package server

import (
	"net/http"
	"strings"

	"github.com/healthycare/healthycare/auth"
	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/internal/metrics"
	"github.com/healthycare/healthycare/placeholder"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const githubTokenURL = "https://github.com/login/oauth/access_token"

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config

	machine *auth.Machine
	api     *placeholder.Client

	metrics        *metrics.Collector
	metricsHandler http.Handler

	loginLimiter    *rate.Limiter
	exchangeLimiter *rate.Limiter

	exchangeTokenURL string
	httpClient       *http.Client
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithMetrics sets the collector recording HTTP outcomes and the handler
// serving the scrape endpoint.
func WithMetrics(collector *metrics.Collector, handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = collector
		s.metricsHandler = handler
	}
}

// WithGithubTokenURL overrides the upstream GitHub token endpoint the
// exchange proxy calls (primarily for testing).
func WithGithubTokenURL(url string) Option {
	return func(s *Server) { s.exchangeTokenURL = url }
}

// WithHTTPClient sets the HTTP client used for upstream calls (primarily
// for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) { s.httpClient = client }
}

func New(config config.Config, machine *auth.Machine, apiClient *placeholder.Client, options ...Option) (*Server, error) {
	if machine == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[Server New] auth machine is required")
	}
	if apiClient == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[Server New] placeholder api client is required")
	}

	s := &Server{
		mux:              http.NewServeMux(),
		config:           config,
		machine:          machine,
		api:              apiClient,
		exchangeTokenURL: githubTokenURL,
		httpClient:       http.DefaultClient,
	}
	s.env = config.GetEnv()

	if config.GetEnableRateLimiting() {
		perSecond := rate.Limit(float64(config.GetLoginRatePerMinute()) / 60.0)
		s.loginLimiter = rate.NewLimiter(perSecond, config.GetLoginBurst())
		s.exchangeLimiter = rate.NewLimiter(perSecond, config.GetLoginBurst())
	}

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
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
