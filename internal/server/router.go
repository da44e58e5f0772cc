package server

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/companyhub/companyhub/api"
	"github.com/companyhub/companyhub/internal/handler"
	"github.com/companyhub/companyhub/internal/metrics"
	"github.com/companyhub/companyhub/internal/middleware"
	"github.com/companyhub/companyhub/internal/service"
)

// RouterConfig carries everything the HTTP routes depend on.
type RouterConfig struct {
	Logger             *slog.Logger
	IsDevelopment      bool
	AllowedOrigins     []string
	MaxRequestBodySize int64

	// TrustedProxies are the peers allowed to name the client address in
	// forwarding headers.
	TrustedProxies []netip.Prefix

	Auth      *service.AuthService
	Companies *service.CompanyService

	// RateLimiter is consulted for every request when RateLimitEnabled.
	RateLimiter      middleware.Decider
	RateLimitEnabled bool
	Metrics          metrics.Recorder

	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler
	HealthCheckers map[string]handler.HealthChecker
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := handler.New(cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.HealthCheckers)
	companyHandler := handler.NewCompanyHandler(cfg.Companies, cfg.Logger)
	registrationHandler := handler.NewRegistrationHandler(cfg.Auth, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.Auth, cfg.Logger)

	maxBody := cfg.MaxRequestBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.IsDevelopment))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MaxBodySize(maxBody))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  cfg.Logger,
		Limiter: cfg.RateLimiter,
		Metrics: cfg.Metrics,
		Enabled: cfg.RateLimitEnabled,
	}))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	r.Get("/openapi.yaml", serveSpec)

	// Registration and sessions
	r.Route("/users", func(r chi.Router) {
		r.Post("/sign_up", registrationHandler.SignUp)
		r.Post("/sign_in", sessionHandler.SignIn)
		r.Delete("/sign_out", sessionHandler.SignOut)
	})

	// API v1 routes (require authentication)
	r.Route("/api/v1/companies", func(r chi.Router) {
		r.Use(middleware.Authenticate(middleware.AuthConfig{
			Logger:        cfg.Logger,
			Authenticator: cfg.Auth,
		}))

		r.Get("/", companyHandler.List)
		r.Post("/", companyHandler.Create)
		r.Get("/{id}", companyHandler.Get)
		r.Patch("/{id}", companyHandler.Update)
		r.Put("/{id}", companyHandler.Update)
		r.Delete("/{id}", companyHandler.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.Spec)
}
