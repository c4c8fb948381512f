// Package transport serves the JSON API over HTTP.
package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/capstonehub/capstone-hub/internal/backup"
	"github.com/capstonehub/capstone-hub/internal/config"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/capstonehub/capstone-hub/internal/ratelimit"
)

// BackupTimeout bounds a backup triggered over HTTP.
const BackupTimeout = 30 * time.Second

// Config wires the server's collaborators.
type Config struct {
	Entities     *entity.Service
	Sessions     *session.Service
	Activity     *activity.Service
	Credentials  *auth.CredentialStore
	LoginLimiter ratelimit.RateLimiter
	// Backups may be nil, which disables the backup routes.
	Backups *backup.Service
	Metrics *Metrics

	Cookie      CookieConfig
	Security    config.SecurityConfig
	RateLimit   config.RateLimitConfig
	Debug       config.DebugConfig
	TrustProxy  bool
	MetricsPath string

	Logger    *slog.Logger
	StartedAt time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	entities     *entity.Service
	sessions     *session.Service
	activity     *activity.Service
	credentials  *auth.CredentialStore
	loginLimiter ratelimit.RateLimiter
	backups      *backup.Service
	metrics      *Metrics
	cookies      *cookieCodec
	debug        config.DebugConfig
	logger       *slog.Logger
	startedAt    time.Time
}

// NewServer creates an HTTP router with middleware and every API route.
func NewServer(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if src, ok := cfg.LoginLimiter.(ratelimit.StatsReporter); ok {
		cfg.Metrics.watchLoginLimiter(src)
	}
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}
	csp := cfg.Security.ContentSecurityPolicy
	if csp == "" {
		csp = config.DefaultContentSecurityPolicy
	}

	srv := &Server{
		entities:     cfg.Entities,
		sessions:     cfg.Sessions,
		activity:     cfg.Activity,
		credentials:  cfg.Credentials,
		loginLimiter: cfg.LoginLimiter,
		backups:      cfg.Backups,
		metrics:      cfg.Metrics,
		cookies:      newCookieCodec(cfg.Cookie),
		debug:        cfg.Debug,
		logger:       cfg.Logger,
		startedAt:    cfg.StartedAt,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(securityHeaders(csp))
	r.Use(middleware.Recoverer)
	r.Use(srv.observe)
	if len(cfg.Security.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   append([]string{"Content-Type"}, csrfHeaders...),
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(globalLimits(cfg.RateLimit.GlobalHourly, cfg.RateLimit.GlobalDaily)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", srv.handleHealth)
	if cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(srv.sessionMiddleware)
		r.Use(srv.idleTimeout)

		r.Post("/auth/login", srv.handleLogin)
		r.Post("/auth/logout", srv.protect(public, csrfRequired, srv.handleLogout))
		r.Get("/auth/status", srv.handleAuthStatus)
		r.Get("/auth/session-info", srv.protect(authenticated, csrfExempt, srv.handleSessionInfo))
		r.Get("/csrf-token", srv.handleCSRFToken)

		for _, d := range entity.Catalog() {
			r.Route("/"+d.Plural, func(r chi.Router) {
				r.Get("/", srv.handleListRecords(d))
				r.Post("/", srv.protect(adminOnly, csrfRequired, srv.handleCreateRecord(d)))
				for name := range d.Lookups {
					r.Get("/"+name, srv.handleLookup(d, name))
				}
				r.Get("/{id}", srv.handleGetRecord(d))
				r.Put("/{id}", srv.protect(adminOnly, csrfRequired, srv.handleUpdateRecord(d)))
				r.Delete("/{id}", srv.protect(adminOnly, csrfRequired, srv.handleDeleteRecord(d)))
			})
		}

		r.Get("/search", srv.handleSearch)
		r.Get("/analytics/dashboard", srv.handleDashboard)
		r.Post("/export/data", srv.protect(authenticated, csrfRequired, srv.handleExport))

		r.Get("/activity", srv.protect(adminOnly, csrfExempt, srv.handleActivity))
		if srv.backups != nil {
			r.Post("/admin/backup", srv.protect(adminOnly, csrfRequired, srv.handleBackup))
			r.Get("/admin/backups", srv.protect(adminOnly, csrfExempt, srv.handleListBackups))
		}

		r.Route("/_debug", func(r chi.Router) {
			r.Use(srv.debugGuard)
			r.Get("/ping", srv.handleDebugPing)
			r.Post("/set_last_seen", srv.protectDebugAdmin(srv.handleDebugSetLastSeen))
			r.Post("/force_429", srv.handleDebugForce429)
		})

		r.Get("/public/uptime", srv.handleUptime)
		r.Get("/version", srv.handleVersion)
	})

	return r
}
