package http

import (
	"net/http"
	"time"

	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Defects  service.DefectService
	Comments service.CommentService
	Audit    service.AuditService
	Identity service.IdentityService
	Tokens   service.TokenService
	Users    service.UserService
	Settings service.SettingsService
}

type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	SecureCookies     bool
}

type handler struct {
	svc Services
	cfg RouterConfig
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	h := &handler{svc: svc, cfg: cfg}
	r := chi.NewRouter()

	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithMetrics)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/auth/me", h.me)
			r.Get("/tags", h.listTags)

			r.Route("/defects", func(r chi.Router) {
				r.Get("/", h.listDefects)
				r.Post("/", h.createDefect)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getDefect)
					r.Put("/", h.updateDefect)
					r.Patch("/", h.updateDefect)
					r.With(requireAdmin).Delete("/", h.deleteDefect)

					r.Get("/versions", h.listVersions)
					r.Get("/versions/{versionNumber}", h.getVersion)

					r.Get("/comments", h.listComments)
					r.Post("/comments", h.createComment)
					r.Put("/comments/{commentId}", h.updateComment)
					r.Delete("/comments/{commentId}", h.deleteComment)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.With(requireAdmin).Get("/", h.listUsers)
				r.Get("/profile", h.getProfile)
				r.With(requireAdmin).Put("/profile", h.updateProfile)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/deleted-defects", h.listDeletedDefects)
				r.Post("/restore-defect/{id}", h.restoreDefect)
				r.Get("/audit-logs", h.listAuditLogs)
				r.Get("/settings", h.getSettings)
				r.Put("/settings", h.updateSettings)
			})
		})
	})

	return r
}

func originsIfSet(in []string) []string {
	if len(in) == 0 {
		return []string{"*"}
	}
	return in
}
