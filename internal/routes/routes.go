// internal/routes/routes.go
package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"qrstudio-backend/internal/handlers"
	"qrstudio-backend/internal/middleware"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	User        *handlers.UserHandler
	QR          *handlers.QRHandler
	History     *handlers.HistoryHandler
	Preferences *handlers.PreferencesHandler
	Usage       *handlers.UsageHandler
}

// Dependencies are the cross-cutting pieces the router needs besides the
// handlers.
type Dependencies struct {
	Logger      *zap.Logger
	Verifier    middleware.TokenVerifier
	RateLimiter *middleware.RateLimiter
	// RequestTimeout bounds every request, including PDF export.
	RequestTimeout time.Duration
	// MaxRequestBytes caps API request bodies.
	MaxRequestBytes int64
	// TrustProxyHeaders lets forwarding headers set the client address.
	TrustProxyHeaders bool
}

func SetupRoutes(h *Handlers, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP())
	}
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.CORS())

	// Health check routes
	r.Get("/", h.Health.HealthCheck)
	r.Get("/health", h.Health.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.MaxRequestBytes > 0 {
			r.Use(middleware.RequestSize(deps.MaxRequestBytes))
		}

		// Guests may generate; a bearer token, when sent, must be valid.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(deps.Verifier))
			r.Use(deps.RateLimiter.Middleware())

			r.Route("/qr", func(r chi.Router) {
				r.Post("/generate", h.QR.Generate)
				r.Post("/detect", h.QR.Detect)
				r.Post("/parse", h.QR.Parse)
				r.Post("/validate", h.QR.Validate)
				r.Post("/compose", h.QR.Compose)
				r.Post("/export/pdf", h.QR.ExportPDF)
			})
			r.Post("/render", h.QR.Render)
		})

		// Protected routes (authentication required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Verifier))
			r.Use(deps.RateLimiter.Middleware())
			r.Use(h.User.EnsureUser)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.User.Me)
				r.Get("/usage", h.Usage.GetMyUsage)
				r.Get("/usage/history", h.Usage.GetMyUsageHistory)
			})
			r.Get("/stats", h.Usage.GetGlobalStats)

			r.Route("/history", func(r chi.Router) {
				r.Get("/", h.History.List)
				r.Delete("/", h.History.Clear)
				r.Get("/search", h.History.Search)
				r.Get("/{id}", h.History.Get)
				r.Patch("/{id}", h.History.Patch)
				r.Delete("/{id}", h.History.Delete)
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", h.Preferences.Get)
				r.Put("/", h.Preferences.UpdateDefaults)
				r.Post("/presets", h.Preferences.AddPreset)
				r.Delete("/presets/{presetId}", h.Preferences.DeletePreset)
			})
		})
	})

	return r
}
