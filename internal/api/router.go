package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/securitycam/central/internal/metrics"
	"github.com/securitycam/central/internal/middleware"
	"github.com/securitycam/central/internal/ratelimit"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Cameras *CameraHandler
	Events  *EventHandler
	Logs    *LogHandler
	Health  *HealthHandler
	Stats   *StatsHandler

	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	LimiterConfig  ratelimit.Config
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the full HTTP surface: /api/v1 JSON endpoints plus the
// unversioned /metrics scrape target.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS(h.AllowedOrigins))
	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(h.Limiter, h.LimiterConfig))

		// The websocket tail is long-lived; only the plain JSON endpoints
		// run under the request timeout.
		r.Get("/logs/stream", h.Logs.Stream)

		r.Group(func(r chi.Router) {
			if h.RequestTimeout > 0 {
				r.Use(chimw.Timeout(h.RequestTimeout))
			}

			r.Route("/cameras", func(r chi.Router) {
				r.Post("/register", h.Cameras.Register)
				r.Get("/", h.Cameras.List)
				r.Get("/{camera_id}", h.Cameras.Get)
				r.Post("/{camera_id}/heartbeat", h.Cameras.Heartbeat)
				r.Get("/{camera_id}/stats", h.Cameras.CameraStats)
			})

			r.Route("/events", func(r chi.Router) {
				r.Post("/", h.Events.Create)
				r.Get("/", h.Events.List)
				r.Get("/{id}", h.Events.Get)
				r.Get("/{id}/neighbors", h.Events.Neighbors)
				r.Patch("/{id}/files", h.Events.UpdateFile)
				r.Patch("/{id}/status", h.Events.UpdateStatus)
			})

			r.Route("/logs", func(r chi.Router) {
				r.Post("/", h.Logs.Ingest)
				r.Get("/", h.Logs.Query)
				r.Get("/after/{id}", h.Logs.QueryAfterID)
			})

			r.Get("/health", h.Health.Health)
			r.Get("/stats/overview", h.Stats.Overview)
		})
	})

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	return r
}
