package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"proofdeck/internal/middleware"
)

// RouterOptions configures the middleware stack around the handler routes.
type RouterOptions struct {
	// Auth protects the /v1 photographer routes. Required.
	Auth func(http.Handler) http.Handler
	// CORSOrigins lists the allowed browser origins. Empty disables CORS
	// handling entirely.
	CORSOrigins []string
	// RateLimit enables per-client rate limiting when non-nil. The caller
	// owns the limiter's lifecycle and stops it on shutdown.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter assembles the full HTTP surface: health probe, share-token client
// routes, and authenticated photographer routes under /v1.
func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		// Client routes are keyed by share token, not bearer identity.
		h.ShareRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(opts.Auth)
			h.Routes(r)
		})
	})

	return r
}
