package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/aura-analytics/aura-backend/app/observability/metrics"
	"github.com/aura-analytics/aura-backend/internal/api"
	"github.com/aura-analytics/aura-backend/internal/api/auth"
	"github.com/aura-analytics/aura-backend/internal/api/health"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            *auth.HandlerImpl
	HealthHandler          *health.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	APIVersion             string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Range", "X-Content-Range"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.Use(securityHeaders)
	r.Use(metrics.Instrument)

	apiPrefix := fmt.Sprintf("/api/%s", cfg.APIVersion)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
			"message":       "Welcome to Aura API",
			"version":       "1.0.0",
			"documentation": apiPrefix,
		})
	})

	r.Get("/health", cfg.HealthHandler.Status)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
				"message": fmt.Sprintf("Aura API %s", cfg.APIVersion),
				"version": "1.0.0",
				"endpoints": map[string]string{
					"health": "/health",
					"auth":   apiPrefix + "/auth",
				},
			})
		})

		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Protected routes: a valid bearer token is required or the handler
		// never runs.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Get("/auth/me", cfg.AuthHandler.GetMe)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusNotFound, map[string]interface{}{
			"error":   true,
			"message": fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
			"availableEndpoints": map[string]string{
				"health": "/health",
				"api":    apiPrefix,
			},
		})
	})

	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}
