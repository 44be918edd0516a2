/**
 * @description
 * This file sets up the HTTP router for the subscription-service using the go-chi/chi router.
 * It defines the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the subscription-service routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Subscription service is healthy"))
	})

	// Category catalog is public
	r.Get("/api/categories", h.handleListCategories)

	// Protected routes that require a user identity
	r.Group(func(r chi.Router) {
		r.Use(UserAuthMiddleware)

		r.Route("/api/subscriptions", func(r chi.Router) {
			r.Post("/", h.handleCreateSubscription)
			r.Get("/", h.handleListSubscriptions)
			r.Put("/{id}", h.handleUpdateSubscription)
			r.Delete("/{id}", h.handleDeleteSubscription)
		})

		r.Get("/api/analytics/summary", h.handleAnalyticsSummary)
		r.Get("/api/analytics/predictions", h.handlePredictions)
		r.Get("/api/alerts", h.handleAlerts)
		r.Get("/api/ai/insights", h.handleAIInsights)
	})

	return r
}
