package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/leadintake/internal/auth"
	"github.com/BradenHooton/leadintake/internal/handlers"
	"github.com/BradenHooton/leadintake/internal/middleware"
	"github.com/BradenHooton/leadintake/internal/models"
	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether the database is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies is everything the route table needs
type Dependencies struct {
	LeadHandler  *handlers.LeadHandler
	AuthHandler  *handlers.AuthHandler
	TokenManager *auth.TokenManager
	UserRepo     auth.UserRepository
	Health       HealthChecker

	// per-IP throttles in front of the public endpoints
	SubmitRateLimit middleware.RateLimitConfig
	LoginRateLimit  middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, deps Dependencies) {
	router.Get("/health", healthHandler(deps.Health))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.With(middleware.RateLimitByIP(deps.SubmitRateLimit)).Post("/leads/submit", deps.LeadHandler.SubmitLead)
		r.With(middleware.RateLimitByIP(deps.LoginRateLimit)).Post("/auth/login", deps.AuthHandler.Login)

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(deps.TokenManager))

			r.Get("/auth/profile", deps.AuthHandler.Profile)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(deps.UserRepo, models.RoleAdmin))
				r.Get("/leads", deps.LeadHandler.ListLeads)
				r.Patch("/leads/{id}/status", deps.LeadHandler.UpdateLeadStatus)
				r.Post("/auth/register", deps.AuthHandler.Register)
			})
		})
	})
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "down",
			})
			return
		}

		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "up",
		})
	}
}
