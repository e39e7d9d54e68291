// Package marketplace предоставляет маршруты для основного приложения.
package marketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/health"
	planlist "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/plan/list"
	planupsert "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/plan/upsert"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/cancel"
	sublist "github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/managecounts"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/handlers/subscription/subscribe"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	planservice "github.com/magabrotheeeer/marketplace-backend/internal/services/plan"
	subservice "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage, tokenParser middlewarectx.TokenParser, planService *planservice.Service, subscriptionService *subservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/subscriptions", subscribe.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscriptions/current", cancel.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/list", sublist.New(logger, subscriptionService).ServeHTTP)
			r.Get("/plans", planlist.New(logger, planService).ServeHTTP)

			// Админские конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Put("/plans", planupsert.New(logger, planService).ServeHTTP)
				r.Put("/subscriptions/{uid}/counts", managecounts.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
