package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dkhomenko/spendbot/internal/handlers"
	"github.com/dkhomenko/spendbot/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)

	wh := handlers.NewWebhookHandlers(deps)

	r.Mount("/webhook", wh.WebhookRoutes())
	r.Get("/healthz", handlers.Healthz)
	return r
}
