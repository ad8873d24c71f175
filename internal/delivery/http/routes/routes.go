package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"hire-match/internal/delivery/http/handler"
	v1 "hire-match/internal/delivery/http/routes/v1"
	"hire-match/internal/metrics"
)

type Registry struct {
	health  *handler.HealthHandler
	metrics *metrics.Metrics
	v1      v1.Deps
}

func NewRegistry(deps v1.Deps, m *metrics.Metrics, checks map[string]handler.Pinger) *Registry {
	return &Registry{health: handler.NewHealthHandler(checks), metrics: m, v1: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerMetrics(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(r.metrics.Handler()))
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.v1)
}
