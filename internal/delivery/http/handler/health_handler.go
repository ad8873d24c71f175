package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"hire-match/internal/pkg/response"
)

// Pinger is a dependency whose reachability is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	if status != fiber.StatusOK {
		return response.Success(c, status, "service unavailable", fiber.Map{"status": "degraded", "dependencies": deps})
	}
	return response.Success(c, status, response.MessageOK, fiber.Map{"status": "ok", "dependencies": deps})
}
