package v1

import (
	"github.com/gofiber/fiber/v3"

	"hire-match/internal/delivery/http/handler"
	"hire-match/internal/delivery/http/middleware"
	"hire-match/internal/pkg/jwt"
	"hire-match/internal/usecase"
)

type Deps struct {
	JWT       jwt.Service
	Lifecycle usecase.LifecycleUsecase
	Matching  usecase.MatchingUsecase
	Catalog   usecase.CatalogUsecase
	Profiles  usecase.ProfileUsecase
}

// Register mounts every engine endpoint behind bearer-token auth.
func Register(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(deps.JWT)
	protected := r.Group("", authMw.Middleware())

	handler.NewApplicationHandler(deps.Lifecycle).RegisterRoutes(protected)
	handler.NewMatchHandler(deps.Matching).RegisterRoutes(protected)
	handler.NewPositionHandler(deps.Catalog).RegisterRoutes(protected)
	handler.NewProfileHandler(deps.Profiles).RegisterRoutes(protected)
}
