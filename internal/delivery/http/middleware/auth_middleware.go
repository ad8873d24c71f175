package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"hire-match/internal/domain/actor"
	"hire-match/internal/pkg/jwt"
)

const CtxActorKey = "actor"

// AuthMiddleware resolves the bearer token into the actor the engine trusts.
type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, CodeUnauthenticated, "Unauthorized", nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, CodeUnauthenticated, "Token expired", err)
			}
			return NewAppError(fiber.StatusUnauthorized, CodeUnauthenticated, "Invalid token", err)
		}

		c.Locals(CtxActorKey, claims.Actor())
		return c.Next()
	}
}

// ActorFrom returns the actor set by AuthMiddleware.
func ActorFrom(c fiber.Ctx) (actor.Actor, bool) {
	a, ok := c.Locals(CtxActorKey).(actor.Actor)
	if !ok || !a.Valid() {
		return actor.Actor{}, false
	}
	return a, true
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
