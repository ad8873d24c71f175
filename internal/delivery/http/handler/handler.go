package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hire-match/internal/delivery/http/middleware"
	"hire-match/internal/domain/actor"
	"hire-match/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func currentActor(c fiber.Ctx) (actor.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return actor.Actor{}, middleware.NewAppError(fiber.StatusUnauthorized, middleware.CodeUnauthenticated, "Unauthorized", nil)
	}
	return a, nil
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, middleware.CodeValidation, fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, middleware.CodeValidation, "Bad request", err)
	}
	return validateRequest(out)
}

func bindQuery(c fiber.Ctx, out any) error {
	if err := c.Bind().Query(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, middleware.CodeValidation, "Bad request", err)
	}
	return validateRequest(out)
}

func validateRequest(out any) error {
	if err := validate.Struct(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, middleware.CodeValidation, validationMessage(err), err)
	}
	return nil
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("validation error: %s - %s", ve[0].Namespace(), ve[0].Tag())
	}
	return "validation error: invalid request"
}

// mapUsecaseError turns input errors into validation failures. Engine errors
// pass through to the error middleware, which maps them by kind.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, usecase.ErrInvalidInput) {
		return middleware.NewAppError(fiber.StatusBadRequest, middleware.CodeValidation, err.Error(), err)
	}
	return err
}
