package middleware

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"hire-match/internal/domain"
	"hire-match/internal/pkg/response"
)

// Codes that are not engine error kinds.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeValidation      = "validation"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, code, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Code: code, Message: message, Cause: cause}
}

// StatusForKind is the HTTP status each engine error kind maps to.
func StatusForKind(kind string) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindUnauthorized:
		return fiber.StatusForbidden
	case domain.KindInvalidTransition:
		return fiber.StatusConflict
	case domain.KindCapacityExceeded:
		return fiber.StatusUnprocessableEntity
	case domain.KindConflict:
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

type ErrorMiddleware struct {
	logger *zap.Logger
}

func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic recovered", zap.String("panic", fmt.Sprint(r)), zap.String("path", c.OriginalURL()))
				err = response.Error(c, fiber.StatusInternalServerError, domain.KindInternal, response.MessageInternalServerError)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, code, msg := normalizeError(err)
		if status >= 500 {
			m.logger.Error("request failed", zap.String("path", c.OriginalURL()), zap.Error(err))
		}
		return response.Error(c, status, code, msg)
	}
}

func normalizeError(err error) (int, string, string) {
	if err == nil {
		return fiber.StatusInternalServerError, domain.KindInternal, response.MessageInternalServerError
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, domain.KindInternal, response.MessageInternalServerError
		}
		return status, appErr.Code, appErr.Message
	}

	if kind := domain.KindOf(err); kind != domain.KindInternal {
		return StatusForKind(kind), kind, err.Error()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, domain.KindInternal, response.MessageInternalServerError
		}
		return status, "", fiberErr.Message
	}

	return fiber.StatusInternalServerError, domain.KindInternal, response.MessageInternalServerError
}
