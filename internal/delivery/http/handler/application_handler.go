package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hire-match/internal/delivery/http/dto"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/application"
	"hire-match/internal/pkg/response"
	"hire-match/internal/usecase"
)

type ApplicationHandler struct {
	uc usecase.LifecycleUsecase
}

func NewApplicationHandler(uc usecase.LifecycleUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/positions/:position_id/applications", h.Submit)
	r.Get("/me/applications", h.ListMine)

	grp := r.Group("/applications")
	grp.Get("/:application_id", h.Get)
	grp.Get("/:application_id/audit", h.Audit)
	grp.Post("/:application_id/review", h.StartReview)
	grp.Post("/:application_id/withdraw", h.Withdraw)
	grp.Post("/:application_id/accept", h.Accept)
	grp.Post("/:application_id/reject", h.Reject)
}

func (h *ApplicationHandler) Submit(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	positionID, err := paramUUID(c, "position_id")
	if err != nil {
		return err
	}

	app, err := h.uc.Submit(c.Context(), a, positionID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) StartReview(c fiber.Ctx) error {
	return h.transition(c, h.uc.StartReview)
}

func (h *ApplicationHandler) Withdraw(c fiber.Ctx) error {
	return h.transition(c, h.uc.Withdraw)
}

func (h *ApplicationHandler) Reject(c fiber.Ctx) error {
	return h.transition(c, h.uc.Reject)
}

func (h *ApplicationHandler) transition(c fiber.Ctx, fn func(context.Context, actor.Actor, uuid.UUID) (application.Application, error)) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "application_id")
	if err != nil {
		return err
	}

	app, err := fn(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Accept(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "application_id")
	if err != nil {
		return err
	}

	res, err := h.uc.Accept(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAcceptResponse(res))
}

func (h *ApplicationHandler) Get(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "application_id")
	if err != nil {
		return err
	}

	app, err := h.uc.GetApplication(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Audit(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "application_id")
	if err != nil {
		return err
	}

	entries, err := h.uc.AuditTrail(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAuditTrailResponse(entries))
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListMyApplications(c.Context(), a)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationListResponse(items))
}
