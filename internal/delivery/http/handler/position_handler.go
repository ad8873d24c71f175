package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hire-match/internal/delivery/http/dto"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/position"
	"hire-match/internal/pkg/response"
	"hire-match/internal/usecase"
)

type PositionHandler struct {
	uc usecase.CatalogUsecase
}

func NewPositionHandler(uc usecase.CatalogUsecase) *PositionHandler {
	return &PositionHandler{uc: uc}
}

func (h *PositionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/positions", h.ListMine)

	grp := r.Group("/positions")
	grp.Post("/", h.Create)
	grp.Post("/:position_id/pause", h.Pause)
	grp.Post("/:position_id/reopen", h.Reopen)
	grp.Post("/:position_id/close", h.Close)
}

func (h *PositionHandler) Create(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	var req dto.CreatePositionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.CreatePosition(c.Context(), a, req.Input())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.NewPositionResponse(p))
}

func (h *PositionHandler) Pause(c fiber.Ctx) error {
	return h.setStatus(c, h.uc.PausePosition)
}

func (h *PositionHandler) Reopen(c fiber.Ctx) error {
	return h.setStatus(c, h.uc.ReopenPosition)
}

func (h *PositionHandler) Close(c fiber.Ctx) error {
	return h.setStatus(c, h.uc.ClosePosition)
}

func (h *PositionHandler) setStatus(c fiber.Ctx, fn func(context.Context, actor.Actor, uuid.UUID) (position.Position, error)) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "position_id")
	if err != nil {
		return err
	}

	p, err := fn(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionResponse(p))
}

func (h *PositionHandler) ListMine(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListPositionsByBusiness(c.Context(), a, a.ID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionListResponse(items))
}
