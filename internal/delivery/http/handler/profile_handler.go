package handler

import (
	"github.com/gofiber/fiber/v3"

	"hire-match/internal/delivery/http/dto"
	"hire-match/internal/pkg/response"
	"hire-match/internal/usecase"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Put("/me/professional", h.UpsertProfessional)
	r.Put("/me/business", h.UpsertBusiness)
	r.Get("/professionals/:professional_id", h.GetProfessional)
}

func (h *ProfileHandler) UpsertProfessional(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	var req dto.UpsertProfessionalRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.UpsertProfessional(c.Context(), a, req.Input())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfessionalResponse(p))
}

func (h *ProfileHandler) UpsertBusiness(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	var req dto.UpsertBusinessRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	b, err := h.uc.UpsertBusiness(c.Context(), a, req.Input())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewBusinessResponse(b))
}

func (h *ProfileHandler) GetProfessional(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "professional_id")
	if err != nil {
		return err
	}

	v, err := h.uc.GetProfessional(c.Context(), a, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfessionalViewResponse(v))
}
