package handler

import (
	"github.com/gofiber/fiber/v3"

	"hire-match/internal/delivery/http/dto"
	"hire-match/internal/pkg/response"
	"hire-match/internal/usecase"
)

type MatchHandler struct {
	uc usecase.MatchingUsecase
}

func NewMatchHandler(uc usecase.MatchingUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/matches/positions", h.FindPositions)
	r.Get("/positions/:position_id/applicants", h.FindApplicants)
}

// FindPositions ranks open positions for the calling professional.
func (h *MatchHandler) FindPositions(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}

	var q dto.FindPositionsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	items, err := h.uc.FindPositionsFor(c.Context(), a, a.ID, q.Params())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionMatchListResponse(items))
}

func (h *MatchHandler) FindApplicants(c fiber.Ctx) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	positionID, err := paramUUID(c, "position_id")
	if err != nil {
		return err
	}

	items, err := h.uc.FindApplicantsFor(c.Context(), a, positionID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicantMatchListResponse(items))
}
