package dto

import (
	"github.com/google/uuid"

	"hire-match/internal/domain/matching"
	"hire-match/internal/usecase"
)

type FindPositionsQuery struct {
	Limit    int     `query:"limit" validate:"gte=0"`
	Offset   int     `query:"offset" validate:"gte=0"`
	MinScore float64 `query:"min_score" validate:"gte=0,lte=1"`
}

func (q FindPositionsQuery) Params() usecase.FindPositionsParams {
	return usecase.FindPositionsParams{Limit: q.Limit, Offset: q.Offset, MinScore: q.MinScore}
}

type MatchedSkillResponse struct {
	Name         string  `json:"name"`
	Required     string  `json:"required"`
	Possessed    string  `json:"possessed"`
	Contribution float64 `json:"contribution"`
	Partial      bool    `json:"partial"`
}

type MissingSkillResponse struct {
	Name     string `json:"name"`
	Required string `json:"required"`
}

type BreakdownResponse struct {
	SkillScore        float64                `json:"skill_score"`
	CompensationScore float64                `json:"compensation_score"`
	LocationScore     float64                `json:"location_score"`
	Coverage          float64                `json:"coverage"`
	Ceiling           float64                `json:"ceiling"`
	HardGateFailed    bool                   `json:"hard_gate_failed"`
	MatchedSkills     []MatchedSkillResponse `json:"matched_skills"`
	MissingSkills     []MissingSkillResponse `json:"missing_skills"`
}

type ActiveApplicationRef struct {
	ID    uuid.UUID `json:"id"`
	State string    `json:"state"`
}

type PositionMatchResponse struct {
	Rank        int                   `json:"rank"`
	Score       float64               `json:"score"`
	Position    PositionResponse      `json:"position"`
	Breakdown   BreakdownResponse     `json:"breakdown"`
	Application *ActiveApplicationRef `json:"application,omitempty"`
}

type ApplicantMatchResponse struct {
	Rank         int                  `json:"rank"`
	Score        float64              `json:"score"`
	Application  ApplicationResponse  `json:"application"`
	Professional ProfessionalResponse `json:"professional"`
	Breakdown    BreakdownResponse    `json:"breakdown"`
}

func NewBreakdownResponse(b matching.Breakdown) BreakdownResponse {
	matched := make([]MatchedSkillResponse, 0, len(b.MatchedSkills))
	for _, m := range b.MatchedSkills {
		matched = append(matched, MatchedSkillResponse{
			Name:         m.Name,
			Required:     m.Required.String(),
			Possessed:    m.Possessed.String(),
			Contribution: m.Contribution,
			Partial:      m.Partial,
		})
	}
	missing := make([]MissingSkillResponse, 0, len(b.MissingSkills))
	for _, m := range b.MissingSkills {
		missing = append(missing, MissingSkillResponse{Name: m.Name, Required: m.Required.String()})
	}
	return BreakdownResponse{
		SkillScore:        b.SkillScore,
		CompensationScore: b.CompensationScore,
		LocationScore:     b.LocationScore,
		Coverage:          b.Coverage,
		Ceiling:           b.Ceiling,
		HardGateFailed:    b.HardGateFailed,
		MatchedSkills:     matched,
		MissingSkills:     missing,
	}
}

func NewPositionMatchListResponse(items []usecase.PositionMatch) []PositionMatchResponse {
	out := make([]PositionMatchResponse, 0, len(items))
	for _, it := range items {
		res := PositionMatchResponse{
			Rank:      it.Rank,
			Score:     it.Score,
			Position:  NewPositionResponse(it.Position),
			Breakdown: NewBreakdownResponse(it.Breakdown),
		}
		if it.ApplicationID != uuid.Nil {
			res.Application = &ActiveApplicationRef{ID: it.ApplicationID, State: string(it.ApplicationState)}
		}
		out = append(out, res)
	}
	return out
}

func NewApplicantMatchListResponse(items []usecase.ApplicantMatch) []ApplicantMatchResponse {
	out := make([]ApplicantMatchResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ApplicantMatchResponse{
			Rank:         it.Rank,
			Score:        it.Score,
			Application:  NewApplicationResponse(it.Application),
			Professional: NewProfessionalResponse(it.Professional),
			Breakdown:    NewBreakdownResponse(it.Breakdown),
		})
	}
	return out
}
