package dto

import (
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/usecase"
)

type RequiredSkillRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	MinLevel string `json:"min_level" validate:"required,oneof=beginner intermediate advanced expert"`
}

type CreatePositionRequest struct {
	Title           string                 `json:"title" validate:"required,max=200"`
	Location        string                 `json:"location" validate:"max=120"`
	RequiredSkills  []RequiredSkillRequest `json:"required_skills" validate:"max=100,dive"`
	CompensationMin int64                  `json:"compensation_min" validate:"gte=0"`
	CompensationMax int64                  `json:"compensation_max" validate:"gte=0"`
	Capacity        int                    `json:"capacity" validate:"required,gte=1,lte=10000"`
	HardSkillGate   bool                   `json:"hard_skill_gate"`
}

func (r CreatePositionRequest) Input() usecase.CreatePositionInput {
	skills := make([]position.RequiredSkill, 0, len(r.RequiredSkills))
	for _, s := range r.RequiredSkills {
		lvl, _ := profile.ParseLevel(s.MinLevel)
		skills = append(skills, position.RequiredSkill{Name: s.Name, MinLevel: lvl})
	}
	return usecase.CreatePositionInput{
		Title:          r.Title,
		Location:       r.Location,
		RequiredSkills: skills,
		Compensation:   position.CompensationRange{Min: r.CompensationMin, Max: r.CompensationMax},
		Capacity:       r.Capacity,
		HardSkillGate:  r.HardSkillGate,
	}
}

type RequiredSkillResponse struct {
	Name     string `json:"name"`
	MinLevel string `json:"min_level"`
}

type PositionResponse struct {
	ID                uuid.UUID               `json:"id"`
	BusinessID        uuid.UUID               `json:"business_id"`
	Title             string                  `json:"title"`
	Location          string                  `json:"location"`
	RequiredSkills    []RequiredSkillResponse `json:"required_skills"`
	CompensationMin   int64                   `json:"compensation_min"`
	CompensationMax   int64                   `json:"compensation_max"`
	Status            string                  `json:"status"`
	Capacity          int                     `json:"capacity"`
	RemainingCapacity int                     `json:"remaining_capacity"`
	HardSkillGate     bool                    `json:"hard_skill_gate"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func NewPositionResponse(p position.Position) PositionResponse {
	skills := make([]RequiredSkillResponse, 0, len(p.RequiredSkills))
	for _, s := range p.RequiredSkills {
		skills = append(skills, RequiredSkillResponse{Name: s.Name, MinLevel: s.MinLevel.String()})
	}
	return PositionResponse{
		ID:                p.ID,
		BusinessID:        p.BusinessID,
		Title:             p.Title,
		Location:          p.Location,
		RequiredSkills:    skills,
		CompensationMin:   p.Compensation.Min,
		CompensationMax:   p.Compensation.Max,
		Status:            string(p.Status),
		Capacity:          p.Capacity,
		RemainingCapacity: p.RemainingCapacity,
		HardSkillGate:     p.HardSkillGate,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func NewPositionListResponse(items []position.Position) []PositionResponse {
	out := make([]PositionResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewPositionResponse(p))
	}
	return out
}
