package dto

import (
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/profile"
	"hire-match/internal/usecase"
)

type SkillRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Level string `json:"level" validate:"required,oneof=beginner intermediate advanced expert"`
}

type UpsertProfessionalRequest struct {
	DisplayName     string         `json:"display_name" validate:"required,max=120"`
	Skills          []SkillRequest `json:"skills" validate:"max=100,dive"`
	Location        string         `json:"location" validate:"max=120"`
	MinCompensation int64          `json:"min_compensation" validate:"gte=0"`
	// Available defaults to true when omitted.
	Available *bool `json:"available"`
}

func (r UpsertProfessionalRequest) Input() usecase.ProfessionalInput {
	skills := make([]profile.Skill, 0, len(r.Skills))
	for _, s := range r.Skills {
		lvl, _ := profile.ParseLevel(s.Level)
		skills = append(skills, profile.Skill{Name: s.Name, Level: lvl})
	}
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return usecase.ProfessionalInput{
		DisplayName:     r.DisplayName,
		Skills:          skills,
		Location:        r.Location,
		MinCompensation: r.MinCompensation,
		Available:       available,
	}
}

type UpsertBusinessRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Industry    string `json:"industry" validate:"max=120"`
	Location    string `json:"location" validate:"max=120"`
	Description string `json:"description" validate:"max=4000"`
}

func (r UpsertBusinessRequest) Input() usecase.BusinessInput {
	return usecase.BusinessInput{
		Name:        r.Name,
		Industry:    r.Industry,
		Location:    r.Location,
		Description: r.Description,
	}
}

type SkillResponse struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type ProfessionalResponse struct {
	ID                 uuid.UUID       `json:"id"`
	DisplayName        string          `json:"display_name"`
	Skills             []SkillResponse `json:"skills"`
	Location           string          `json:"location"`
	MinCompensation    int64           `json:"min_compensation"`
	Available          bool            `json:"available"`
	ActiveApplications *int            `json:"active_applications,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func NewProfessionalResponse(p profile.Professional) ProfessionalResponse {
	skills := make([]SkillResponse, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, SkillResponse{Name: s.Name, Level: s.Level.String()})
	}
	return ProfessionalResponse{
		ID:              p.ID,
		DisplayName:     p.DisplayName,
		Skills:          skills,
		Location:        p.Location,
		MinCompensation: p.MinCompensation,
		Available:       p.Available,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func NewProfessionalViewResponse(v usecase.ProfessionalView) ProfessionalResponse {
	res := NewProfessionalResponse(v.Professional)
	n := v.ActiveApplications
	res.ActiveApplications = &n
	return res
}

type BusinessResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewBusinessResponse(b profile.Business) BusinessResponse {
	return BusinessResponse{
		ID:          b.ID,
		Name:        b.Name,
		Industry:    b.Industry,
		Location:    b.Location,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
