package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/profile"
	"hire-match/internal/repository"
)

type ProfessionalInput struct {
	DisplayName     string
	Skills          []profile.Skill
	Location        string
	MinCompensation int64
	Available       bool
}

type BusinessInput struct {
	Name        string
	Industry    string
	Location    string
	Description string
}

// ProfessionalView is a profile plus its number of active applications.
type ProfessionalView struct {
	Professional       profile.Professional
	ActiveApplications int
}

type ProfileUsecase interface {
	UpsertProfessional(ctx context.Context, a actor.Actor, in ProfessionalInput) (profile.Professional, error)
	UpsertBusiness(ctx context.Context, a actor.Actor, in BusinessInput) (profile.Business, error)
	GetProfessional(ctx context.Context, a actor.Actor, professionalID uuid.UUID) (ProfessionalView, error)
}

type Profiles struct {
	profiles repository.ProfileRepository
	apps     repository.ApplicationRepository
	base
}

func NewProfileUsecase(profiles repository.ProfileRepository, apps repository.ApplicationRepository, opts ...Option) *Profiles {
	return &Profiles{profiles: profiles, apps: apps, base: newBase(opts)}
}

func (u *Profiles) UpsertProfessional(ctx context.Context, a actor.Actor, in ProfessionalInput) (profile.Professional, error) {
	if !a.Valid() || a.Role != actor.RoleProfessional {
		return profile.Professional{}, domain.Unauthorized("only the professional may edit their profile")
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return profile.Professional{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}
	if in.MinCompensation < 0 {
		return profile.Professional{}, fmt.Errorf("%w: min compensation must be non-negative", ErrInvalidInput)
	}

	byName := make(map[string]profile.Level, len(in.Skills))
	order := make([]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		key := profile.NormalizeSkillName(s.Name)
		if key == "" {
			return profile.Professional{}, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
		}
		if s.Level < profile.LevelBeginner || s.Level > profile.LevelExpert {
			return profile.Professional{}, fmt.Errorf("%w: skill %s level out of range", ErrInvalidInput, key)
		}
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		if s.Level > byName[key] {
			byName[key] = s.Level
		}
	}
	sort.Strings(order)
	skills := make([]profile.Skill, 0, len(order))
	for _, k := range order {
		skills = append(skills, profile.Skill{Name: k, Level: byName[k]})
	}

	now := u.now()
	p := profile.Professional{
		ID:              a.ID,
		DisplayName:     name,
		Skills:          skills,
		Location:        strings.TrimSpace(in.Location),
		MinCompensation: in.MinCompensation,
		Available:       in.Available,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if prev, err := u.profiles.GetProfessional(ctx, a.ID); err == nil {
		p.CreatedAt = prev.CreatedAt
	} else if domain.KindOf(err) != domain.KindNotFound {
		return profile.Professional{}, err
	}

	if err := u.profiles.SaveProfessional(ctx, p); err != nil {
		return profile.Professional{}, err
	}
	return p, nil
}

func (u *Profiles) UpsertBusiness(ctx context.Context, a actor.Actor, in BusinessInput) (profile.Business, error) {
	if !a.Valid() || a.Role != actor.RoleBusiness {
		return profile.Business{}, domain.Unauthorized("only the business may edit its profile")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return profile.Business{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	now := u.now()
	b := profile.Business{
		ID:          a.ID,
		Name:        name,
		Industry:    strings.TrimSpace(in.Industry),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev, err := u.profiles.GetBusiness(ctx, a.ID); err == nil {
		b.CreatedAt = prev.CreatedAt
	} else if domain.KindOf(err) != domain.KindNotFound {
		return profile.Business{}, err
	}

	if err := u.profiles.SaveBusiness(ctx, b); err != nil {
		return profile.Business{}, err
	}
	return b, nil
}

func (u *Profiles) GetProfessional(ctx context.Context, a actor.Actor, professionalID uuid.UUID) (ProfessionalView, error) {
	if !a.Valid() {
		return ProfessionalView{}, domain.Unauthorized("missing actor")
	}
	p, err := u.profiles.GetProfessional(ctx, professionalID)
	if err != nil {
		return ProfessionalView{}, err
	}
	apps, err := u.apps.ListApplicationsByProfessional(ctx, professionalID)
	if err != nil {
		return ProfessionalView{}, err
	}
	n := 0
	for _, app := range apps {
		if app.State.Active() {
			n++
		}
	}
	return ProfessionalView{Professional: p, ActiveApplications: n}, nil
}
