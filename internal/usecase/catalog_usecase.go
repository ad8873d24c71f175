package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/guard"
	"hire-match/internal/repository"
)

type CreatePositionInput struct {
	Title          string
	Location       string
	RequiredSkills []position.RequiredSkill
	Compensation   position.CompensationRange
	Capacity       int
	HardSkillGate  bool
}

type CatalogUsecase interface {
	CreatePosition(ctx context.Context, a actor.Actor, in CreatePositionInput) (position.Position, error)
	PausePosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error)
	ReopenPosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error)
	ClosePosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error)
	ListPositionsByBusiness(ctx context.Context, a actor.Actor, businessID uuid.UUID) ([]position.Position, error)
}

type Catalog struct {
	profiles  repository.ProfileRepository
	positions repository.PositionRepository
	guard     guard.Guard
	base
}

func NewCatalogUsecase(profiles repository.ProfileRepository, positions repository.PositionRepository, g guard.Guard, opts ...Option) *Catalog {
	return &Catalog{profiles: profiles, positions: positions, guard: g, base: newBase(opts)}
}

func (in CreatePositionInput) normalize() (CreatePositionInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Capacity < 1 {
		return in, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput)
	}
	if in.Compensation.Min < 0 || in.Compensation.Max < 0 {
		return in, fmt.Errorf("%w: compensation must be non-negative", ErrInvalidInput)
	}
	if in.Compensation.Max != 0 && in.Compensation.Max < in.Compensation.Min {
		return in, fmt.Errorf("%w: compensation max below min", ErrInvalidInput)
	}

	byName := make(map[string]profile.Level, len(in.RequiredSkills))
	for _, s := range in.RequiredSkills {
		name := profile.NormalizeSkillName(s.Name)
		if name == "" {
			return in, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
		}
		if s.MinLevel < profile.LevelBeginner || s.MinLevel > profile.LevelExpert {
			return in, fmt.Errorf("%w: skill %s level out of range", ErrInvalidInput, name)
		}
		if s.MinLevel > byName[name] {
			byName[name] = s.MinLevel
		}
	}
	skills := make([]position.RequiredSkill, 0, len(byName))
	for name, lvl := range byName {
		skills = append(skills, position.RequiredSkill{Name: name, MinLevel: lvl})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	in.RequiredSkills = skills
	return in, nil
}

func (u *Catalog) CreatePosition(ctx context.Context, a actor.Actor, in CreatePositionInput) (position.Position, error) {
	if !a.Valid() || a.Role != actor.RoleBusiness {
		return position.Position{}, domain.Unauthorized("only businesses create positions")
	}
	in, err := in.normalize()
	if err != nil {
		return position.Position{}, err
	}
	if _, err := u.profiles.GetBusiness(ctx, a.ID); err != nil {
		return position.Position{}, err
	}

	now := u.now()
	p := position.Position{
		ID:                uuid.New(),
		BusinessID:        a.ID,
		Title:             in.Title,
		Location:          in.Location,
		RequiredSkills:    in.RequiredSkills,
		Compensation:      in.Compensation,
		Status:            position.StatusOpen,
		Capacity:          in.Capacity,
		RemainingCapacity: in.Capacity,
		HardSkillGate:     in.HardSkillGate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.positions.CreatePosition(ctx, p); err != nil {
		return position.Position{}, err
	}
	u.logger.Info("position created", zap.String("position_id", p.ID.String()), zap.String("business_id", a.ID.String()))
	return p, nil
}

func (u *Catalog) PausePosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error) {
	return u.setStatus(ctx, a, positionID, position.StatusPaused)
}

func (u *Catalog) ReopenPosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error) {
	return u.setStatus(ctx, a, positionID, position.StatusOpen)
}

// ClosePosition stops new submissions. Active applications are left for the
// business to decide; only capacity exhaustion rejects them automatically.
func (u *Catalog) ClosePosition(ctx context.Context, a actor.Actor, positionID uuid.UUID) (position.Position, error) {
	return u.setStatus(ctx, a, positionID, position.StatusClosed)
}

var allowedStatus = map[position.Status][]position.Status{
	position.StatusPaused: {position.StatusOpen},
	position.StatusOpen:   {position.StatusPaused, position.StatusClosed},
	position.StatusClosed: {position.StatusOpen, position.StatusPaused},
}

func (u *Catalog) setStatus(ctx context.Context, a actor.Actor, positionID uuid.UUID, to position.Status) (position.Position, error) {
	if !a.Valid() {
		return position.Position{}, domain.Unauthorized("missing actor")
	}

	release, err := u.guard.Acquire(ctx, guard.PositionKey(positionID))
	if err != nil {
		return position.Position{}, err
	}
	defer release()

	p, err := u.positions.GetPosition(ctx, positionID)
	if err != nil {
		return position.Position{}, err
	}
	if !a.IsBusiness(p.BusinessID) {
		return position.Position{}, domain.Unauthorized("business %s does not own position %s", a.ID, p.ID)
	}

	ok := false
	for _, from := range allowedStatus[to] {
		if p.Status == from {
			ok = true
			break
		}
	}
	if !ok {
		return position.Position{}, domain.InvalidTransition("position %s cannot move from %s to %s", p.ID, p.Status, to)
	}
	if to == position.StatusOpen && !p.HasCapacity() {
		return position.Position{}, domain.InvalidTransition("position %s has no remaining capacity", p.ID)
	}

	now := u.now()
	if err := u.positions.SetPositionStatus(ctx, p.ID, p.Status, to, now); err != nil {
		return position.Position{}, err
	}
	u.logger.Info("position status changed",
		zap.String("position_id", p.ID.String()),
		zap.String("from", string(p.Status)),
		zap.String("to", string(to)),
	)
	p.Status = to
	p.UpdatedAt = now
	return p, nil
}

func (u *Catalog) ListPositionsByBusiness(ctx context.Context, a actor.Actor, businessID uuid.UUID) ([]position.Position, error) {
	if !a.IsBusiness(businessID) {
		return nil, domain.Unauthorized("positions are listed for their owner only")
	}
	return u.positions.ListPositions(ctx, repository.PositionFilter{BusinessID: businessID})
}
