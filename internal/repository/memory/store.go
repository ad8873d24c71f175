// Package memory is an in-process implementation of the profile, position and
// application repositories. A ChangeSet is applied under one write lock, so
// readers never see part of a commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain"
	"hire-match/internal/domain/application"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/repository"
)

var (
	_ repository.ProfileRepository     = (*Store)(nil)
	_ repository.PositionRepository    = (*Store)(nil)
	_ repository.ApplicationRepository = (*Store)(nil)
)

type Store struct {
	mu            sync.RWMutex
	professionals map[uuid.UUID]profile.Professional
	businesses    map[uuid.UUID]profile.Business
	positions     map[uuid.UUID]position.Position
	applications  map[uuid.UUID]application.Application
}

func NewStore() *Store {
	return &Store{
		professionals: make(map[uuid.UUID]profile.Professional),
		businesses:    make(map[uuid.UUID]profile.Business),
		positions:     make(map[uuid.UUID]position.Position),
		applications:  make(map[uuid.UUID]application.Application),
	}
}

func cloneProfessional(p profile.Professional) profile.Professional {
	p.Skills = append([]profile.Skill(nil), p.Skills...)
	return p
}

func clonePosition(p position.Position) position.Position {
	p.RequiredSkills = append([]position.RequiredSkill(nil), p.RequiredSkills...)
	return p
}

func cloneApplication(a application.Application, withAudit bool) application.Application {
	if withAudit {
		a.Audit = append([]application.AuditEntry(nil), a.Audit...)
	} else {
		a.Audit = nil
	}
	return a
}

func (s *Store) GetProfessional(_ context.Context, id uuid.UUID) (profile.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.professionals[id]
	if !ok {
		return profile.Professional{}, domain.NotFound("professional %s", id)
	}
	return cloneProfessional(p), nil
}

func (s *Store) GetProfessionals(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]profile.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]profile.Professional, len(ids))
	for _, id := range ids {
		if p, ok := s.professionals[id]; ok {
			out[id] = cloneProfessional(p)
		}
	}
	return out, nil
}

func (s *Store) SaveProfessional(_ context.Context, p profile.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.professionals[p.ID]; ok {
		p.CreatedAt = prev.CreatedAt
	}
	s.professionals[p.ID] = cloneProfessional(p)
	return nil
}

func (s *Store) GetBusiness(_ context.Context, id uuid.UUID) (profile.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.businesses[id]
	if !ok {
		return profile.Business{}, domain.NotFound("business %s", id)
	}
	return b, nil
}

func (s *Store) SaveBusiness(_ context.Context, b profile.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.businesses[b.ID]; ok {
		b.CreatedAt = prev.CreatedAt
	}
	s.businesses[b.ID] = b
	return nil
}

func (s *Store) GetPosition(_ context.Context, id uuid.UUID) (position.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	if !ok {
		return position.Position{}, domain.NotFound("position %s", id)
	}
	return clonePosition(p), nil
}

func (s *Store) ListPositions(_ context.Context, f repository.PositionFilter) ([]position.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]position.Position, 0)
	for _, p := range s.positions {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.BusinessID != uuid.Nil && p.BusinessID != f.BusinessID {
			continue
		}
		out = append(out, clonePosition(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreatePosition(_ context.Context, p position.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[p.BusinessID]; !ok {
		return domain.NotFound("business %s", p.BusinessID)
	}
	if _, ok := s.positions[p.ID]; ok {
		return domain.Conflict("position %s already exists", p.ID)
	}
	s.positions[p.ID] = clonePosition(p)
	return nil
}

func (s *Store) SetPositionStatus(_ context.Context, id uuid.UUID, from, to position.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[id]
	if !ok {
		return domain.NotFound("position %s", id)
	}
	if p.Status != from {
		return domain.Conflict("position %s is no longer %s", id, from)
	}
	p.Status = to
	p.UpdatedAt = at
	s.positions[id] = p
	return nil
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return application.Application{}, domain.NotFound("application %s", id)
	}
	return cloneApplication(a, true), nil
}

func (s *Store) FindActiveApplication(_ context.Context, professionalID, positionID uuid.UUID) (application.Application, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activeFor(professionalID, positionID)
	if !ok {
		return application.Application{}, false, nil
	}
	return cloneApplication(a, false), true, nil
}

func (s *Store) activeFor(professionalID, positionID uuid.UUID) (application.Application, bool) {
	for _, a := range s.applications {
		if a.ProfessionalID == professionalID && a.PositionID == positionID && a.State.Active() {
			return a, true
		}
	}
	return application.Application{}, false
}

func (s *Store) ListApplicationsByPosition(_ context.Context, positionID uuid.UUID, states ...application.State) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(a application.Application) bool {
		return a.PositionID == positionID && stateIn(a.State, states)
	}), nil
}

func (s *Store) ListApplicationsByProfessional(_ context.Context, professionalID uuid.UUID) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(a application.Application) bool {
		return a.ProfessionalID == professionalID
	}), nil
}

func (s *Store) filter(keep func(application.Application) bool) []application.Application {
	out := make([]application.Application, 0)
	for _, a := range s.applications {
		if keep(a) {
			out = append(out, cloneApplication(a, false))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func stateIn(s application.State, states []application.State) bool {
	if len(states) == 0 {
		return true
	}
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

func (s *Store) AuditTrail(_ context.Context, id uuid.UUID) ([]application.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, domain.NotFound("application %s", id)
	}
	return append([]application.AuditEntry(nil), a.Audit...), nil
}

// Commit validates the whole ChangeSet before writing any of it.
func (s *Store) Commit(_ context.Context, cs repository.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a := cs.Created; a != nil {
		if _, ok := s.applications[a.ID]; ok {
			return domain.Conflict("application %s already exists", a.ID)
		}
		if _, ok := s.activeFor(a.ProfessionalID, a.PositionID); ok {
			return domain.InvalidTransition("professional %s already has an active application for position %s", a.ProfessionalID, a.PositionID)
		}
	}

	for _, ch := range cs.Changes {
		a, ok := s.applications[ch.ApplicationID]
		if !ok {
			return domain.NotFound("application %s", ch.ApplicationID)
		}
		if a.State != ch.From {
			return domain.Conflict("application %s is no longer %s", ch.ApplicationID, ch.From)
		}
		if ch.Entry.Seq != len(a.Audit)+1 {
			return domain.Conflict("audit entry %d for application %s already written", ch.Entry.Seq, ch.ApplicationID)
		}
	}

	if c := cs.Capacity; c != nil {
		p, ok := s.positions[c.PositionID]
		if !ok {
			return domain.NotFound("position %s", c.PositionID)
		}
		if p.RemainingCapacity != c.FromRemaining || p.Status != c.FromStatus {
			return domain.Conflict("position %s capacity changed concurrently", c.PositionID)
		}
	}

	if a := cs.Created; a != nil {
		s.applications[a.ID] = cloneApplication(*a, true)
	}
	for _, ch := range cs.Changes {
		a := s.applications[ch.ApplicationID]
		a.State = ch.To
		a.UpdatedAt = cs.At
		a.Audit = append(append([]application.AuditEntry(nil), a.Audit...), ch.Entry)
		s.applications[ch.ApplicationID] = a
	}
	if c := cs.Capacity; c != nil {
		p := s.positions[c.PositionID]
		p.RemainingCapacity = c.Remaining
		p.Status = c.Status
		p.UpdatedAt = cs.At
		s.positions[c.PositionID] = p
	}
	return nil
}
