package position

import (
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/profile"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusPaused || s == StatusClosed
}

type RequiredSkill struct {
	Name     string
	MinLevel profile.Level
}

// CompensationRange is expressed in whole currency units per year. A zero Max
// means the range is unbounded above.
type CompensationRange struct {
	Min int64
	Max int64
}

type Position struct {
	ID                uuid.UUID
	BusinessID        uuid.UUID
	Title             string
	Location          string
	RequiredSkills    []RequiredSkill
	Compensation      CompensationRange
	Status            Status
	Capacity          int
	RemainingCapacity int
	HardSkillGate     bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p Position) OwnedBy(businessID uuid.UUID) bool {
	return businessID != uuid.Nil && p.BusinessID == businessID
}

func (p Position) HasCapacity() bool {
	return p.RemainingCapacity > 0
}
