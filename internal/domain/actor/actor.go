package actor

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleBusiness     Role = "business"
	RoleProfessional Role = "professional"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleBusiness:
		return RoleBusiness, true
	case RoleProfessional:
		return RoleProfessional, true
	default:
		return "", false
	}
}

// Actor is the verified identity supplied by the auth collaborator. The engine
// trusts it as-is.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) Valid() bool {
	return a.ID != uuid.Nil && (a.Role == RoleBusiness || a.Role == RoleProfessional)
}

func (a Actor) IsBusiness(id uuid.UUID) bool {
	return a.Role == RoleBusiness && a.ID != uuid.Nil && a.ID == id
}

func (a Actor) IsProfessional(id uuid.UUID) bool {
	return a.Role == RoleProfessional && a.ID != uuid.Nil && a.ID == id
}
