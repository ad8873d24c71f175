package application

import (
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/actor"
)

type State string

const (
	StateSubmitted   State = "submitted"
	StateUnderReview State = "under_review"
	StateAccepted    State = "accepted"
	StateRejected    State = "rejected"
	StateWithdrawn   State = "withdrawn"
)

func (s State) Terminal() bool {
	return s == StateAccepted || s == StateRejected || s == StateWithdrawn
}

func (s State) Active() bool {
	return s == StateSubmitted || s == StateUnderReview
}

func (s State) Valid() bool {
	return s.Active() || s.Terminal()
}

// ActiveStates lists the non-terminal states.
func ActiveStates() []State {
	return []State{StateSubmitted, StateUnderReview}
}

type Event string

const (
	EventSubmit      Event = "submit"
	EventStartReview Event = "start_review"
	EventWithdraw    Event = "withdraw"
	EventAccept      Event = "accept"
	EventReject      Event = "reject"
)

// Reason annotates audit entries written by the engine rather than directly by
// the actor's command.
const ReasonCapacityExhausted = "capacity_exhausted"

// AuditEntry is immutable once written. From is empty for the submission entry.
type AuditEntry struct {
	Seq       int
	Event     Event
	From      State
	To        State
	ActorID   uuid.UUID
	ActorRole actor.Role
	Reason    string
	At        time.Time
}

type Application struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	PositionID     uuid.UUID
	State          State
	ScoreSnapshot  float64
	SubmittedAt    time.Time
	UpdatedAt      time.Time
	Audit          []AuditEntry
}

// LastAuditAt is the timestamp of the latest audit entry, zero if none.
func (a Application) LastAuditAt() time.Time {
	if len(a.Audit) == 0 {
		return time.Time{}
	}
	return a.Audit[len(a.Audit)-1].At
}
