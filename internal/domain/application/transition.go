package application

import (
	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
)

type rule struct {
	from []State
	role actor.Role
	to   State
}

var rules = map[Event]rule{
	EventStartReview: {from: []State{StateSubmitted}, role: actor.RoleBusiness, to: StateUnderReview},
	EventWithdraw:    {from: []State{StateSubmitted, StateUnderReview}, role: actor.RoleProfessional, to: StateWithdrawn},
	EventAccept:      {from: []State{StateUnderReview}, role: actor.RoleBusiness, to: StateAccepted},
	EventReject:      {from: []State{StateUnderReview}, role: actor.RoleBusiness, to: StateRejected},
}

// RequiredRole returns the role allowed to issue ev.
func RequiredRole(ev Event) (actor.Role, bool) {
	r, ok := rules[ev]
	if !ok {
		return "", false
	}
	return r.role, true
}

// Next resolves the target state for ev issued from the given state. Role and
// ownership are checked by the caller, which knows the position owner and the
// applicant; guards on position status and capacity are also the caller's.
func Next(from State, ev Event) (State, error) {
	r, ok := rules[ev]
	if !ok {
		return "", domain.InvalidTransition("unknown event %q", ev)
	}
	if from.Terminal() {
		return "", domain.InvalidTransition("application is %s", from)
	}
	for _, s := range r.from {
		if s == from {
			return r.to, nil
		}
	}
	return "", domain.InvalidTransition("cannot %s from %s", ev, from)
}

// ValidPath reports whether the audit trail walks the transition table from
// submission without skipping or repeating a terminal state. A capacity
// cascade may reject from either active state.
func ValidPath(trail []AuditEntry) bool {
	if len(trail) == 0 {
		return false
	}
	first := trail[0]
	if first.Event != EventSubmit || first.From != "" || first.To != StateSubmitted {
		return false
	}
	cur := first.To
	for _, e := range trail[1:] {
		if e.From != cur {
			return false
		}
		if e.Event == EventReject && e.Reason == ReasonCapacityExhausted {
			if !cur.Active() || e.To != StateRejected {
				return false
			}
			cur = StateRejected
			continue
		}
		to, err := Next(cur, e.Event)
		if err != nil || to != e.To {
			return false
		}
		cur = to
	}
	return true
}
