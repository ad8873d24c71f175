package dto

import (
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/application"
	"hire-match/internal/usecase"
)

type AuditEntryResponse struct {
	Seq       int       `json:"seq"`
	Event     string    `json:"event"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

type ApplicationResponse struct {
	ID             uuid.UUID `json:"id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	PositionID     uuid.UUID `json:"position_id"`
	State          string    `json:"state"`
	ScoreSnapshot  float64   `json:"score_snapshot"`
	SubmittedAt    time.Time `json:"submitted_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type AcceptResponse struct {
	Application     ApplicationResponse `json:"application"`
	Position        PositionResponse    `json:"position"`
	CascadeRejected []uuid.UUID         `json:"cascade_rejected"`
}

func NewApplicationResponse(a application.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:             a.ID,
		ProfessionalID: a.ProfessionalID,
		PositionID:     a.PositionID,
		State:          string(a.State),
		ScoreSnapshot:  a.ScoreSnapshot,
		SubmittedAt:    a.SubmittedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func NewApplicationListResponse(items []application.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewApplicationResponse(a))
	}
	return out
}

func NewAuditTrailResponse(entries []application.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			Seq:       e.Seq,
			Event:     string(e.Event),
			From:      string(e.From),
			To:        string(e.To),
			ActorID:   e.ActorID,
			ActorRole: string(e.ActorRole),
			Reason:    e.Reason,
			At:        e.At,
		})
	}
	return out
}

func NewAcceptResponse(r usecase.AcceptResult) AcceptResponse {
	cascaded := r.Cascaded
	if cascaded == nil {
		cascaded = []uuid.UUID{}
	}
	return AcceptResponse{
		Application:     NewApplicationResponse(r.Application),
		Position:        NewPositionResponse(r.Position),
		CascadeRejected: cascaded,
	}
}
