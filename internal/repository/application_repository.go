package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hire-match/internal/database"
	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/application"
	"hire-match/internal/domain/position"
)

// StateChange moves one application from From to To and appends Entry to its
// audit trail.
type StateChange struct {
	ApplicationID uuid.UUID
	From          application.State
	To            application.State
	Entry         application.AuditEntry
}

// CapacityChange rewrites a position's remaining capacity and status, guarded
// by the values the caller read.
type CapacityChange struct {
	PositionID    uuid.UUID
	FromRemaining int
	Remaining     int
	FromStatus    position.Status
	Status        position.Status
}

// ChangeSet is committed as one unit: every part applies or none does.
// A guarded value that no longer matches fails the commit with
// domain.ErrConflict.
type ChangeSet struct {
	Created  *application.Application
	Changes  []StateChange
	Capacity *CapacityChange
	At       time.Time
}

type ApplicationRepository interface {
	// GetApplication returns the application with its audit trail.
	GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error)
	FindActiveApplication(ctx context.Context, professionalID, positionID uuid.UUID) (application.Application, bool, error)
	// ListApplicationsByPosition returns applications without audit trails,
	// oldest first. No states means every state.
	ListApplicationsByPosition(ctx context.Context, positionID uuid.UUID, states ...application.State) ([]application.Application, error)
	ListApplicationsByProfessional(ctx context.Context, professionalID uuid.UUID) ([]application.Application, error)
	AuditTrail(ctx context.Context, id uuid.UUID) ([]application.AuditEntry, error)
	Commit(ctx context.Context, cs ChangeSet) error
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationColumns = `id, professional_id, position_id, state, score_snapshot, submitted_at, updated_at`

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var state string
	err := row.Scan(&a.ID, &a.ProfessionalID, &a.PositionID, &state, &a.ScoreSnapshot, &a.SubmittedAt, &a.UpdatedAt)
	a.State = application.State(state)
	return a, err
}

func (r *PostgresApplicationRepository) GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return application.Application{}, domain.NotFound("application %s", id)
		}
		return application.Application{}, err
	}

	a.Audit, err = r.auditFor(ctx, r.db, id)
	if err != nil {
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) FindActiveApplication(ctx context.Context, professionalID, positionID uuid.UUID) (application.Application, bool, error) {
	a, err := scanApplication(r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications
		 WHERE professional_id = $1 AND position_id = $2 AND state IN ('submitted', 'under_review')`,
		professionalID, positionID,
	))
	if err != nil {
		if isNoRows(err) {
			return application.Application{}, false, nil
		}
		return application.Application{}, false, err
	}
	return a, true, nil
}

func (r *PostgresApplicationRepository) ListApplicationsByPosition(ctx context.Context, positionID uuid.UUID, states ...application.State) ([]application.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE position_id = $1`
	args := []any{positionID}
	if len(states) > 0 {
		raw := make([]string, 0, len(states))
		for _, s := range states {
			raw = append(raw, string(s))
		}
		q += ` AND state = ANY($2::text[])`
		args = append(args, raw)
	}
	q += ` ORDER BY submitted_at ASC, id ASC`
	return r.list(ctx, q, args...)
}

func (r *PostgresApplicationRepository) ListApplicationsByProfessional(ctx context.Context, professionalID uuid.UUID) ([]application.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications
		 WHERE professional_id = $1
		 ORDER BY submitted_at ASC, id ASC`,
		professionalID,
	)
}

func (r *PostgresApplicationRepository) list(ctx context.Context, q string, args ...any) ([]application.Application, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) AuditTrail(ctx context.Context, id uuid.UUID) ([]application.AuditEntry, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("application %s", id)
	}
	return r.auditFor(ctx, r.db, id)
}

type querier interface {
	Query(ctx context.Context, query string, args ...any) (database.Rows, error)
}

func (r *PostgresApplicationRepository) auditFor(ctx context.Context, q querier, id uuid.UUID) ([]application.AuditEntry, error) {
	rows, err := q.Query(ctx,
		`SELECT seq, event, from_state, to_state, actor_id, actor_role, reason, at
		 FROM application_audit
		 WHERE application_id = $1
		 ORDER BY seq ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.AuditEntry, 0)
	for rows.Next() {
		var e application.AuditEntry
		var event, from, to, role string
		if err := rows.Scan(&e.Seq, &event, &from, &to, &e.ActorID, &role, &e.Reason, &e.At); err != nil {
			return nil, err
		}
		e.Event = application.Event(event)
		e.From = application.State(from)
		e.To = application.State(to)
		e.ActorRole = actor.Role(role)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) Commit(ctx context.Context, cs ChangeSet) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if a := cs.Created; a != nil {
			_, err := tx.Exec(ctx,
				`INSERT INTO applications (`+applicationColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				a.ID, a.ProfessionalID, a.PositionID, string(a.State), a.ScoreSnapshot, a.SubmittedAt, a.UpdatedAt,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return domain.InvalidTransition("professional %s already has an active application for position %s", a.ProfessionalID, a.PositionID)
				}
				return err
			}
			for _, e := range a.Audit {
				if err := insertAudit(ctx, tx, a.ID, e); err != nil {
					return err
				}
			}
		}

		for _, ch := range cs.Changes {
			n, err := tx.Exec(ctx,
				`UPDATE applications SET state = $3, updated_at = $4 WHERE id = $1 AND state = $2`,
				ch.ApplicationID, string(ch.From), string(ch.To), cs.At,
			)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.Conflict("application %s is no longer %s", ch.ApplicationID, ch.From)
			}
			if err := insertAudit(ctx, tx, ch.ApplicationID, ch.Entry); err != nil {
				return err
			}
		}

		if c := cs.Capacity; c != nil {
			n, err := tx.Exec(ctx,
				`UPDATE positions
				 SET remaining_capacity = $4, status = $5, updated_at = $6
				 WHERE id = $1 AND remaining_capacity = $2 AND status = $3`,
				c.PositionID, c.FromRemaining, string(c.FromStatus), c.Remaining, string(c.Status), cs.At,
			)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.Conflict("position %s capacity changed concurrently", c.PositionID)
			}
		}
		return nil
	})
}

func insertAudit(ctx context.Context, tx database.Tx, applicationID uuid.UUID, e application.AuditEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO application_audit (application_id, seq, event, from_state, to_state, actor_id, actor_role, reason, at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		applicationID, e.Seq, string(e.Event), string(e.From), string(e.To), e.ActorID, string(e.ActorRole), e.Reason, e.At,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("audit entry %d for application %s already written", e.Seq, applicationID)
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
