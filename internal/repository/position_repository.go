package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hire-match/internal/database"
	"hire-match/internal/domain"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
)

// PositionFilter narrows ListPositions. Zero fields match everything.
type PositionFilter struct {
	Status     position.Status
	BusinessID uuid.UUID
}

type PositionRepository interface {
	GetPosition(ctx context.Context, id uuid.UUID) (position.Position, error)
	ListPositions(ctx context.Context, f PositionFilter) ([]position.Position, error)
	CreatePosition(ctx context.Context, p position.Position) error
	// SetPositionStatus moves a position from one status to another and
	// fails with domain.ErrConflict if it is no longer in from.
	SetPositionStatus(ctx context.Context, id uuid.UUID, from, to position.Status, at time.Time) error
}

type PostgresPositionRepository struct {
	db database.DB
}

func NewPostgresPositionRepository(db database.DB) *PostgresPositionRepository {
	return &PostgresPositionRepository{db: db}
}

const positionColumns = `id, business_id, title, location, compensation_min, compensation_max,
	status, capacity, remaining_capacity, hard_skill_gate, created_at, updated_at`

func scanPosition(row database.Row) (position.Position, error) {
	var p position.Position
	var status string
	err := row.Scan(
		&p.ID, &p.BusinessID, &p.Title, &p.Location, &p.Compensation.Min, &p.Compensation.Max,
		&status, &p.Capacity, &p.RemainingCapacity, &p.HardSkillGate, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = position.Status(status)
	return p, err
}

func (r *PostgresPositionRepository) GetPosition(ctx context.Context, id uuid.UUID) (position.Position, error) {
	p, err := scanPosition(r.db.QueryRow(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return position.Position{}, domain.NotFound("position %s", id)
		}
		return position.Position{}, err
	}

	skills, err := r.skillsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return position.Position{}, err
	}
	p.RequiredSkills = skills[id]
	return p, nil
}

func (r *PostgresPositionRepository) ListPositions(ctx context.Context, f PositionFilter) ([]position.Position, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $1")
	}
	if f.BusinessID != uuid.Nil {
		args = append(args, f.BusinessID)
		if len(args) == 1 {
			where = append(where, "business_id = $1")
		} else {
			where = append(where, "business_id = $2")
		}
	}

	q := `SELECT ` + positionColumns + ` FROM positions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]position.Position, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	skills, err := r.skillsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].RequiredSkills = skills[out[i].ID]
	}
	return out, nil
}

func (r *PostgresPositionRepository) skillsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]position.RequiredSkill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT position_id, name, min_level
		 FROM position_skills
		 WHERE position_id = ANY($1::uuid[])
		 ORDER BY position_id, name ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]position.RequiredSkill, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var s position.RequiredSkill
		var level int16
		if err := rows.Scan(&id, &s.Name, &level); err != nil {
			return nil, err
		}
		s.MinLevel = profile.Level(level)
		out[id] = append(out[id], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresPositionRepository) CreatePosition(ctx context.Context, p position.Position) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO positions (`+positionColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			p.ID, p.BusinessID, p.Title, p.Location, p.Compensation.Min, p.Compensation.Max,
			string(p.Status), p.Capacity, p.RemainingCapacity, p.HardSkillGate, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		for _, s := range p.RequiredSkills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO position_skills (position_id, name, min_level) VALUES ($1,$2,$3)`,
				p.ID, s.Name, int16(s.MinLevel),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresPositionRepository) SetPositionStatus(ctx context.Context, id uuid.UUID, from, to position.Status, at time.Time) error {
	n, err := r.db.Exec(ctx,
		`UPDATE positions SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Conflict("position %s is no longer %s", id, from)
	}
	return nil
}
