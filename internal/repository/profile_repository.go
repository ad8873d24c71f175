package repository

import (
	"context"

	"github.com/google/uuid"

	"hire-match/internal/database"
	"hire-match/internal/domain"
	"hire-match/internal/domain/profile"
)

type ProfileRepository interface {
	GetProfessional(ctx context.Context, id uuid.UUID) (profile.Professional, error)
	GetProfessionals(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]profile.Professional, error)
	SaveProfessional(ctx context.Context, p profile.Professional) error
	GetBusiness(ctx context.Context, id uuid.UUID) (profile.Business, error)
	SaveBusiness(ctx context.Context, b profile.Business) error
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetProfessional(ctx context.Context, id uuid.UUID) (profile.Professional, error) {
	var p profile.Professional
	err := r.db.QueryRow(ctx,
		`SELECT id, display_name, location, min_compensation, available, created_at, updated_at
		 FROM professionals
		 WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.DisplayName, &p.Location, &p.MinCompensation, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return profile.Professional{}, domain.NotFound("professional %s", id)
		}
		return profile.Professional{}, err
	}

	skills, err := r.skillsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return profile.Professional{}, err
	}
	p.Skills = skills[id]
	return p, nil
}

// GetProfessionals returns the profiles that exist; missing ids are absent
// from the map.
func (r *PostgresProfileRepository) GetProfessionals(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]profile.Professional, error) {
	out := make(map[uuid.UUID]profile.Professional, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, display_name, location, min_compensation, available, created_at, updated_at
		 FROM professionals
		 WHERE id = ANY($1::uuid[])`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p profile.Professional
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Location, &p.MinCompensation, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := r.skillsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, p := range out {
		p.Skills = skills[id]
		out[id] = p
	}
	return out, nil
}

func (r *PostgresProfileRepository) skillsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]profile.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT professional_id, name, level
		 FROM professional_skills
		 WHERE professional_id = ANY($1::uuid[])
		 ORDER BY professional_id, name ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]profile.Skill, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var s profile.Skill
		var level int16
		if err := rows.Scan(&id, &s.Name, &level); err != nil {
			return nil, err
		}
		s.Level = profile.Level(level)
		out[id] = append(out[id], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) SaveProfessional(ctx context.Context, p profile.Professional) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO professionals (id, display_name, location, min_compensation, available, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				location = EXCLUDED.location,
				min_compensation = EXCLUDED.min_compensation,
				available = EXCLUDED.available,
				updated_at = EXCLUDED.updated_at`,
			p.ID, p.DisplayName, p.Location, p.MinCompensation, p.Available, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM professional_skills WHERE professional_id = $1`, p.ID); err != nil {
			return err
		}
		for _, s := range p.Skills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO professional_skills (professional_id, name, level) VALUES ($1,$2,$3)`,
				p.ID, s.Name, int16(s.Level),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresProfileRepository) GetBusiness(ctx context.Context, id uuid.UUID) (profile.Business, error) {
	var b profile.Business
	err := r.db.QueryRow(ctx,
		`SELECT id, name, industry, location, description, created_at, updated_at
		 FROM businesses
		 WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.Industry, &b.Location, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return profile.Business{}, domain.NotFound("business %s", id)
		}
		return profile.Business{}, err
	}
	return b, nil
}

func (r *PostgresProfileRepository) SaveBusiness(ctx context.Context, b profile.Business) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO businesses (id, name, industry, location, description, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			industry = EXCLUDED.industry,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		b.ID, b.Name, b.Industry, b.Location, b.Description, b.CreatedAt, b.UpdatedAt,
	)
	return err
}
