package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/application"
	"hire-match/internal/domain/matching"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/repository"
)

const (
	DefaultMatchLimit = 10
	MaxMatchLimit     = 100
)

type FindPositionsParams struct {
	Limit    int
	Offset   int
	MinScore float64
}

// PositionMatch is one ranked open position. ApplicationID and
// ApplicationState are set when the professional already has an active
// application for it.
type PositionMatch struct {
	Position         position.Position
	Rank             int
	Score            float64
	Breakdown        matching.Breakdown
	ApplicationID    uuid.UUID
	ApplicationState application.State
}

type ApplicantMatch struct {
	Application  application.Application
	Professional profile.Professional
	Rank         int
	Score        float64
	Breakdown    matching.Breakdown
}

type MatchingUsecase interface {
	FindPositionsFor(ctx context.Context, a actor.Actor, professionalID uuid.UUID, p FindPositionsParams) ([]PositionMatch, error)
	FindApplicantsFor(ctx context.Context, a actor.Actor, positionID uuid.UUID) ([]ApplicantMatch, error)
}

// Matching ranks on every call and never takes guard locks.
type Matching struct {
	profiles  repository.ProfileRepository
	positions repository.PositionRepository
	apps      repository.ApplicationRepository
	scorer    matching.Scorer
	base
}

func NewMatchingUsecase(
	profiles repository.ProfileRepository,
	positions repository.PositionRepository,
	apps repository.ApplicationRepository,
	scorer matching.Scorer,
	opts ...Option,
) *Matching {
	return &Matching{profiles: profiles, positions: positions, apps: apps, scorer: scorer, base: newBase(opts)}
}

func (p FindPositionsParams) normalize() (FindPositionsParams, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return p, fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidInput)
	}
	if p.MinScore < 0 || p.MinScore > 1 {
		return p, fmt.Errorf("%w: min_score must be within [0, 1]", ErrInvalidInput)
	}
	if p.Limit == 0 {
		p.Limit = DefaultMatchLimit
	}
	if p.Limit > MaxMatchLimit {
		p.Limit = MaxMatchLimit
	}
	return p, nil
}

func (u *Matching) FindPositionsFor(ctx context.Context, a actor.Actor, professionalID uuid.UUID, p FindPositionsParams) (out []PositionMatch, err error) {
	start := time.Now()
	defer func() { u.metrics.ObserveQuery("find_positions_for", outcome(err), time.Since(start)) }()

	if !a.IsProfessional(professionalID) {
		return nil, domain.Unauthorized("matches are only visible to the professional")
	}
	p, err = p.normalize()
	if err != nil {
		return nil, err
	}

	var (
		pro  profile.Professional
		open []position.Position
		mine []application.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pro, err = u.profiles.GetProfessional(gctx, professionalID)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = u.positions.ListPositions(gctx, repository.PositionFilter{Status: position.StatusOpen})
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = u.apps.ListApplicationsByProfessional(gctx, professionalID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decided := make(map[uuid.UUID]struct{})
	active := make(map[uuid.UUID]application.Application)
	for _, app := range mine {
		switch {
		case app.State == application.StateAccepted || app.State == application.StateRejected:
			decided[app.PositionID] = struct{}{}
		case app.State.Active():
			active[app.PositionID] = app
		}
	}

	matches := make([]PositionMatch, 0, len(open))
	for _, pos := range open {
		if _, ok := decided[pos.ID]; ok {
			continue
		}
		res := u.scorer.Score(pro, pos)
		if res.Score < p.MinScore {
			continue
		}
		m := PositionMatch{Position: pos, Score: res.Score, Breakdown: res.Breakdown}
		if app, ok := active[pos.ID]; ok {
			m.ApplicationID = app.ID
			m.ApplicationState = app.State
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matching.Less(
			matching.Candidate{Score: matches[i].Score, Since: matches[i].Position.CreatedAt, ID: matches[i].Position.ID},
			matching.Candidate{Score: matches[j].Score, Since: matches[j].Position.CreatedAt, ID: matches[j].Position.ID},
		)
	})
	for i := range matches {
		matches[i].Rank = i + 1
	}

	if p.Offset >= len(matches) {
		return []PositionMatch{}, nil
	}
	end := p.Offset + p.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[p.Offset:end], nil
}

func (u *Matching) FindApplicantsFor(ctx context.Context, a actor.Actor, positionID uuid.UUID) (out []ApplicantMatch, err error) {
	start := time.Now()
	defer func() { u.metrics.ObserveQuery("find_applicants_for", outcome(err), time.Since(start)) }()

	if !a.Valid() || a.Role != actor.RoleBusiness {
		return nil, domain.Unauthorized("applicants are only visible to the owning business")
	}
	pos, err := u.positions.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if !pos.OwnedBy(a.ID) {
		return nil, domain.Unauthorized("business %s does not own position %s", a.ID, pos.ID)
	}

	apps, err := u.apps.ListApplicationsByPosition(ctx, pos.ID, application.ActiveStates()...)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ProfessionalID)
	}
	pros, err := u.profiles.GetProfessionals(ctx, ids)
	if err != nil {
		return nil, err
	}

	out = make([]ApplicantMatch, 0, len(apps))
	for _, app := range apps {
		pro, ok := pros[app.ProfessionalID]
		if !ok {
			return nil, domain.NotFound("professional %s", app.ProfessionalID)
		}
		res := u.scorer.Score(pro, pos)
		out = append(out, ApplicantMatch{Application: app, Professional: pro, Score: res.Score, Breakdown: res.Breakdown})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return matching.Less(
			matching.Candidate{Score: out[i].Score, Since: out[i].Application.SubmittedAt, ID: out[i].Application.ID},
			matching.Candidate{Score: out[j].Score, Since: out[j].Application.SubmittedAt, ID: out[j].Application.ID},
		)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
