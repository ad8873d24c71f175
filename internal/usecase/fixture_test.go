package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/matching"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
	"hire-match/internal/guard"
	"hire-match/internal/metrics"
	"hire-match/internal/repository"
	"hire-match/internal/repository/memory"
)

// stepClock advances one second per reading.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type fixture struct {
	store     *memory.Store
	guard     *guard.Local
	metrics   *metrics.Metrics
	lifecycle *Lifecycle
	matching  *Matching
	catalog   *Catalog
	profiles  *Profiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	g := guard.NewLocal(guard.WithTimeout(2*time.Second), guard.WithObserver(m))
	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)

	clock := &stepClock{cur: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts := []Option{WithClock(clock.Now), WithMetrics(m)}

	return &fixture{
		store:     store,
		guard:     g,
		metrics:   m,
		lifecycle: NewLifecycleUsecase(store, store, store, g, scorer, opts...),
		matching:  NewMatchingUsecase(store, store, store, scorer, opts...),
		catalog:   NewCatalogUsecase(store, store, g, opts...),
		profiles:  NewProfileUsecase(store, store, opts...),
	}
}

func (f *fixture) business(t *testing.T) actor.Actor {
	t.Helper()
	a := actor.Actor{ID: uuid.New(), Role: actor.RoleBusiness}
	_, err := f.profiles.UpsertBusiness(context.Background(), a, BusinessInput{Name: "Acme", Location: "Berlin"})
	require.NoError(t, err)
	return a
}

func (f *fixture) professional(t *testing.T, skills ...profile.Skill) actor.Actor {
	t.Helper()
	a := actor.Actor{ID: uuid.New(), Role: actor.RoleProfessional}
	_, err := f.profiles.UpsertProfessional(context.Background(), a, ProfessionalInput{
		DisplayName:     "Pro",
		Skills:          skills,
		Location:        "Berlin",
		MinCompensation: 80000,
		Available:       true,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) position(t *testing.T, owner actor.Actor, capacity int, skills ...position.RequiredSkill) position.Position {
	t.Helper()
	p, err := f.catalog.CreatePosition(context.Background(), owner, CreatePositionInput{
		Title:          "Engineer",
		Location:       "Berlin",
		RequiredSkills: skills,
		Compensation:   position.CompensationRange{Min: 70000, Max: 100000},
		Capacity:       capacity,
	})
	require.NoError(t, err)
	return p
}

func goSkill(l profile.Level) profile.Skill { return profile.Skill{Name: "Go", Level: l} }

func needsGo(l profile.Level) position.RequiredSkill {
	return position.RequiredSkill{Name: "Go", MinLevel: l}
}

// drainCapacity zeroes remaining capacity while leaving the position open.
func (f *fixture) drainCapacity(t *testing.T, positionID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.GetPosition(ctx, positionID)
	require.NoError(t, err)
	require.NoError(t, f.store.Commit(ctx, repository.ChangeSet{
		Capacity: &repository.CapacityChange{
			PositionID:    p.ID,
			FromRemaining: p.RemainingCapacity,
			Remaining:     0,
			FromStatus:    p.Status,
			Status:        p.Status,
		},
		At: p.UpdatedAt,
	}))
}
