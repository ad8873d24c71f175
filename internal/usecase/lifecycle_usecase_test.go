package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/application"
	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
)

func TestSubmit_CreatesApplicationWithScoreSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t, goSkill(profile.LevelExpert))
	pos := f.position(t, biz, 1, needsGo(profile.LevelExpert))

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	assert.Equal(t, application.StateSubmitted, app.State)
	assert.InDelta(t, 1.0, app.ScoreSnapshot, 1e-9)
	require.Len(t, app.Audit, 1)
	assert.Equal(t, application.EventSubmit, app.Audit[0].Event)
	assert.Equal(t, application.State(""), app.Audit[0].From)
	assert.Equal(t, pro.ID, app.Audit[0].ActorID)
}

func TestSubmit_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	_, err := f.lifecycle.Submit(ctx, biz, pos.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.lifecycle.Submit(ctx, pro, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stranger := actor.Actor{ID: uuid.New(), Role: actor.RoleProfessional}
	_, err = f.lifecycle.Submit(ctx, stranger, pos.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.catalog.PausePosition(ctx, biz, pos.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.Submit(ctx, pro, pos.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
}

func TestSubmit_UnavailableProfessional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pos := f.position(t, biz, 1)
	pro := actor.Actor{ID: uuid.New(), Role: actor.RoleProfessional}
	_, err := f.profiles.UpsertProfessional(ctx, pro, ProfessionalInput{DisplayName: "Busy", Available: false})
	require.NoError(t, err)

	_, err = f.lifecycle.Submit(ctx, pro, pos.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
}

func TestSubmit_DuplicateActiveApplicationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	_, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Submit(ctx, pro, pos.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

	mine, err := f.lifecycle.ListMyApplications(ctx, pro)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestSubmit_ConcurrentDuplicatesYieldOneActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.Submit(ctx, pro, pos.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	}
	assert.Equal(t, 1, ok)
}

func TestWithdrawThenResubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	a3, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	a3, err = f.lifecycle.Withdraw(ctx, pro, a3.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StateWithdrawn, a3.State)

	a4, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a3.ID, a4.ID)
	assert.Equal(t, application.StateSubmitted, a4.State)
}

func TestTransitions_RoleAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	other := f.business(t)
	pro := f.professional(t)
	intruder := f.professional(t)
	pos := f.position(t, biz, 1)

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	cases := []struct {
		name string
		run  func() error
	}{
		{"professional starts review", func() error { _, err := f.lifecycle.StartReview(ctx, pro, app.ID); return err }},
		{"other business starts review", func() error { _, err := f.lifecycle.StartReview(ctx, other, app.ID); return err }},
		{"business withdraws", func() error { _, err := f.lifecycle.Withdraw(ctx, biz, app.ID); return err }},
		{"other professional withdraws", func() error { _, err := f.lifecycle.Withdraw(ctx, intruder, app.ID); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}

	got, err := f.lifecycle.GetApplication(ctx, pro, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StateSubmitted, got.State)
	assert.Len(t, got.Audit, 1)
}

func TestAccept_RequiresReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Accept(ctx, biz, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	_, err = f.lifecycle.Reject(ctx, biz, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
}

func TestStartReview_RequiresOpenPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)
	_, err = f.catalog.PausePosition(ctx, biz, pos.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.StartReview(ctx, biz, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

	_, err = f.catalog.ReopenPosition(ctx, biz, pos.ID)
	require.NoError(t, err)
	got, err := f.lifecycle.StartReview(ctx, biz, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StateUnderReview, got.State)
}

func TestAccept_CapacityOneCascadesRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	p1 := f.professional(t)
	p2 := f.professional(t)
	p3 := f.professional(t)
	j2 := f.position(t, biz, 1)

	a1, err := f.lifecycle.Submit(ctx, p1, j2.ID)
	require.NoError(t, err)
	a2, err := f.lifecycle.Submit(ctx, p2, j2.ID)
	require.NoError(t, err)
	a3, err := f.lifecycle.Submit(ctx, p3, j2.ID)
	require.NoError(t, err)
	for _, id := range []uuid.UUID{a1.ID, a2.ID} {
		_, err := f.lifecycle.StartReview(ctx, biz, id)
		require.NoError(t, err)
	}

	res, err := f.lifecycle.Accept(ctx, biz, a1.ID)
	require.NoError(t, err)

	assert.Equal(t, application.StateAccepted, res.Application.State)
	assert.Equal(t, position.StatusClosed, res.Position.Status)
	assert.Zero(t, res.Position.RemainingCapacity)
	assert.ElementsMatch(t, []uuid.UUID{a2.ID, a3.ID}, res.Cascaded)

	acceptedAt := res.Application.Audit[len(res.Application.Audit)-1].At
	for _, id := range []uuid.UUID{a2.ID, a3.ID} {
		got, err := f.lifecycle.GetApplication(ctx, biz, id)
		require.NoError(t, err)
		assert.Equal(t, application.StateRejected, got.State)
		last := got.Audit[len(got.Audit)-1]
		assert.Equal(t, application.ReasonCapacityExhausted, last.Reason)
		assert.Equal(t, acceptedAt, last.At)
		assert.True(t, application.ValidPath(got.Audit))
	}

	stored, err := f.store.GetPosition(ctx, j2.ID)
	require.NoError(t, err)
	assert.Equal(t, position.StatusClosed, stored.Status)
	n, err := testutil.GatherAndCount(f.metrics.Registry(), "application_cascade_rejections")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAccept_NoCapacityLeavesApplicationUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	p1 := f.professional(t)
	p2 := f.professional(t)
	pos := f.position(t, biz, 2)

	a1, err := f.lifecycle.Submit(ctx, p1, pos.ID)
	require.NoError(t, err)
	a2, err := f.lifecycle.Submit(ctx, p2, pos.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.StartReview(ctx, biz, a1.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.StartReview(ctx, biz, a2.ID)
	require.NoError(t, err)

	res, err := f.lifecycle.Accept(ctx, biz, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Position.RemainingCapacity)
	assert.Equal(t, position.StatusOpen, res.Position.Status)
	assert.Empty(t, res.Cascaded)

	// Force the position to zero remaining without the cascade to hit the
	// capacity guard directly.
	f.drainCapacity(t, pos.ID)

	_, err = f.lifecycle.Accept(ctx, biz, a2.ID)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, domain.KindCapacityExceeded, domain.KindOf(err))

	got, err := f.lifecycle.GetApplication(ctx, biz, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StateUnderReview, got.State)
	assert.Len(t, got.Audit, 2)
}

func TestTerminalRetriesAreInvalidAndLeaveNoAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 3)

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.StartReview(ctx, biz, app.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.Reject(ctx, biz, app.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Reject(ctx, biz, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	_, err = f.lifecycle.Accept(ctx, biz, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	_, err = f.lifecycle.Withdraw(ctx, pro, app.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

	trail, err := f.lifecycle.AuditTrail(ctx, pro, app.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.True(t, application.ValidPath(trail))
	for i := 1; i < len(trail); i++ {
		assert.False(t, trail[i].At.Before(trail[i-1].At))
		assert.Equal(t, i+1, trail[i].Seq)
	}
}

func TestAccept_ConcurrentAcceptsNeverOverrunCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	pos := f.position(t, biz, 1)

	const n = 8
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		pro := f.professional(t)
		app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
		require.NoError(t, err)
		_, err = f.lifecycle.StartReview(ctx, biz, app.ID)
		require.NoError(t, err)
		ids = append(ids, app.ID)
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.Accept(ctx, biz, id)
		}(i, id)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		// Losers were cascade-rejected before they got the lock.
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
	}
	assert.Equal(t, 1, accepted)

	apps, err := f.store.ListApplicationsByPosition(ctx, pos.ID)
	require.NoError(t, err)
	states := map[application.State]int{}
	for _, a := range apps {
		states[a.State]++
	}
	assert.Equal(t, 1, states[application.StateAccepted])
	assert.Equal(t, n-1, states[application.StateRejected])

	stored, err := f.store.GetPosition(ctx, pos.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RemainingCapacity)
	assert.Equal(t, position.StatusClosed, stored.Status)
}

func TestAccept_RaceWithWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	p1 := f.professional(t)
	p2 := f.professional(t)
	pos := f.position(t, biz, 1)

	a1, err := f.lifecycle.Submit(ctx, p1, pos.ID)
	require.NoError(t, err)
	a2, err := f.lifecycle.Submit(ctx, p2, pos.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.StartReview(ctx, biz, a1.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var withdrawErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.lifecycle.Accept(ctx, biz, a1.ID)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, withdrawErr = f.lifecycle.Withdraw(ctx, p2, a2.ID)
	}()
	wg.Wait()

	got, err := f.lifecycle.GetApplication(ctx, p2, a2.ID)
	require.NoError(t, err)
	require.Len(t, got.Audit, 2)
	assert.True(t, application.ValidPath(got.Audit))
	if withdrawErr == nil {
		assert.Equal(t, application.StateWithdrawn, got.State)
	} else {
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(withdrawErr))
		assert.Equal(t, application.StateRejected, got.State)
	}
}

func TestCancelledContextLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	biz := f.business(t)
	pro := f.professional(t)
	pos := f.position(t, biz, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	assert.ErrorIs(t, err, context.Canceled)

	mine, err := f.lifecycle.ListMyApplications(context.Background(), pro)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGetApplication_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	biz := f.business(t)
	other := f.business(t)
	pro := f.professional(t)
	stranger := f.professional(t)
	pos := f.position(t, biz, 1)

	app, err := f.lifecycle.Submit(ctx, pro, pos.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.GetApplication(ctx, biz, app.ID)
	assert.NoError(t, err)
	_, err = f.lifecycle.GetApplication(ctx, other, app.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.lifecycle.AuditTrail(ctx, stranger, app.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.lifecycle.GetApplication(ctx, pro, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
