package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hire-match/internal/domain"
	"hire-match/internal/domain/actor"
	"hire-match/internal/domain/application"
	"hire-match/internal/domain/matching"
	"hire-match/internal/domain/position"
	"hire-match/internal/guard"
	"hire-match/internal/repository"
)

type LifecycleUsecase interface {
	Submit(ctx context.Context, a actor.Actor, positionID uuid.UUID) (application.Application, error)
	StartReview(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error)
	Withdraw(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error)
	Accept(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (AcceptResult, error)
	Reject(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error)

	GetApplication(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error)
	AuditTrail(ctx context.Context, a actor.Actor, applicationID uuid.UUID) ([]application.AuditEntry, error)
	ListMyApplications(ctx context.Context, a actor.Actor) ([]application.Application, error)
}

// AcceptResult reports the accepted application, the position after its
// capacity was decremented, and any applications rejected because the accept
// exhausted the position.
type AcceptResult struct {
	Application application.Application
	Position    position.Position
	Cascaded    []uuid.UUID
}

type Lifecycle struct {
	profiles  repository.ProfileRepository
	positions repository.PositionRepository
	apps      repository.ApplicationRepository
	guard     guard.Guard
	scorer    matching.Scorer
	base
}

func NewLifecycleUsecase(
	profiles repository.ProfileRepository,
	positions repository.PositionRepository,
	apps repository.ApplicationRepository,
	g guard.Guard,
	scorer matching.Scorer,
	opts ...Option,
) *Lifecycle {
	return &Lifecycle{
		profiles:  profiles,
		positions: positions,
		apps:      apps,
		guard:     g,
		scorer:    scorer,
		base:      newBase(opts),
	}
}

func (u *Lifecycle) Submit(ctx context.Context, a actor.Actor, positionID uuid.UUID) (app application.Application, err error) {
	defer func() { u.observe(application.EventSubmit, app.ID, a, app, err) }()

	if !a.Valid() {
		return application.Application{}, domain.Unauthorized("missing actor")
	}
	if a.Role != actor.RoleProfessional {
		return application.Application{}, domain.Forbidden("only professionals submit applications")
	}

	release, err := u.guard.Acquire(ctx, guard.PositionKey(positionID))
	if err != nil {
		return application.Application{}, err
	}
	defer release()

	pro, err := u.profiles.GetProfessional(ctx, a.ID)
	if err != nil {
		return application.Application{}, err
	}
	pos, err := u.positions.GetPosition(ctx, positionID)
	if err != nil {
		return application.Application{}, err
	}
	if pos.Status != position.StatusOpen {
		return application.Application{}, domain.InvalidTransition("position %s is %s", pos.ID, pos.Status)
	}
	if !pro.Available {
		return application.Application{}, domain.InvalidTransition("professional %s is not available", pro.ID)
	}

	if _, ok, err := u.apps.FindActiveApplication(ctx, pro.ID, pos.ID); err != nil {
		return application.Application{}, err
	} else if ok {
		return application.Application{}, domain.InvalidTransition("professional %s already has an active application for position %s", pro.ID, pos.ID)
	}

	at := u.now()
	app = application.Application{
		ID:             uuid.New(),
		ProfessionalID: pro.ID,
		PositionID:     pos.ID,
		State:          application.StateSubmitted,
		ScoreSnapshot:  u.scorer.Score(pro, pos).Score,
		SubmittedAt:    at,
		UpdatedAt:      at,
		Audit: []application.AuditEntry{{
			Seq:       1,
			Event:     application.EventSubmit,
			To:        application.StateSubmitted,
			ActorID:   a.ID,
			ActorRole: a.Role,
			At:        at,
		}},
	}
	if err := u.apps.Commit(ctx, repository.ChangeSet{Created: &app, At: at}); err != nil {
		return application.Application{}, err
	}
	return app, nil
}

func (u *Lifecycle) StartReview(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error) {
	return u.transition(ctx, a, applicationID, application.EventStartReview)
}

func (u *Lifecycle) Withdraw(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error) {
	return u.transition(ctx, a, applicationID, application.EventWithdraw)
}

func (u *Lifecycle) Reject(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error) {
	return u.transition(ctx, a, applicationID, application.EventReject)
}

// transition handles every single-application command. start_review also
// locks the position because its guard reads the position status.
func (u *Lifecycle) transition(ctx context.Context, a actor.Actor, applicationID uuid.UUID, ev application.Event) (app application.Application, err error) {
	defer func() { u.observe(ev, applicationID, a, app, err) }()

	if !a.Valid() {
		return application.Application{}, domain.Unauthorized("missing actor")
	}

	keys := []guard.Key{guard.ApplicationKey(applicationID)}
	if ev == application.EventStartReview {
		// Position identity never changes, so reading it unlocked is safe.
		cur, err := u.apps.GetApplication(ctx, applicationID)
		if err != nil {
			return application.Application{}, err
		}
		keys = append(keys, guard.PositionKey(cur.PositionID))
	}

	release, err := u.guard.Acquire(ctx, keys...)
	if err != nil {
		return application.Application{}, err
	}
	defer release()

	app, err = u.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	pos, err := u.positions.GetPosition(ctx, app.PositionID)
	if err != nil {
		return application.Application{}, err
	}
	if err := authorize(a, ev, app, pos); err != nil {
		return application.Application{}, err
	}

	to, err := application.Next(app.State, ev)
	if err != nil {
		return application.Application{}, err
	}
	if ev == application.EventStartReview && pos.Status != position.StatusOpen {
		return application.Application{}, domain.InvalidTransition("position %s is %s", pos.ID, pos.Status)
	}

	at := auditTime(u.now(), app)
	change := stateChange(app, ev, to, a, "", at)
	if err := u.apps.Commit(ctx, repository.ChangeSet{Changes: []repository.StateChange{change}, At: at}); err != nil {
		return application.Application{}, err
	}
	return applied(app, change, at), nil
}

// Accept locks the position first. When the accept takes the last seat every
// other active application is locked too and rejected in the same commit.
func (u *Lifecycle) Accept(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (res AcceptResult, err error) {
	defer func() { u.observe(application.EventAccept, applicationID, a, res.Application, err) }()

	if !a.Valid() {
		return AcceptResult{}, domain.Unauthorized("missing actor")
	}

	cur, err := u.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return AcceptResult{}, err
	}

	releasePos, err := u.guard.Acquire(ctx, guard.PositionKey(cur.PositionID))
	if err != nil {
		return AcceptResult{}, err
	}
	defer releasePos()

	pos, err := u.positions.GetPosition(ctx, cur.PositionID)
	if err != nil {
		return AcceptResult{}, err
	}

	// No submission can add an active application while the position lock is
	// held, so this set can only shrink.
	appKeys := []guard.Key{guard.ApplicationKey(applicationID)}
	var others []uuid.UUID
	if pos.RemainingCapacity == 1 {
		active, err := u.apps.ListApplicationsByPosition(ctx, pos.ID, application.ActiveStates()...)
		if err != nil {
			return AcceptResult{}, err
		}
		for _, o := range active {
			if o.ID == applicationID {
				continue
			}
			others = append(others, o.ID)
			appKeys = append(appKeys, guard.ApplicationKey(o.ID))
		}
	}

	releaseApps, err := u.guard.Acquire(ctx, appKeys...)
	if err != nil {
		return AcceptResult{}, err
	}
	defer releaseApps()

	app, err := u.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return AcceptResult{}, err
	}
	if err := authorize(a, application.EventAccept, app, pos); err != nil {
		return AcceptResult{}, err
	}
	to, err := application.Next(app.State, application.EventAccept)
	if err != nil {
		return AcceptResult{}, err
	}
	if !pos.HasCapacity() {
		return AcceptResult{}, domain.CapacityExceeded("position %s has no remaining capacity", pos.ID)
	}

	remaining := pos.RemainingCapacity - 1
	status := pos.Status
	if remaining == 0 {
		status = position.StatusClosed
	}

	involved := []application.Application{app}
	if remaining == 0 {
		for _, id := range others {
			o, err := u.apps.GetApplication(ctx, id)
			if err != nil {
				return AcceptResult{}, err
			}
			// Withdrawn or rejected while we waited for its lock.
			if !o.State.Active() {
				continue
			}
			involved = append(involved, o)
		}
	}

	at := auditTime(u.now(), involved...)
	changes := make([]repository.StateChange, 0, len(involved))
	changes = append(changes, stateChange(app, application.EventAccept, to, a, "", at))
	cascaded := make([]uuid.UUID, 0, len(involved)-1)
	for _, o := range involved[1:] {
		changes = append(changes, stateChange(o, application.EventReject, application.StateRejected, a, application.ReasonCapacityExhausted, at))
		cascaded = append(cascaded, o.ID)
	}

	cs := repository.ChangeSet{
		Changes: changes,
		Capacity: &repository.CapacityChange{
			PositionID:    pos.ID,
			FromRemaining: pos.RemainingCapacity,
			Remaining:     remaining,
			FromStatus:    pos.Status,
			Status:        status,
		},
		At: at,
	}
	if err := u.apps.Commit(ctx, cs); err != nil {
		return AcceptResult{}, err
	}

	pos.RemainingCapacity = remaining
	pos.Status = status
	pos.UpdatedAt = at
	u.metrics.ObserveCascade(len(cascaded))
	if len(cascaded) > 0 {
		u.logger.Info("position filled",
			zap.String("position_id", pos.ID.String()),
			zap.Int("cascade_rejected", len(cascaded)),
		)
	}

	return AcceptResult{
		Application: applied(app, changes[0], at),
		Position:    pos,
		Cascaded:    cascaded,
	}, nil
}

func (u *Lifecycle) GetApplication(ctx context.Context, a actor.Actor, applicationID uuid.UUID) (application.Application, error) {
	app, err := u.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if err := u.canView(ctx, a, app); err != nil {
		return application.Application{}, err
	}
	return app, nil
}

func (u *Lifecycle) AuditTrail(ctx context.Context, a actor.Actor, applicationID uuid.UUID) ([]application.AuditEntry, error) {
	app, err := u.GetApplication(ctx, a, applicationID)
	if err != nil {
		return nil, err
	}
	return app.Audit, nil
}

func (u *Lifecycle) ListMyApplications(ctx context.Context, a actor.Actor) ([]application.Application, error) {
	if !a.Valid() || a.Role != actor.RoleProfessional {
		return nil, domain.Unauthorized("only professionals have applications")
	}
	return u.apps.ListApplicationsByProfessional(ctx, a.ID)
}

func (u *Lifecycle) canView(ctx context.Context, a actor.Actor, app application.Application) error {
	if a.IsProfessional(app.ProfessionalID) {
		return nil
	}
	if a.Role == actor.RoleBusiness {
		pos, err := u.positions.GetPosition(ctx, app.PositionID)
		if err != nil {
			return err
		}
		if pos.OwnedBy(a.ID) {
			return nil
		}
	}
	return domain.Unauthorized("application %s is not visible to %s %s", app.ID, a.Role, a.ID)
}

func (u *Lifecycle) observe(ev application.Event, id uuid.UUID, a actor.Actor, app application.Application, err error) {
	u.metrics.ObserveTransition(string(ev), outcome(err))
	fields := []zap.Field{
		zap.String("event", string(ev)),
		zap.String("application_id", id.String()),
		zap.String("actor_id", a.ID.String()),
	}
	switch kind := domain.KindOf(err); {
	case err == nil:
		if n := len(app.Audit); n > 0 {
			last := app.Audit[n-1]
			fields = append(fields, zap.String("from", string(last.From)), zap.String("to", string(last.To)))
		}
		u.logger.Info("application transitioned", fields...)
	case kind == domain.KindConflict:
		u.logger.Warn("application transition contended", append(fields, zap.Error(err))...)
	case kind == domain.KindInternal && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
		u.logger.Error("application transition failed", append(fields, zap.Error(err))...)
	default:
		u.logger.Debug("application transition refused", append(fields, zap.Error(err))...)
	}
}

// authorize checks the role and ownership the event requires.
func authorize(a actor.Actor, ev application.Event, app application.Application, pos position.Position) error {
	role, ok := application.RequiredRole(ev)
	if !ok {
		return domain.InvalidTransition("unknown event %q", ev)
	}
	switch role {
	case actor.RoleBusiness:
		if !a.IsBusiness(pos.BusinessID) {
			return domain.Forbidden("%s requires the owner of position %s", ev, pos.ID)
		}
	case actor.RoleProfessional:
		if !a.IsProfessional(app.ProfessionalID) {
			return domain.Forbidden("%s requires the applicant of application %s", ev, app.ID)
		}
	}
	return nil
}

// auditTime never lets a new entry predate the latest entry of any application
// it touches.
func auditTime(now time.Time, apps ...application.Application) time.Time {
	at := now
	for _, app := range apps {
		if last := app.LastAuditAt(); last.After(at) {
			at = last
		}
	}
	return at
}

func stateChange(app application.Application, ev application.Event, to application.State, a actor.Actor, reason string, at time.Time) repository.StateChange {
	return repository.StateChange{
		ApplicationID: app.ID,
		From:          app.State,
		To:            to,
		Entry: application.AuditEntry{
			Seq:       len(app.Audit) + 1,
			Event:     ev,
			From:      app.State,
			To:        to,
			ActorID:   a.ID,
			ActorRole: a.Role,
			Reason:    reason,
			At:        at,
		},
	}
}

func applied(app application.Application, ch repository.StateChange, at time.Time) application.Application {
	app.State = ch.To
	app.UpdatedAt = at
	app.Audit = append(append([]application.AuditEntry(nil), app.Audit...), ch.Entry)
	return app
}
