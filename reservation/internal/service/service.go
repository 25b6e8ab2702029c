package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/policy"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/repository"
)

type Publisher interface {
	Publish(ctx context.Context, event model.ReservationEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.ReservationEvent) {}

type Service struct {
	log             *zap.Logger
	repo            repository.Repository
	policy          policy.Authorizer
	publisher       Publisher
	metrics         *metrics.Metrics
	superadminEmail string
	now             func() time.Time
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		policy:    policy.New(),
		publisher: nopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create decides the status of a new reservation and stores it. Conflicting
// requests are stored as rejected rather than refused.
func (s *Service) Create(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (model.Reservation, error) {
	if err := s.policy.CanCreate(actor); err != nil {
		return model.Reservation{}, err
	}
	ids := model.NormalizeIDs(req.EquipmentIDs)
	if len(ids) == 0 {
		return model.Reservation{}, errs.Validation("at least one equipment is required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return model.Reservation{}, errs.Validation("start and end time are required")
	}
	if !req.StartTime.Before(req.EndTime) {
		return model.Reservation{}, errs.Validation("start time must be before end time")
	}
	if err := s.checkEquipment(ctx, ids); err != nil {
		return model.Reservation{}, err
	}

	candidate := model.Reservation{
		RequesterID:    actor.ID,
		RequesterEmail: actor.Email,
		RequesterName:  actor.DisplayName,
		EquipmentIDs:   ids,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Purpose:        req.Purpose,
		CreatedAt:      s.now().UTC(),
	}

	var (
		created   model.Reservation
		conflicts []model.Reservation
	)
	err := s.repo.RunInTx(ctx, lockKeys(ids), func(ctx context.Context) error {
		existing, err := s.repo.FindBlockingReservations(ctx, ids)
		if err != nil {
			return err
		}
		conflicts = FindConflicts(candidate, existing)
		candidate.Status = model.StatusApproved
		if len(conflicts) > 0 {
			candidate.Status = model.StatusRejected
		}
		created, err = s.repo.InsertReservation(ctx, candidate)
		return err
	})
	if err != nil {
		return model.Reservation{}, err
	}

	s.metrics.Decision(string(created.Status))
	s.log.Info("reservation created",
		zap.String("id", created.ID),
		zap.String("requester", created.RequesterID),
		zap.String("status", string(created.Status)),
		zap.Int("conflicts", len(conflicts)))
	s.publisher.Publish(ctx, model.ReservationEvent{
		Type:          model.EventCreated,
		ReservationID: created.ID,
		RequesterID:   created.RequesterID,
		ActorID:       actor.ID,
		To:            created.Status,
		EquipmentIDs:  created.EquipmentIDs,
		Timestamp:     created.CreatedAt,
	})
	return created, nil
}

// Transition moves a reservation along the lifecycle. Approving a rejected
// reservation does not re-check conflicts.
func (s *Service) Transition(ctx context.Context, actor model.Actor, id string, to model.Status) (model.Reservation, error) {
	if !to.IsValid() {
		return model.Reservation{}, errs.Validation("unknown status %q", to)
	}
	cur, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := s.policy.CanTransition(actor, cur, to); err != nil {
		return model.Reservation{}, err
	}
	// completed is reserved for the expiry sweep
	if to == model.StatusCompleted || !model.CanTransition(cur.Status, to) {
		return model.Reservation{}, errs.InvalidTransition(id, string(cur.Status), string(to))
	}

	upd, err := s.repo.UpdateReservationStatus(ctx, id, cur.Status, to)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, &errs.Error{
				Kind: errs.KindInvalidTransition,
				ID:   id,
				Msg:  "reservation status changed concurrently",
			}
		}
		return model.Reservation{}, err
	}

	s.metrics.Transition(string(cur.Status), string(to))
	s.log.Info("reservation transitioned",
		zap.String("id", id),
		zap.String("actor", actor.ID),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(to)))
	s.publisher.Publish(ctx, model.ReservationEvent{
		Type:          model.EventTransition,
		ReservationID: upd.ID,
		RequesterID:   upd.RequesterID,
		ActorID:       actor.ID,
		From:          cur.Status,
		To:            upd.Status,
		EquipmentIDs:  upd.EquipmentIDs,
		Timestamp:     s.now().UTC(),
	})
	return upd, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id string) (model.Reservation, error) {
	res, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := s.policy.CanView(actor, res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, actor model.Actor) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, s.visibleTo(actor))
}

func (s *Service) Stats(ctx context.Context, actor model.Actor) (model.Stats, error) {
	return s.repo.CountByStatus(ctx, s.visibleTo(actor))
}

func (s *Service) Dashboard(ctx context.Context, actor model.Actor) (model.Dashboard, error) {
	var d model.Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Stats, err = s.Stats(ctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Equipment, err = s.ListEquipment(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Reservations, err = s.List(ctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Dashboard{}, err
	}
	return d, nil
}

// CompleteExpired promotes approved reservations whose end time has passed.
func (s *Service) CompleteExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	done, err := s.repo.CompleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, res := range done {
		s.metrics.Transition(string(model.StatusApproved), string(model.StatusCompleted))
		s.publisher.Publish(ctx, model.ReservationEvent{
			Type:          model.EventCompleted,
			ReservationID: res.ID,
			RequesterID:   res.RequesterID,
			From:          model.StatusApproved,
			To:            res.Status,
			EquipmentIDs:  res.EquipmentIDs,
			Timestamp:     now,
		})
	}
	return len(done), nil
}

func (s *Service) visibleTo(actor model.Actor) model.ReservationFilter {
	if s.policy.SeesAll(actor) {
		return model.ReservationFilter{}
	}
	return model.ReservationFilter{RequesterID: actor.ID}
}

func lockKeys(equipmentIDs []string) []string {
	keys := make([]string, 0, len(equipmentIDs))
	for _, id := range equipmentIDs {
		keys = append(keys, "equipment:"+id)
	}
	return keys
}
