package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
	mock_repository "github.com/Astemirdum/equipment-reservation/reservation/internal/repository/mocks"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/service"
)

var (
	now = time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

	user  = model.Actor{Account: model.Account{ID: "u-1", Email: "ana@colegio.edu", DisplayName: "Ana", Role: model.RoleUser}}
	other = model.Actor{Account: model.Account{ID: "u-2", Email: "bob@colegio.edu", Role: model.RoleUser}}
	admin = model.Actor{Account: model.Account{ID: "a-1", Email: "adm@colegio.edu", Role: model.RoleAdmin}}
	super = model.Actor{Account: model.Account{ID: "s-1", Email: "ti@colegio.edu", Role: model.RoleSuperadmin}}
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.ReservationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func newService(t *testing.T) (*service.Service, *mock_repository.MockRepository, *recordingPublisher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockRepository(ctrl)
	pub := &recordingPublisher{}
	svc := service.NewService(repo, zap.NewNop(),
		service.WithPublisher(pub),
		service.WithSuperadminEmail("ti@colegio.edu"),
		service.WithClock(func() time.Time { return now }),
	)
	return svc, repo, pub
}

func runInTx(repo *mock_repository.MockRepository, wantKeys []string) {
	repo.EXPECT().
		RunInTx(gomock.Any(), wantKeys, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []string, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func insertEcho(repo *mock_repository.MockRepository) {
	repo.EXPECT().
		InsertReservation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r model.Reservation) (model.Reservation, error) {
			r.ID = "r-new"
			return r, nil
		})
}

func activeEquipment(ids ...string) []model.Equipment {
	out := make([]model.Equipment, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Equipment{ID: id, Name: id, Type: model.EquipmentIPad, IsActive: true})
	}
	return out
}

func TestService_Create(t *testing.T) {
	booked := model.Reservation{
		ID: "r-1", RequesterID: "u-9", Status: model.StatusApproved,
		EquipmentIDs: []string{"E1"}, StartTime: at(9, 0), EndTime: at(10, 0),
	}

	tests := []struct {
		name     string
		req      model.CreateReservationRequest
		existing []model.Reservation
		want     model.Status
	}{
		{
			name:     "overlap on shared equipment is rejected",
			req:      model.CreateReservationRequest{EquipmentIDs: []string{"E1"}, StartTime: at(9, 30), EndTime: at(10, 30)},
			existing: []model.Reservation{booked},
			want:     model.StatusRejected,
		},
		{
			name:     "touching boundary is approved",
			req:      model.CreateReservationRequest{EquipmentIDs: []string{"E1"}, StartTime: at(10, 0), EndTime: at(11, 0)},
			existing: []model.Reservation{booked},
			want:     model.StatusApproved,
		},
		{
			name:     "disjoint equipment is approved even if the store returns extra rows",
			req:      model.CreateReservationRequest{EquipmentIDs: []string{"E2"}, StartTime: at(9, 0), EndTime: at(10, 0)},
			existing: []model.Reservation{booked},
			want:     model.StatusApproved,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newService(t)
			ids := model.NormalizeIDs(tt.req.EquipmentIDs)

			repo.EXPECT().GetEquipment(gomock.Any(), ids).Return(activeEquipment(ids...), nil)
			runInTx(repo, []string{"equipment:" + ids[0]})
			repo.EXPECT().FindBlockingReservations(gomock.Any(), ids).Return(tt.existing, nil)
			insertEcho(repo)

			got, err := svc.Create(context.Background(), user, tt.req)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Status)
			require.Equal(t, "r-new", got.ID)
			require.Equal(t, user.ID, got.RequesterID)
			require.Equal(t, user.Email, got.RequesterEmail)
			require.Equal(t, now, got.CreatedAt)

			require.Len(t, pub.events, 1)
			require.Equal(t, model.EventCreated, pub.events[0].Type)
			require.Equal(t, tt.want, pub.events[0].To)
		})
	}
}

func TestService_Create_NormalizesEquipment(t *testing.T) {
	svc, repo, _ := newService(t)
	ids := []string{"E1", "E2"}

	repo.EXPECT().GetEquipment(gomock.Any(), ids).Return(activeEquipment(ids...), nil)
	runInTx(repo, []string{"equipment:E1", "equipment:E2"})
	repo.EXPECT().FindBlockingReservations(gomock.Any(), ids).Return(nil, nil)
	insertEcho(repo)

	got, err := svc.Create(context.Background(), user, model.CreateReservationRequest{
		EquipmentIDs: []string{"E2", "E1", "E2"},
		StartTime:    at(9, 0),
		EndTime:      at(10, 0),
		Purpose:      "aula de ciências",
	})
	require.NoError(t, err)
	require.Equal(t, ids, got.EquipmentIDs)
	require.Equal(t, model.StatusApproved, got.Status)
	require.Equal(t, "aula de ciências", got.Purpose)
}

func TestService_Create_Errors(t *testing.T) {
	type mockBehavior func(r *mock_repository.MockRepository)

	blocked := user
	blocked.IsBlocked = true
	valid := model.CreateReservationRequest{EquipmentIDs: []string{"E1"}, StartTime: at(9, 0), EndTime: at(10, 0)}

	tests := []struct {
		name         string
		actor        model.Actor
		req          model.CreateReservationRequest
		mockBehavior mockBehavior
		wantErr      error
	}{
		{
			name:         "no equipment",
			actor:        user,
			req:          model.CreateReservationRequest{EquipmentIDs: []string{""}, StartTime: at(9, 0), EndTime: at(10, 0)},
			mockBehavior: func(r *mock_repository.MockRepository) {},
			wantErr:      errs.ErrValidation,
		},
		{
			name:         "end before start",
			actor:        user,
			req:          model.CreateReservationRequest{EquipmentIDs: []string{"E1"}, StartTime: at(10, 0), EndTime: at(9, 0)},
			mockBehavior: func(r *mock_repository.MockRepository) {},
			wantErr:      errs.ErrValidation,
		},
		{
			name:         "empty interval",
			actor:        user,
			req:          model.CreateReservationRequest{EquipmentIDs: []string{"E1"}, StartTime: at(10, 0), EndTime: at(10, 0)},
			mockBehavior: func(r *mock_repository.MockRepository) {},
			wantErr:      errs.ErrValidation,
		},
		{
			name:  "unknown equipment",
			actor: user,
			req:   valid,
			mockBehavior: func(r *mock_repository.MockRepository) {
				r.EXPECT().GetEquipment(gomock.Any(), []string{"E1"}).Return(nil, nil)
			},
			wantErr: errs.ErrValidation,
		},
		{
			name:  "inactive equipment",
			actor: user,
			req:   valid,
			mockBehavior: func(r *mock_repository.MockRepository) {
				r.EXPECT().GetEquipment(gomock.Any(), []string{"E1"}).
					Return([]model.Equipment{{ID: "E1", IsActive: false}}, nil)
			},
			wantErr: errs.ErrValidation,
		},
		{
			name:         "blocked account",
			actor:        blocked,
			req:          valid,
			mockBehavior: func(r *mock_repository.MockRepository) {},
			wantErr:      errs.ErrForbidden,
		},
		{
			name:         "blocked account with invalid request",
			actor:        blocked,
			req:          model.CreateReservationRequest{EquipmentIDs: []string{"gone"}, StartTime: at(10, 0), EndTime: at(9, 0)},
			mockBehavior: func(r *mock_repository.MockRepository) {},
			wantErr:      errs.ErrForbidden,
		},
		{
			name:  "store failure",
			actor: user,
			req:   valid,
			mockBehavior: func(r *mock_repository.MockRepository) {
				r.EXPECT().GetEquipment(gomock.Any(), []string{"E1"}).Return(activeEquipment("E1"), nil)
				runInTx(r, []string{"equipment:E1"})
				r.EXPECT().FindBlockingReservations(gomock.Any(), []string{"E1"}).
					Return(nil, errs.Store("FindBlockingReservations", errors.New("conn refused")))
			},
			wantErr: errs.ErrStore,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newService(t)
			tt.mockBehavior(repo)

			_, err := svc.Create(context.Background(), tt.actor, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, pub.events)
		})
	}
}

func TestService_Transition(t *testing.T) {
	type mockBehavior func(r *mock_repository.MockRepository)

	stored := func(st model.Status) model.Reservation {
		return model.Reservation{ID: "r-1", RequesterID: user.ID, Status: st, EquipmentIDs: []string{"E1"},
			StartTime: at(9, 0), EndTime: at(10, 0)}
	}
	updated := func(from, to model.Status) mockBehavior {
		return func(r *mock_repository.MockRepository) {
			r.EXPECT().GetReservation(gomock.Any(), "r-1").Return(stored(from), nil)
			r.EXPECT().UpdateReservationStatus(gomock.Any(), "r-1", from, to).Return(stored(to), nil)
		}
	}
	fetched := func(from model.Status) mockBehavior {
		return func(r *mock_repository.MockRepository) {
			r.EXPECT().GetReservation(gomock.Any(), "r-1").Return(stored(from), nil)
		}
	}

	blockedAdmin := admin
	blockedAdmin.IsBlocked = true
	blockedOwner := user
	blockedOwner.IsBlocked = true

	tests := []struct {
		name         string
		actor        model.Actor
		to           model.Status
		mockBehavior mockBehavior
		wantErr      error
	}{
		{name: "blocked admin approves", actor: blockedAdmin, to: model.StatusApproved,
			mockBehavior: fetched(model.StatusPending), wantErr: errs.ErrForbidden},
		{name: "blocked owner cancels", actor: blockedOwner, to: model.StatusCancelled,
			mockBehavior: fetched(model.StatusPending), wantErr: errs.ErrForbidden},
		{name: "admin approves pending", actor: admin, to: model.StatusApproved,
			mockBehavior: updated(model.StatusPending, model.StatusApproved)},
		{name: "admin rejects approved", actor: admin, to: model.StatusRejected,
			mockBehavior: updated(model.StatusApproved, model.StatusRejected)},
		{name: "admin approves rejected without conflict check", actor: admin, to: model.StatusApproved,
			mockBehavior: updated(model.StatusRejected, model.StatusApproved)},
		{name: "owner cancels", actor: user, to: model.StatusCancelled,
			mockBehavior: updated(model.StatusApproved, model.StatusCancelled)},
		{name: "superadmin cancels rejected", actor: super, to: model.StatusCancelled,
			mockBehavior: updated(model.StatusRejected, model.StatusCancelled)},
		{name: "stranger cancels", actor: other, to: model.StatusCancelled,
			mockBehavior: fetched(model.StatusApproved), wantErr: errs.ErrForbidden},
		{name: "owner approves", actor: user, to: model.StatusApproved,
			mockBehavior: fetched(model.StatusRejected), wantErr: errs.ErrForbidden},
		{name: "out of cancelled", actor: admin, to: model.StatusApproved,
			mockBehavior: fetched(model.StatusCancelled), wantErr: errs.ErrInvalidTransition},
		{name: "cancel twice", actor: user, to: model.StatusCancelled,
			mockBehavior: fetched(model.StatusCancelled), wantErr: errs.ErrInvalidTransition},
		{name: "out of completed", actor: admin, to: model.StatusCancelled,
			mockBehavior: fetched(model.StatusCompleted), wantErr: errs.ErrInvalidTransition},
		{name: "back to pending", actor: admin, to: model.StatusPending,
			mockBehavior: fetched(model.StatusApproved), wantErr: errs.ErrInvalidTransition},
		{name: "manual completion", actor: admin, to: model.StatusCompleted,
			mockBehavior: fetched(model.StatusApproved), wantErr: errs.ErrInvalidTransition},
		{name: "same status", actor: admin, to: model.StatusApproved,
			mockBehavior: fetched(model.StatusApproved), wantErr: errs.ErrInvalidTransition},
		{name: "unknown status", actor: admin, to: model.Status("archived"),
			mockBehavior: func(r *mock_repository.MockRepository) {}, wantErr: errs.ErrValidation},
		{name: "not found", actor: admin, to: model.StatusApproved,
			mockBehavior: func(r *mock_repository.MockRepository) {
				r.EXPECT().GetReservation(gomock.Any(), "r-1").Return(model.Reservation{}, errs.NotFound("reservation", "r-1"))
			}, wantErr: errs.ErrNotFound},
		{name: "status changed concurrently", actor: admin, to: model.StatusApproved,
			mockBehavior: func(r *mock_repository.MockRepository) {
				r.EXPECT().GetReservation(gomock.Any(), "r-1").Return(stored(model.StatusPending), nil)
				r.EXPECT().UpdateReservationStatus(gomock.Any(), "r-1", model.StatusPending, model.StatusApproved).
					Return(model.Reservation{}, errs.NotFound("reservation", "r-1"))
			}, wantErr: errs.ErrInvalidTransition},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newService(t)
			tt.mockBehavior(repo)

			got, err := svc.Transition(context.Background(), tt.actor, "r-1", tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.to, got.Status)
			require.Len(t, pub.events, 1)
			require.Equal(t, model.EventTransition, pub.events[0].Type)
			require.Equal(t, tt.actor.ID, pub.events[0].ActorID)
			require.Equal(t, tt.to, pub.events[0].To)
		})
	}
}

func TestService_Visibility(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.EXPECT().ListReservations(ctx, model.ReservationFilter{RequesterID: user.ID}).Return(nil, nil)
	_, err := svc.List(ctx, user)
	require.NoError(t, err)

	repo.EXPECT().ListReservations(ctx, model.ReservationFilter{}).Return(nil, nil)
	_, err = svc.List(ctx, admin)
	require.NoError(t, err)

	foreign := model.Reservation{ID: "r-7", RequesterID: other.ID}
	repo.EXPECT().GetReservation(ctx, "r-7").Return(foreign, nil).Times(2)
	_, err = svc.Get(ctx, user, "r-7")
	require.ErrorIs(t, err, errs.ErrForbidden)
	got, err := svc.Get(ctx, admin, "r-7")
	require.NoError(t, err)
	require.Equal(t, foreign, got)
}

func TestService_Dashboard(t *testing.T) {
	svc, repo, _ := newService(t)
	stats := model.Stats{Total: 3, Approved: 2, Rejected: 1}
	items := []model.Reservation{{ID: "r-1", RequesterID: user.ID, Status: model.StatusApproved}}

	repo.EXPECT().CountByStatus(gomock.Any(), model.ReservationFilter{RequesterID: user.ID}).Return(stats, nil)
	repo.EXPECT().ListActiveEquipment(gomock.Any()).Return(activeEquipment("E1"), nil)
	repo.EXPECT().ListReservations(gomock.Any(), model.ReservationFilter{RequesterID: user.ID}).Return(items, nil)

	d, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, stats, d.Stats)
	require.Equal(t, items, d.Reservations)
	require.Len(t, d.Equipment, 1)
}

func TestService_Dashboard_Error(t *testing.T) {
	svc, repo, _ := newService(t)
	storeErr := errs.Store("CountByStatus", errors.New("timeout"))

	repo.EXPECT().CountByStatus(gomock.Any(), gomock.Any()).Return(model.Stats{}, storeErr)
	repo.EXPECT().ListActiveEquipment(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().ListReservations(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := svc.Dashboard(context.Background(), admin)
	require.ErrorIs(t, err, errs.ErrStore)
}

func TestService_CompleteExpired(t *testing.T) {
	svc, repo, pub := newService(t)
	repo.EXPECT().CompleteExpired(gomock.Any(), now).Return([]model.Reservation{
		{ID: "r-1", RequesterID: user.ID, Status: model.StatusCompleted},
		{ID: "r-2", RequesterID: other.ID, Status: model.StatusCompleted},
	}, nil)

	n, err := svc.CompleteExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, pub.events, 2)
	require.Equal(t, model.EventCompleted, pub.events[1].Type)
	require.Equal(t, model.StatusApproved, pub.events[1].From)
}
