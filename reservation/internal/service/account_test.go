package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
	mock_repository "github.com/Astemirdum/equipment-reservation/reservation/internal/repository/mocks"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/service"
)

func TestService_SyncAccount_PaddedSuperadminEmail(t *testing.T) {
	repo := mock_repository.NewMockRepository(gomock.NewController(t))
	svc := service.NewService(repo, zap.NewNop(),
		service.WithSuperadminEmail("  Ti@Colegio.edu \n"),
		service.WithClock(func() time.Time { return now }),
	)
	repo.EXPECT().EnsureAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a model.Account) (model.Account, error) { return a, nil })

	got, err := svc.SyncAccount(context.Background(), model.Identity{ID: "s-1", Email: "ti@colegio.edu"})
	require.NoError(t, err)
	require.Equal(t, model.RoleSuperadmin, got.Role)

	repo.EXPECT().GetAccount(gomock.Any(), "s-1").Return(got, nil)
	_, err = svc.SetBlocked(context.Background(), model.Actor{Account: got}, "s-1", true)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestService_SyncAccount(t *testing.T) {
	tests := []struct {
		name     string
		identity model.Identity
		stored   *model.Account
		want     model.Account
	}{
		{
			name:     "superadmin first contact",
			identity: model.Identity{ID: "s-1", Email: "TI@colegio.edu", DisplayName: "TI"},
			want: model.Account{ID: "s-1", Email: "TI@colegio.edu", DisplayName: "TI",
				Role: model.RoleSuperadmin, CreatedAt: now},
		},
		{
			name:     "user first contact without name",
			identity: model.Identity{ID: "u-1", Email: "ana@colegio.edu"},
			want: model.Account{ID: "u-1", Email: "ana@colegio.edu", DisplayName: "Usuário",
				Role: model.RoleUser, CreatedAt: now},
		},
		{
			name:     "second contact returns stored profile",
			identity: model.Identity{ID: "u-1", Email: "ana@colegio.edu", DisplayName: "Ana Maria"},
			stored: &model.Account{ID: "u-1", Email: "ana@colegio.edu", DisplayName: "Ana",
				Role: model.RoleAdmin, IsBlocked: true},
			want: model.Account{ID: "u-1", Email: "ana@colegio.edu", DisplayName: "Ana",
				Role: model.RoleAdmin, IsBlocked: true},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			repo.EXPECT().EnsureAccount(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, a model.Account) (model.Account, error) {
					if tt.stored != nil {
						return *tt.stored, nil
					}
					return a, nil
				})

			got, err := svc.SyncAccount(context.Background(), tt.identity)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_SyncAccount_Invalid(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.SyncAccount(context.Background(), model.Identity{ID: "u-1"})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestService_UpdateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetAccount(ctx, "u-1").Return(user.Account, nil)
		promoted := user.Account
		promoted.Role = model.RoleAdmin
		repo.EXPECT().UpdateAccountRole(ctx, "u-1", model.RoleAdmin).Return(promoted, nil)

		got, err := svc.UpdateRole(ctx, super, "u-1", model.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, got.Role)
	})

	t.Run("admin may not manage accounts", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.UpdateRole(ctx, admin, "u-1", model.RoleAdmin)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.UpdateRole(ctx, super, "u-1", model.Role("owner"))
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("reserved superadmin", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetAccount(ctx, "s-1").Return(super.Account, nil)
		_, err := svc.UpdateRole(ctx, super, "s-1", model.RoleUser)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetAccount(ctx, "x").Return(model.Account{}, errs.NotFound("account", "x"))
		_, err := svc.UpdateRole(ctx, super, "x", model.RoleAdmin)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_SetBlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetAccount(ctx, "u-1").Return(user.Account, nil)
		blocked := user.Account
		blocked.IsBlocked = true
		repo.EXPECT().SetAccountBlocked(ctx, "u-1", true).Return(blocked, nil)

		got, err := svc.SetBlocked(ctx, super, "u-1", true)
		require.NoError(t, err)
		require.True(t, got.IsBlocked)
	})

	t.Run("reserved superadmin", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetAccount(ctx, "s-1").Return(super.Account, nil)
		_, err := svc.SetBlocked(ctx, super, "s-1", true)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("user may not block", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.SetBlocked(ctx, user, "u-2", true)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	_, err := svc.ListAccounts(ctx, admin)
	require.ErrorIs(t, err, errs.ErrForbidden)

	repo.EXPECT().ListAccounts(ctx).Return([]model.Account{super.Account, user.Account}, nil)
	got, err := svc.ListAccounts(ctx, super)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
