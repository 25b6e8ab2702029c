package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

const defaultDisplayName = "Usuário"

// SyncAccount returns the stored profile, creating it on first contact.
func (s *Service) SyncAccount(ctx context.Context, id model.Identity) (model.Account, error) {
	if id.ID == "" || id.Email == "" {
		return model.Account{}, errs.Validation("identity without id or email")
	}
	role := model.RoleUser
	if s.isReservedEmail(id.Email) {
		role = model.RoleSuperadmin
	}
	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		name = defaultDisplayName
	}
	return s.repo.EnsureAccount(ctx, model.Account{
		ID:          id.ID,
		Email:       id.Email,
		DisplayName: name,
		Role:        role,
		CreatedAt:   s.now().UTC(),
	})
}

func (s *Service) ListAccounts(ctx context.Context, actor model.Actor) ([]model.Account, error) {
	if err := s.policy.CanManageAccounts(actor); err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx)
}

func (s *Service) UpdateRole(ctx context.Context, actor model.Actor, id string, role model.Role) (model.Account, error) {
	if err := s.policy.CanManageAccounts(actor); err != nil {
		return model.Account{}, err
	}
	if !role.IsValid() {
		return model.Account{}, errs.Validation("unknown role %q", role)
	}
	if err := s.checkNotReserved(ctx, id); err != nil {
		return model.Account{}, err
	}
	acc, err := s.repo.UpdateAccountRole(ctx, id, role)
	if err != nil {
		return model.Account{}, err
	}
	s.log.Info("role updated", zap.String("account", id), zap.String("role", string(role)), zap.String("actor", actor.ID))
	return acc, nil
}

func (s *Service) SetBlocked(ctx context.Context, actor model.Actor, id string, blocked bool) (model.Account, error) {
	if err := s.policy.CanManageAccounts(actor); err != nil {
		return model.Account{}, err
	}
	if err := s.checkNotReserved(ctx, id); err != nil {
		return model.Account{}, err
	}
	acc, err := s.repo.SetAccountBlocked(ctx, id, blocked)
	if err != nil {
		return model.Account{}, err
	}
	s.log.Info("account block toggled", zap.String("account", id), zap.Bool("blocked", blocked), zap.String("actor", actor.ID))
	return acc, nil
}

func (s *Service) checkNotReserved(ctx context.Context, id string) error {
	target, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if s.isReservedEmail(target.Email) {
		return errs.Forbidden("the superadmin account cannot be changed")
	}
	return nil
}

func (s *Service) isReservedEmail(email string) bool {
	return s.superadminEmail != "" && strings.EqualFold(strings.TrimSpace(email), s.superadminEmail)
}
