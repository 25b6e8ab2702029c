package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

func (s *Service) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	return s.repo.ListActiveEquipment(ctx)
}

func (s *Service) AddEquipment(ctx context.Context, actor model.Actor, req model.CreateEquipmentRequest) (model.Equipment, error) {
	if err := s.policy.CanManageEquipment(actor); err != nil {
		return model.Equipment{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Equipment{}, errs.Validation("equipment name is required")
	}
	if !req.Type.IsValid() {
		return model.Equipment{}, errs.Validation("unknown equipment type %q", req.Type)
	}
	eq, err := s.repo.InsertEquipment(ctx, model.Equipment{
		Name:        name,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	})
	if err != nil {
		return model.Equipment{}, err
	}
	s.log.Info("equipment added", zap.String("id", eq.ID), zap.String("actor", actor.ID))
	return eq, nil
}

// DeleteEquipment deactivates the record; existing reservations keep referencing it.
func (s *Service) DeleteEquipment(ctx context.Context, actor model.Actor, id string) error {
	if err := s.policy.CanManageEquipment(actor); err != nil {
		return err
	}
	if err := s.repo.DeactivateEquipment(ctx, id); err != nil {
		return err
	}
	s.log.Info("equipment deactivated", zap.String("id", id), zap.String("actor", actor.ID))
	return nil
}

func (s *Service) checkEquipment(ctx context.Context, ids []string) error {
	found, err := s.repo.GetEquipment(ctx, ids)
	if err != nil {
		return err
	}
	active := make(map[string]bool, len(found))
	for _, eq := range found {
		active[eq.ID] = eq.IsActive
	}
	for _, id := range ids {
		if !active[id] {
			return &errs.Error{Kind: errs.KindValidation, ID: id, Msg: "equipment is not available"}
		}
	}
	return nil
}
