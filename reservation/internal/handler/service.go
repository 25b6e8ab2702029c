package handler

import (
	"context"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	Create(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (model.Reservation, error)
	Transition(ctx context.Context, actor model.Actor, id string, to model.Status) (model.Reservation, error)
	Get(ctx context.Context, actor model.Actor, id string) (model.Reservation, error)
	List(ctx context.Context, actor model.Actor) ([]model.Reservation, error)
	Dashboard(ctx context.Context, actor model.Actor) (model.Dashboard, error)
}

type EquipmentService interface {
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	AddEquipment(ctx context.Context, actor model.Actor, req model.CreateEquipmentRequest) (model.Equipment, error)
	DeleteEquipment(ctx context.Context, actor model.Actor, id string) error
}

type AccountService interface {
	SyncAccount(ctx context.Context, id model.Identity) (model.Account, error)
	ListAccounts(ctx context.Context, actor model.Actor) ([]model.Account, error)
	UpdateRole(ctx context.Context, actor model.Actor, id string, role model.Role) (model.Account, error)
	SetBlocked(ctx context.Context, actor model.Actor, id string, blocked bool) (model.Account, error)
}

var (
	_ ReservationService = (*service.Service)(nil)
	_ EquipmentService   = (*service.Service)(nil)
	_ AccountService     = (*service.Service)(nil)
)
