// Package policy decides which actor may perform which operation.
// The reservation service asks it before every state write.
package policy

import (
	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

type Authorizer interface {
	CanCreate(actor model.Actor) error
	CanView(actor model.Actor, r model.Reservation) error
	CanTransition(actor model.Actor, r model.Reservation, to model.Status) error
	SeesAll(actor model.Actor) bool
	CanManageEquipment(actor model.Actor) error
	CanManageAccounts(actor model.Actor) error
}

type Policy struct{}

func New() *Policy {
	return &Policy{}
}

var _ Authorizer = (*Policy)(nil)

func (p *Policy) CanCreate(actor model.Actor) error {
	if actor.IsBlocked {
		return errs.Forbidden("account is blocked")
	}
	return nil
}

func (p *Policy) CanView(actor model.Actor, r model.Reservation) error {
	if p.SeesAll(actor) || actor.Owns(r) {
		return nil
	}
	return errs.Forbidden("reservation belongs to another user")
}

// CanTransition: owners may only cancel; admins may move along any edge.
// Blocked accounts may not act on reservations whatever their role.
func (p *Policy) CanTransition(actor model.Actor, r model.Reservation, to model.Status) error {
	if actor.IsBlocked {
		return errs.Forbidden("account is blocked")
	}
	if actor.Role.IsPrivileged() {
		return nil
	}
	if to == model.StatusCancelled && actor.Owns(r) {
		return nil
	}
	return errs.Forbidden("%s may not set status %s", actor.Role, to)
}

func (p *Policy) SeesAll(actor model.Actor) bool {
	return actor.Role.IsPrivileged()
}

func (p *Policy) CanManageEquipment(actor model.Actor) error {
	if actor.IsBlocked {
		return errs.Forbidden("account is blocked")
	}
	if actor.Role.IsPrivileged() {
		return nil
	}
	return errs.Forbidden("admin role required")
}

func (p *Policy) CanManageAccounts(actor model.Actor) error {
	if actor.Role == model.RoleSuperadmin {
		return nil
	}
	return errs.Forbidden("superadmin role required")
}
