package model

import (
	"sort"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// IsPrivileged reports admin rights.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

type EquipmentType string

const (
	EquipmentChromebook EquipmentType = "chromebook"
	EquipmentIPad       EquipmentType = "ipad"
	EquipmentTablet     EquipmentType = "tablet"
	EquipmentLaptop     EquipmentType = "laptop"
)

func (t EquipmentType) IsValid() bool {
	switch t {
	case EquipmentChromebook, EquipmentIPad, EquipmentTablet, EquipmentLaptop:
		return true
	default:
		return false
	}
}

type Reservation struct {
	ID             string    `json:"id" db:"id"`
	RequesterID    string    `json:"requesterId" db:"requester_id"`
	RequesterEmail string    `json:"requesterEmail" db:"requester_email"`
	RequesterName  string    `json:"requesterName" db:"requester_name"`
	EquipmentIDs   []string  `json:"equipmentIds" db:"equipment_ids"`
	StartTime      time.Time `json:"startTime" db:"start_time"`
	EndTime        time.Time `json:"endTime" db:"end_time"`
	Purpose        string    `json:"purpose" db:"purpose"`
	Status         Status    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type Equipment struct {
	ID          string        `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Type        EquipmentType `json:"type" db:"type"`
	Description string        `json:"description" db:"description"`
	IsActive    bool          `json:"isActive" db:"is_active"`
}

type Account struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Role        Role      `json:"role" db:"role"`
	IsBlocked   bool      `json:"isBlocked" db:"is_blocked"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Identity is the caller as vouched for by the identity provider.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}

// Actor is the account on whose behalf a service call runs.
type Actor struct {
	Account
}

func (a Actor) Owns(r Reservation) bool {
	return a.ID != "" && a.ID == r.RequesterID
}

type CreateReservationRequest struct {
	EquipmentIDs []string  `json:"equipmentIds" validate:"required,min=1,dive,required"`
	StartTime    time.Time `json:"startTime" validate:"required"`
	EndTime      time.Time `json:"endTime" validate:"required"`
	Purpose      string    `json:"purpose" validate:"max=500"`
}

type CreateEquipmentRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Type        EquipmentType `json:"type" validate:"required,equipment_type"`
	Description string        `json:"description" validate:"max=1000"`
}

type ReservationFilter struct {
	// RequesterID empty means all requesters.
	RequesterID string
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}

func (s *Stats) Add(st Status, n int) {
	s.Total += n
	switch st {
	case StatusPending:
		s.Pending += n
	case StatusApproved:
		s.Approved += n
	case StatusRejected:
		s.Rejected += n
	case StatusCancelled:
		s.Cancelled += n
	case StatusCompleted:
		s.Completed += n
	}
}

type Dashboard struct {
	Stats        Stats         `json:"stats"`
	Equipment    []Equipment   `json:"equipment"`
	Reservations []Reservation `json:"reservations"`
}

type EventType string

const (
	EventCreated    EventType = "reservation.created"
	EventTransition EventType = "reservation.transitioned"
	EventCompleted  EventType = "reservation.completed"
)

type ReservationEvent struct {
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservationId"`
	RequesterID   string    `json:"requesterId"`
	ActorID       string    `json:"actorId,omitempty"`
	From          Status    `json:"from,omitempty"`
	To            Status    `json:"to"`
	EquipmentIDs  []string  `json:"equipmentIds"`
	Timestamp     time.Time `json:"timestamp"`
}

// NormalizeIDs returns the sorted set of non-empty ids.
func NormalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type CreateReservationResponse struct {
	Reservation Reservation `json:"reservation"`
	Status      Status      `json:"status"`
	Conflict    bool        `json:"conflict"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=user admin superadmin"`
}

type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}
