package service

import (
	"time"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

// Overlaps treats both intervals as half-open, so touching ends do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func SharesEquipment(a, b []string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// FindConflicts returns the blocking reservations that collide with candidate.
func FindConflicts(candidate model.Reservation, existing []model.Reservation) []model.Reservation {
	var out []model.Reservation
	for _, ex := range existing {
		if !ex.Status.IsBlocking() || ex.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, ex.StartTime, ex.EndTime) &&
			SharesEquipment(candidate.EquipmentIDs, ex.EquipmentIDs) {
			out = append(out, ex)
		}
	}
	return out
}

// Decide is the status a new reservation receives.
func Decide(candidate model.Reservation, existing []model.Reservation) model.Status {
	if len(FindConflicts(candidate, existing)) > 0 {
		return model.StatusRejected
	}
	return model.StatusApproved
}
