package model

import (
	"github.com/pkg/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled}

var ErrUnknownStatus = errors.New("unknown status")

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
	return st, nil
}

// IsBlocking reports whether a reservation in this status occupies its equipment.
func (s Status) IsBlocking() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// transitions lists the allowed edges of the lifecycle; pending is never a target.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusRejected, StatusCancelled, StatusCompleted},
	StatusRejected: {StatusApproved, StatusCancelled},
}

// CanTransition reports whether the lifecycle has an edge from -> to.
func CanTransition(from, to Status) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}
