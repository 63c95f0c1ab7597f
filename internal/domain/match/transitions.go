// Package match defines match records and their status state machine.
//
// Valid status graph:
//
//	PENDING ──► ACCEPTED
//	    │
//	    └─────► REJECTED
//
// ACCEPTED and REJECTED are terminal states.
package match

import (
	"strings"

	"jobmatch/internal/domain"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var validTransitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusRejected},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", domain.InvalidInputf("unknown match status %q", s)
}

func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}
