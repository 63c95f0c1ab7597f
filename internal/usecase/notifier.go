package usecase

import "jobmatch/internal/domain/match"

// MatchNotifier receives match lifecycle events after they are persisted.
// Implementations must not block.
type MatchNotifier interface {
	MatchCreated(m match.Result)
	MatchStatusChanged(m match.Result, from match.Status)
}

type nopNotifier struct{}

func (nopNotifier) MatchCreated(match.Result)                     {}
func (nopNotifier) MatchStatusChanged(match.Result, match.Status) {}
