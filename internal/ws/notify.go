package ws

import (
	"encoding/json"
	"time"

	"jobmatch/internal/domain/match"
)

const (
	EventMatchCreated       = "match_created"
	EventMatchStatusChanged = "match_status_changed"
)

type MatchEvent struct {
	Type           string       `json:"type"`
	MatchID        string       `json:"matchId"`
	JobID          string       `json:"jobId"`
	JobSeekerID    string       `json:"jobSeekerId"`
	EmployerID     string       `json:"employerId"`
	Score          float64      `json:"score"`
	Status         match.Status `json:"status"`
	PreviousStatus match.Status `json:"previousStatus,omitempty"`
	Timestamp      string       `json:"timestamp"`
}

// Notifier publishes match lifecycle events on a hub.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) MatchCreated(m match.Result) {
	n.emit(EventMatchCreated, m, "")
}

func (n *Notifier) MatchStatusChanged(m match.Result, from match.Status) {
	n.emit(EventMatchStatusChanged, m, from)
}

func (n *Notifier) emit(typ string, m match.Result, from match.Status) {
	if n == nil || n.hub == nil {
		return
	}
	evt := MatchEvent{
		Type:           typ,
		MatchID:        m.ID,
		JobID:          m.JobID,
		JobSeekerID:    m.JobSeekerID,
		EmployerID:     m.EmployerID,
		Score:          m.Score,
		Status:         m.Status,
		PreviousStatus: from,
		Timestamp:      n.now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.publish(evt, b)
}
