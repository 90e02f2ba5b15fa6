package dnc

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a driver signal
type EventType string

const (
	EventStarted   EventType = "check.started"
	EventChecking  EventType = "check.number.checking"
	EventProgress  EventType = "check.progress"
	EventCompleted EventType = "check.completed"
	EventCancelled EventType = "check.cancelled"
)

// Event is a progress or terminal signal emitted while a session runs
type Event struct {
	Type      EventType `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	Progress  float64   `json:"progress"`
	Cursor    int       `json:"cursor"`
	Total     int       `json:"total"`
	Number    string    `json:"number,omitempty"`
	Status    Status    `json:"status,omitempty"`
	Counts    Counts    `json:"counts"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether no further events follow for the session
func (e Event) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventCancelled
}

// NewEvent stamps an event from the current session snapshot
func NewEvent(eventType EventType, snap SessionSnapshot, now time.Time) Event {
	return Event{
		Type:      eventType,
		SessionID: snap.ID,
		Progress:  snap.Progress,
		Cursor:    snap.Cursor,
		Total:     snap.Total,
		Counts:    snap.Counts,
		Timestamp: now,
	}
}
