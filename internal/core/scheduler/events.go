package scheduler

import "time"

// EventType defines the type of Scheduler event.
type EventType string

const (
	EventStarted         EventType = "started"
	EventStopped         EventType = "stopped"
	EventClick           EventType = "click"
	EventProfileRotated  EventType = "profile_rotated"
	EventMonitorDegraded EventType = "monitor_degraded"
)

// Event represents a Scheduler update for observers.
type Event struct {
	Type    EventType
	X       int
	Y       int
	Message string
	At      time.Time
}
