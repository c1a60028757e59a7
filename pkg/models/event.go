package models

import (
	"time"
)

// Event is a single calendar event as reported by a provider.
// Instances are rebuilt wholesale on every sync and never mutated;
// a newly selected next-event always supersedes the previous one.
type Event struct {
	ID         string // stable identifier within the provider's dataset
	CalendarID string // identifier of the calendar this event came from
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Location   string
	Notes      string
	URL        string // event-native URL attachment, may be empty
	Status     string
}

// MinutesUntilStart returns the whole minutes from now until the event
// starts, floored and never negative.
func (e Event) MinutesUntilStart(now time.Time) int {
	until := e.StartTime.Sub(now)
	if until <= 0 {
		return 0
	}
	return int(until / time.Minute)
}
