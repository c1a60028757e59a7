package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// ErrAccessDenied is returned when a backend cannot read calendar data
// because permission was not granted. Callers degrade to an empty
// event list and do not retry beyond the regular poll.
var ErrAccessDenied = errors.New("calendar access denied")

// Info describes one selectable calendar.
type Info struct {
	ID   string
	Name string
}

// Provider is the read-only calendar capability the monitor consumes.
type Provider interface {
	// QueryEvents returns events whose interval intersects [start, end),
	// restricted to the given calendar identifiers. An empty identifier
	// list yields no events.
	QueryEvents(ctx context.Context, start, end time.Time, calendarIDs []string) ([]models.Event, error)

	// Calendars lists the calendars this provider can read.
	Calendars(ctx context.Context) ([]Info, error)

	// RequestAccess asks the backend for read permission. Backends
	// without a permission model grant immediately.
	RequestAccess(ctx context.Context) (bool, error)

	// Changes emits whenever the provider's data changed out of band,
	// so the monitor can re-evaluate without waiting for the next tick.
	Changes() <-chan struct{}
}

// Backend is a Provider that maintains its own snapshot via a
// background sync loop.
type Backend interface {
	Provider

	// Run drives the backend's sync loop until ctx is cancelled.
	Run(ctx context.Context)

	// Sync refreshes the backend's snapshot immediately.
	Sync(ctx context.Context)
}
