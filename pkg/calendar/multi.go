package calendar

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// Multi combines several backends behind a single Provider so the
// monitor does not care which backend a calendar lives on.
type Multi struct {
	backends []Backend
	changes  chan struct{}
}

// NewMulti combines the given backends.
func NewMulti(backends ...Backend) *Multi {
	return &Multi{
		backends: backends,
		changes:  make(chan struct{}, 1),
	}
}

// QueryEvents concatenates events from all backends. A failing backend
// is skipped so one broken source never blanks the others; the error
// surfaces only when every backend failed.
func (m *Multi) QueryEvents(ctx context.Context, start, end time.Time, calendarIDs []string) ([]models.Event, error) {
	var events []models.Event
	var firstErr error
	failures := 0

	for _, backend := range m.backends {
		backendEvents, err := backend.QueryEvents(ctx, start, end, calendarIDs)
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			log.WithError(err).Warn("Calendar backend query failed")
			continue
		}
		events = append(events, backendEvents...)
	}

	if failures == len(m.backends) && firstErr != nil {
		return nil, firstErr
	}
	return events, nil
}

// Calendars concatenates the calendar lists of all backends.
func (m *Multi) Calendars(ctx context.Context) ([]Info, error) {
	var infos []Info
	for _, backend := range m.backends {
		backendInfos, err := backend.Calendars(ctx)
		if err != nil {
			log.WithError(err).Warn("Calendar backend listing failed")
			continue
		}
		infos = append(infos, backendInfos...)
	}
	return infos, nil
}

// RequestAccess grants only when every backend grants.
func (m *Multi) RequestAccess(ctx context.Context) (bool, error) {
	for _, backend := range m.backends {
		granted, err := backend.RequestAccess(ctx)
		if err != nil {
			return false, err
		}
		if !granted {
			return false, nil
		}
	}
	return true, nil
}

func (m *Multi) Changes() <-chan struct{} {
	return m.changes
}

// Run starts every backend's sync loop and fans their change signals
// into one stream until ctx is cancelled.
func (m *Multi) Run(ctx context.Context) {
	for _, backend := range m.backends {
		go backend.Run(ctx)
		go m.forwardChanges(ctx, backend.Changes())
	}
	<-ctx.Done()
}

// Sync refreshes every backend immediately.
func (m *Multi) Sync(ctx context.Context) {
	for _, backend := range m.backends {
		backend.Sync(ctx)
	}
}

func (m *Multi) forwardChanges(ctx context.Context, in <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-in:
			select {
			case m.changes <- struct{}{}:
			default:
			}
		}
	}
}
