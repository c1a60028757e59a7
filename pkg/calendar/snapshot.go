package calendar

import (
	"sort"
	"sync"
	"time"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// snapshot is the in-memory event cache shared by the sync-loop
// backends. QueryEvents reads from it so the 10-second poll path never
// touches the network; the sync loop replaces its contents and the
// change channel fires when the replacement actually changed anything.
type snapshot struct {
	mu      sync.RWMutex
	events  []models.Event
	changes chan struct{}
}

func newSnapshot() *snapshot {
	return &snapshot{changes: make(chan struct{}, 1)}
}

func (s *snapshot) Changes() <-chan struct{} {
	return s.changes
}

// replace swaps in a freshly synced event list and signals the change
// channel if the list differs from the previous one. The signal is
// dropped rather than blocking when nobody has drained the last one.
func (s *snapshot) replace(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})

	s.mu.Lock()
	changed := !equalEvents(s.events, events)
	s.events = events
	s.mu.Unlock()

	if changed {
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}

// query returns events intersecting [start, end) on the given
// calendars. An empty identifier list yields nothing: no calendars
// selected means no events considered.
func (s *snapshot) query(start, end time.Time, calendarIDs []string) []models.Event {
	if len(calendarIDs) == 0 {
		return nil
	}
	enabled := make(map[string]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		enabled[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Event
	for _, event := range s.events {
		if !enabled[event.CalendarID] {
			continue
		}
		if event.StartTime.Before(end) && event.EndTime.After(start) {
			result = append(result, event)
		}
	}
	return result
}

func equalEvents(a, b []models.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
