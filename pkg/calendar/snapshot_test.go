package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwatch/meetwatch/pkg/models"
)

func snapshotEvent(id, calendarID string, start time.Time, duration time.Duration) models.Event {
	return models.Event{
		ID:         id,
		CalendarID: calendarID,
		Title:      id,
		StartTime:  start,
		EndTime:    start.Add(duration),
	}
}

func TestSnapshot_QueryFiltersCalendarAndWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	snap := newSnapshot()
	snap.replace([]models.Event{
		snapshotEvent("in-window", "work", now.Add(time.Hour), 30*time.Minute),
		snapshotEvent("other-calendar", "personal", now.Add(time.Hour), 30*time.Minute),
		snapshotEvent("too-late", "work", now.Add(9*time.Hour), 30*time.Minute),
		snapshotEvent("already-over", "work", now.Add(-2*time.Hour), 30*time.Minute),
		snapshotEvent("still-running", "work", now.Add(-10*time.Minute), time.Hour),
	})

	events := snap.query(now, now.Add(8*time.Hour), []string{"work"})
	require.Len(t, events, 2)
	ids := []string{events[0].ID, events[1].ID}
	assert.Contains(t, ids, "in-window")
	assert.Contains(t, ids, "still-running", "running events intersect the window")
}

func TestSnapshot_EmptyCalendarSetYieldsNothing(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	snap := newSnapshot()
	snap.replace([]models.Event{
		snapshotEvent("e1", "work", now.Add(time.Hour), 30*time.Minute),
	})

	assert.Empty(t, snap.query(now, now.Add(8*time.Hour), nil))
	assert.Empty(t, snap.query(now, now.Add(8*time.Hour), []string{}))
}

func TestSnapshot_ChangeSignalOnlyOnDifference(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	snap := newSnapshot()

	events := []models.Event{snapshotEvent("e1", "work", now, time.Hour)}
	snap.replace(events)

	select {
	case <-snap.Changes():
	default:
		t.Fatal("expected a change signal after first replace")
	}

	snap.replace([]models.Event{snapshotEvent("e1", "work", now, time.Hour)})
	select {
	case <-snap.Changes():
		t.Fatal("identical replace must not signal")
	default:
	}

	snap.replace([]models.Event{snapshotEvent("e2", "work", now, time.Hour)})
	select {
	case <-snap.Changes():
	default:
		t.Fatal("expected a change signal after contents changed")
	}
}
