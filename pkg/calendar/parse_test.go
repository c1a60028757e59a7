package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const icsHeader = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n"

func TestDecodeEvents_BasicFields(t *testing.T) {
	windowStart := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(24 * time.Hour)

	ics := icsHeader +
		"BEGIN:VEVENT\r\n" +
		"UID:evt-1\r\n" +
		"SUMMARY:Design review\r\n" +
		"DESCRIPTION:join at https://call.example.com/x\r\n" +
		"LOCATION:Room 4B\r\n" +
		"URL:https://zoom.example.com/j/123\r\n" +
		"DTSTART:20260302T130000Z\r\n" +
		"DTEND:20260302T140000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, "cal-1", event.CalendarID)
	assert.Equal(t, "Design review", event.Title)
	assert.Equal(t, "Room 4B", event.Location)
	assert.Equal(t, "join at https://call.example.com/x", event.Notes)
	assert.Equal(t, "https://zoom.example.com/j/123", event.URL)
	assert.True(t, event.StartTime.Equal(time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)))
	assert.True(t, event.EndTime.Equal(time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)))
}

func TestDecodeEvents_FiltersCancelledAndAllDay(t *testing.T) {
	windowStart := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(24 * time.Hour)

	ics := icsHeader +
		// Explicitly cancelled.
		"BEGIN:VEVENT\r\n" +
		"UID:evt-cancelled\r\n" +
		"SUMMARY:Weekly sync\r\n" +
		"STATUS:CANCELLED\r\n" +
		"DTSTART:20260302T130000Z\r\n" +
		"DTEND:20260302T140000Z\r\n" +
		"END:VEVENT\r\n" +
		// Cancelled only in the title.
		"BEGIN:VEVENT\r\n" +
		"UID:evt-title-cancelled\r\n" +
		"SUMMARY:Canceled: retro\r\n" +
		"DTSTART:20260302T150000Z\r\n" +
		"DTEND:20260302T160000Z\r\n" +
		"END:VEVENT\r\n" +
		// Multi-day all-day block.
		"BEGIN:VEVENT\r\n" +
		"UID:evt-allday\r\n" +
		"SUMMARY:Conference\r\n" +
		"DTSTART:20260302T000000Z\r\n" +
		"DTEND:20260304T000000Z\r\n" +
		"END:VEVENT\r\n" +
		// Missing end time.
		"BEGIN:VEVENT\r\n" +
		"UID:evt-no-end\r\n" +
		"SUMMARY:Broken\r\n" +
		"DTSTART:20260302T130000Z\r\n" +
		"END:VEVENT\r\n" +
		// The one that survives.
		"BEGIN:VEVENT\r\n" +
		"UID:evt-ok\r\n" +
		"SUMMARY:1:1\r\n" +
		"DTSTART:20260302T170000Z\r\n" +
		"DTEND:20260302T173000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-ok", events[0].ID)
}

func TestDecodeEvents_OutsideWindowExcluded(t *testing.T) {
	windowStart := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(24 * time.Hour)

	ics := icsHeader +
		"BEGIN:VEVENT\r\n" +
		"UID:evt-past\r\n" +
		"SUMMARY:Yesterday\r\n" +
		"DTSTART:20260301T130000Z\r\n" +
		"DTEND:20260301T140000Z\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:evt-far\r\n" +
		"SUMMARY:Next week\r\n" +
		"DTSTART:20260309T130000Z\r\n" +
		"DTEND:20260309T140000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeEvents_ExpandsRecurrence(t *testing.T) {
	windowStart := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(72 * time.Hour)

	ics := icsHeader +
		"BEGIN:VEVENT\r\n" +
		"UID:evt-daily\r\n" +
		"SUMMARY:Standup\r\n" +
		"RRULE:FREQ=DAILY;COUNT=10\r\n" +
		"DTSTART:20260302T130000Z\r\n" +
		"DTEND:20260302T131500Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, events, 3, "three daily occurrences inside a 72h window")

	ids := map[string]bool{}
	for _, event := range events {
		ids[event.ID] = true
		assert.Equal(t, "Standup", event.Title)
		assert.Equal(t, 15*time.Minute, event.EndTime.Sub(event.StartTime))
	}
	assert.Len(t, ids, 3, "each occurrence carries its own identity")
}

func TestDecodeEvents_MissingUIDGetsDeterministicID(t *testing.T) {
	windowStart := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(24 * time.Hour)

	ics := icsHeader +
		"BEGIN:VEVENT\r\n" +
		"SUMMARY:No UID\r\n" +
		"DTSTART:20260302T130000Z\r\n" +
		"DTEND:20260302T140000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	first, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)
	second, err := decodeEvents(strings.NewReader(ics), "cal-1", windowStart, windowEnd)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEmpty(t, first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID, "fallback ID is stable across syncs")
}

func TestValidateICSFormat(t *testing.T) {
	assert.NoError(t, validateICSFormat("BEGIN:VCALENDAR\r\nEND:VCALENDAR"))
	assert.Error(t, validateICSFormat("<!DOCTYPE html><html></html>"))
	assert.Error(t, validateICSFormat("hello"))
}
