package calendar

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/models"
)

var cancelledTitle = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// decodeEvents decodes every VEVENT from an iCalendar stream,
// expanding recurring events into concrete instances inside
// [windowStart, windowEnd).
func decodeEvents(r io.Reader, calendarID string, windowStart, windowEnd time.Time) ([]models.Event, error) {
	decoder := ical.NewDecoder(r)

	var events []models.Event
	seen := make(map[string]bool)

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		events = append(events, eventsFromCalendar(cal, calendarID, windowStart, windowEnd, seen)...)
	}

	return events, nil
}

// eventsFromCalendar extracts the includable VEVENTs of one decoded
// calendar, deduplicating across calendars through seen.
func eventsFromCalendar(cal *ical.Calendar, calendarID string, windowStart, windowEnd time.Time, seen map[string]bool) []models.Event {
	var events []models.Event

	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}

		event := parseEvent(comp, calendarID)

		if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil {
			for _, instance := range expandRecurring(event, rruleProp.Value, windowStart, windowEnd) {
				if includeEvent(instance, windowStart, windowEnd) && !seen[instance.ID] {
					seen[instance.ID] = true
					events = append(events, instance)
				}
			}
			continue
		}

		if includeEvent(event, windowStart, windowEnd) && !seen[event.ID] {
			seen[event.ID] = true
			events = append(events, event)
		}
	}

	return events
}

func parseEvent(comp *ical.Component, calendarID string) models.Event {
	event := models.Event{CalendarID: calendarID}

	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		event.ID = prop.Value
	}
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		event.Title = prop.Value
	}
	if prop := comp.Props.Get(ical.PropDescription); prop != nil {
		event.Notes = prop.Value
	}
	if prop := comp.Props.Get(ical.PropLocation); prop != nil {
		event.Location = prop.Value
	}
	if prop := comp.Props.Get(ical.PropURL); prop != nil {
		event.URL = prop.Value
	}
	if prop := comp.Props.Get(ical.PropStatus); prop != nil {
		event.Status = prop.Value
	}

	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		if t, err := parseDateTimeProp(prop); err == nil {
			event.StartTime = t
		}
	}
	if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		if t, err := parseDateTimeProp(prop); err == nil {
			event.EndTime = t
		}
	}

	// Polyfill: some feeds mark cancellation only in the title.
	if event.Status != "CANCELLED" {
		cleanTitle := cancelledTitle.ReplaceAllString(strings.ToLower(event.Title), "")
		if strings.HasPrefix(cleanTitle, "canceled") || strings.HasPrefix(cleanTitle, "cancelled") {
			event.Status = "CANCELLED"
		}
	}

	// Fallback: no UID means we derive a deterministic identifier.
	if event.ID == "" {
		event.ID = calendarID + "-" + event.StartTime.Format(time.RFC3339) + "-" + event.Title
	}

	return event
}

// parseDateTimeProp attempts to parse a datetime property with multiple strategies
func parseDateTimeProp(prop *ical.Prop) (time.Time, error) {
	if t, err := prop.DateTime(time.Local); err == nil {
		return t.In(time.Local), nil
	}

	// Some feeds emit datetimes go-ical refuses; try the raw value.
	formats := []string{
		"20060102T150405",     // basic local time
		"20060102T150405Z",    // basic UTC
		time.RFC3339,
		"2006-01-02T15:04:05", // ISO 8601 without zone
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", prop.Value)
}

// includeEvent applies the hygiene filters events must pass before the
// selector ever sees them.
func includeEvent(event models.Event, windowStart, windowEnd time.Time) bool {
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		log.WithField("title", event.Title).Debug("Filtered event with missing time")
		return false
	}

	if event.Status == "CANCELLED" {
		log.WithField("title", event.Title).Debug("Filtered cancelled event")
		return false
	}

	if isAllDayEvent(event) {
		log.WithField("title", event.Title).Debug("Filtered all-day event")
		return false
	}

	return event.StartTime.Before(windowEnd) && event.EndTime.After(windowStart)
}

func isAllDayEvent(event models.Event) bool {
	startDate := event.StartTime.Format("2006-01-02")
	endDate := event.EndTime.Format("2006-01-02")

	// Spans multiple days and lasts at least a full day.
	return startDate != endDate && event.EndTime.Sub(event.StartTime) >= 24*time.Hour
}
