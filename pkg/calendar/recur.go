package calendar

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// expandRecurring expands a recurring event into the concrete
// instances falling inside [windowStart, windowEnd). Each instance
// gets an identity of its own so the alert latch treats separate
// occurrences separately.
func expandRecurring(base models.Event, rule string, windowStart, windowEnd time.Time) []models.Event {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"title": base.Title,
			"rrule": rule,
		}).Warn("Skipping event with unparseable RRULE")
		return nil
	}
	r.DTStart(base.StartTime)

	duration := base.EndTime.Sub(base.StartTime)

	// Widen the lower bound so an occurrence that started earlier but
	// is still running intersects the window.
	occurrences := r.Between(windowStart.Add(-duration), windowEnd, true)

	events := make([]models.Event, 0, len(occurrences))
	for _, start := range occurrences {
		instance := base
		instance.StartTime = start
		instance.EndTime = start.Add(duration)
		instance.ID = base.ID + "-" + start.Format(time.RFC3339)
		events = append(events, instance)
	}
	return events
}
