package calendar

import (
	"regexp"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// Scheme match is case-insensitive; everything after it up to the next
// whitespace counts as the URL.
var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// MeetingLink resolves the meeting URL for an event. An event-native
// URL attachment wins without any text scanning; otherwise the first
// URL-looking substring of the location is used, then of the notes.
// Only the first match within the first matching field counts. An
// empty result is a normal outcome, not an error.
func MeetingLink(event models.Event) string {
	if event.URL != "" {
		return event.URL
	}
	if link := urlPattern.FindString(event.Location); link != "" {
		return link
	}
	return urlPattern.FindString(event.Notes)
}
