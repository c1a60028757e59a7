package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// syncHorizon is how far ahead each sync fetches events. It comfortably
// covers the monitor's look-ahead window so a snapshot never starves
// the selector between syncs.
const syncHorizon = 24 * time.Hour

// ICSBackend serves events from named ICS-over-HTTP sources. Every
// source is one selectable calendar. Sources are re-read from the
// configuration on each sync so settings edits apply without a rebuild.
type ICSBackend struct {
	snap     *snapshot
	sources  func() []models.ICalSource
	interval func() time.Duration
	client   *http.Client
}

// NewICSBackend creates an ICS backend. sources and interval are read
// fresh on every sync cycle.
func NewICSBackend(sources func() []models.ICalSource, interval func() time.Duration) *ICSBackend {
	return &ICSBackend{
		snap:     newSnapshot(),
		sources:  sources,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *ICSBackend) QueryEvents(ctx context.Context, start, end time.Time, calendarIDs []string) ([]models.Event, error) {
	return b.snap.query(start, end, calendarIDs), nil
}

func (b *ICSBackend) Calendars(ctx context.Context) ([]Info, error) {
	sources := b.sources()
	infos := make([]Info, 0, len(sources))
	for _, source := range sources {
		if !source.Validate() {
			continue
		}
		infos = append(infos, Info{ID: source.ID, Name: source.Name})
	}
	return infos, nil
}

// RequestAccess always grants: ICS feeds have no permission model.
func (b *ICSBackend) RequestAccess(ctx context.Context) (bool, error) {
	return true, nil
}

func (b *ICSBackend) Changes() <-chan struct{} {
	return b.snap.Changes()
}

// Run syncs immediately, then keeps the snapshot fresh until ctx is
// cancelled.
func (b *ICSBackend) Run(ctx context.Context) {
	b.Sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.interval()):
			b.Sync(ctx)
		}
	}
}

// Sync fetches all valid sources and replaces the snapshot.
func (b *ICSBackend) Sync(ctx context.Context) {
	now := time.Now()
	windowStart := now
	windowEnd := now.Add(syncHorizon)

	allEvents := []models.Event{}
	for _, source := range b.sources() {
		if !source.Validate() {
			continue
		}

		events, err := b.fetchSource(ctx, source, windowStart, windowEnd)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"source": source.Name,
				"url":    source.URL,
			}).Error("Failed to sync ICS source")
			continue
		}

		log.WithFields(log.Fields{
			"source": source.Name,
			"events": len(events),
		}).Debug("Synced ICS source")
		allEvents = append(allEvents, events...)
	}

	b.snap.replace(allEvents)
}

func (b *ICSBackend) fetchSource(ctx context.Context, source models.ICalSource, windowStart, windowEnd time.Time) ([]models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := validateICSFormat(string(body)); err != nil {
		return nil, err
	}

	return decodeEvents(strings.NewReader(string(body)), source.ID, windowStart, windowEnd)
}

func validateICSFormat(body string) error {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)

	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}

	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", preview)
	}

	return nil
}
