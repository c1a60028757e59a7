package calendar

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emersion/go-webdav/caldav"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// calendarIDPrefix namespaces CalDAV calendar paths so they never
// collide with ICS source identifiers.
const calendarIDPrefix = "caldav:"

// basicAuthTransport adds Basic Auth and a stable User-Agent to every
// CalDAV request.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "meetwatch/1.0")
	return t.base.RoundTrip(req)
}

// CalDAVBackend serves events from the calendars discovered behind one
// CalDAV account. The account is re-read from the configuration on
// each sync, so an unconfigured account simply yields no calendars.
type CalDAVBackend struct {
	snap     *snapshot
	account  func() models.CalDAVAccount
	interval func() time.Duration

	mu        sync.Mutex
	endpoint  string
	client    *caldav.Client
	calendars []Info
	paths     map[string]string // calendar ID -> CalDAV path
}

// NewCalDAVBackend creates a CalDAV backend. account and interval are
// read fresh on every sync cycle.
func NewCalDAVBackend(account func() models.CalDAVAccount, interval func() time.Duration) *CalDAVBackend {
	return &CalDAVBackend{
		snap:     newSnapshot(),
		account:  account,
		interval: interval,
		paths:    map[string]string{},
	}
}

func (b *CalDAVBackend) QueryEvents(ctx context.Context, start, end time.Time, calendarIDs []string) ([]models.Event, error) {
	return b.snap.query(start, end, calendarIDs), nil
}

// Calendars returns the calendars found during the last discovery,
// running a discovery first if none has happened yet.
func (b *CalDAVBackend) Calendars(ctx context.Context) ([]Info, error) {
	b.mu.Lock()
	cached := b.calendars
	b.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	return b.discover(ctx)
}

// RequestAccess probes the account by resolving the current-user
// principal. A failing probe reports denied access.
func (b *CalDAVBackend) RequestAccess(ctx context.Context) (bool, error) {
	account := b.account()
	if !account.Configured() {
		return true, nil
	}

	client, err := b.clientFor(account)
	if err != nil {
		return false, err
	}
	if _, err := client.FindCurrentUserPrincipal(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return true, nil
}

func (b *CalDAVBackend) Changes() <-chan struct{} {
	return b.snap.Changes()
}

// Run syncs immediately, then keeps the snapshot fresh until ctx is
// cancelled.
func (b *CalDAVBackend) Run(ctx context.Context) {
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

// Sync rediscovers the account's calendars and refreshes the snapshot
// with every event inside the sync horizon.
func (b *CalDAVBackend) Sync(ctx context.Context) {
	account := b.account()
	if !account.Configured() {
		b.mu.Lock()
		b.calendars = nil
		b.paths = map[string]string{}
		b.mu.Unlock()
		b.snap.replace(nil)
		return
	}

	infos, err := b.discover(ctx)
	if err != nil {
		log.WithError(err).WithField("endpoint", account.Endpoint).Error("CalDAV discovery failed")
		return
	}

	now := time.Now()
	windowStart := now
	windowEnd := now.Add(syncHorizon)

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{Name: "VEVENT", AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: windowStart,
				End:   windowEnd,
			}},
		},
	}

	b.mu.Lock()
	client := b.client
	paths := make(map[string]string, len(b.paths))
	for id, path := range b.paths {
		paths[id] = path
	}
	b.mu.Unlock()

	allEvents := []models.Event{}
	for _, info := range infos {
		objects, err := client.QueryCalendar(ctx, paths[info.ID], query)
		if err != nil {
			log.WithError(err).WithField("calendar", info.Name).Error("CalDAV query failed")
			continue
		}

		seen := make(map[string]bool)
		count := 0
		for _, object := range objects {
			if object.Data == nil {
				continue
			}
			events := eventsFromCalendar(object.Data, info.ID, windowStart, windowEnd, seen)
			count += len(events)
			allEvents = append(allEvents, events...)
		}
		log.WithFields(log.Fields{
			"calendar": info.Name,
			"events":   count,
		}).Debug("Synced CalDAV calendar")
	}

	b.snap.replace(allEvents)
}

// discover resolves principal, home set and calendar list, caching the
// result for Calendars.
func (b *CalDAVBackend) discover(ctx context.Context) ([]Info, error) {
	account := b.account()
	if !account.Configured() {
		return nil, nil
	}

	client, err := b.clientFor(account)
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	infos := make([]Info, 0, len(calendars))
	paths := make(map[string]string, len(calendars))
	for _, cal := range calendars {
		id := calendarIDPrefix + cal.Path
		infos = append(infos, Info{ID: id, Name: cal.Name})
		paths[id] = cal.Path
	}

	b.mu.Lock()
	b.calendars = infos
	b.paths = paths
	b.mu.Unlock()

	return infos, nil
}

// clientFor returns a CalDAV client for the account, rebuilding it when
// the endpoint changed since the last sync.
func (b *CalDAVBackend) clientFor(account models.CalDAVAccount) (*caldav.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil && b.endpoint == account.Endpoint {
		return b.client, nil
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: account.Username,
			password: account.Password,
			base:     http.DefaultTransport,
		},
	}
	client, err := caldav.NewClient(httpClient, account.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	b.client = client
	b.endpoint = account.Endpoint
	return client, nil
}
