package monitor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
)

const (
	// LookAhead is the forward window searched for the next event.
	LookAhead = 8 * time.Hour

	// PollInterval drives periodic re-evaluation.
	PollInterval = 10 * time.Second
)

// Presenter receives fire commands for events whose lead-time threshold
// was crossed. Implementations guard against re-entrant shows.
type Presenter interface {
	Show(event models.Event)
}

// ConfigSource yields the current configuration. It is re-read on every
// evaluation so live settings edits apply on the next tick.
type ConfigSource interface {
	Load() *models.Config
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces the system clock, for tests.
func WithClock(clock Clock) Option {
	return func(m *Monitor) { m.clock = clock }
}

// WithOnUpdate registers a callback invoked after every evaluation with
// the current next event (nil when none). Called on the monitor
// goroutine; implementations dispatch to their own context.
func WithOnUpdate(fn func(next *models.Event)) Option {
	return func(m *Monitor) { m.onUpdate = fn }
}

// Monitor owns the evaluation pipeline: select the soonest-starting
// event inside the look-ahead window, then fire the presenter once per
// event identity when the lead-time threshold is crossed. All
// evaluation runs serially, either on the Run goroutine or driven
// directly by tests.
type Monitor struct {
	provider  calendar.Provider
	config    ConfigSource
	presenter Presenter
	clock     Clock
	onUpdate  func(next *models.Event)

	mu               sync.Mutex
	next             *models.Event
	lastAlertEventID string

	refreshCh chan struct{}
}

// New creates a Monitor. It does not start polling; call Run.
func New(provider calendar.Provider, config ConfigSource, presenter Presenter, opts ...Option) *Monitor {
	m := &Monitor{
		provider:  provider,
		config:    config,
		presenter: presenter,
		clock:     SystemClock{},
		refreshCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run evaluates immediately, then keeps evaluating on every poll tick,
// provider change signal, and Refresh call until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	m.Evaluate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evaluate(ctx)
		case <-m.provider.Changes():
			m.Evaluate(ctx)
		case <-m.refreshCh:
			m.Evaluate(ctx)
		}
	}
}

// Refresh requests an immediate re-evaluation on the Run goroutine.
// A request is dropped when one is already pending; evaluation is
// idempotent so nothing is lost.
func (m *Monitor) Refresh() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

// CurrentNextEvent returns a copy of the currently selected next event,
// or nil when none.
func (m *Monitor) CurrentNextEvent() *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == nil {
		return nil
	}
	event := *m.next
	return &event
}

// ShowTestAlert fires the presenter directly, bypassing the selection
// pipeline and the alert latch. Diagnostics only.
func (m *Monitor) ShowTestAlert(event models.Event) {
	m.presenter.Show(event)
}

// Evaluate runs one pass of the pipeline: re-select the next event,
// reset the latch if the event identity changed, and fire the presenter
// when the lead-time condition holds. Running it twice in a row has the
// same observable effect as once.
func (m *Monitor) Evaluate(ctx context.Context) {
	now := m.clock.Now()
	config := m.config.Load()

	next := m.selectNext(ctx, now, config)

	m.mu.Lock()
	if !sameIdentity(m.next, next) {
		// A new next event gets a fresh chance to alert.
		m.lastAlertEventID = ""
	}
	m.next = next

	var fire *models.Event
	if next != nil && m.lastAlertEventID != next.ID {
		untilStart := next.StartTime.Sub(now)
		lead := time.Duration(config.LeadMinutes()) * time.Minute
		if untilStart > 0 && untilStart <= lead {
			m.lastAlertEventID = next.ID
			event := *next
			fire = &event
		}
	}
	m.mu.Unlock()

	if fire != nil {
		log.WithFields(log.Fields{
			"event": fire.Title,
			"start": fire.StartTime.Format(time.RFC3339),
		}).Info("Firing alert")
		m.presenter.Show(*fire)
	}

	if m.onUpdate != nil {
		m.onUpdate(next)
	}
}

// selectNext queries the provider over [now, now+LookAhead] restricted
// to the enabled calendars and picks the soonest-starting event. No
// enabled calendars means no events considered. Provider failures
// degrade to "none" rather than propagating.
func (m *Monitor) selectNext(ctx context.Context, now time.Time, config *models.Config) *models.Event {
	if len(config.EnabledCalendarIDs) == 0 {
		return nil
	}

	events, err := m.provider.QueryEvents(ctx, now, now.Add(LookAhead), config.EnabledCalendarIDs)
	if err != nil {
		if errors.Is(err, calendar.ErrAccessDenied) {
			log.Warn("Calendar access denied; treating as no events")
		} else {
			log.WithError(err).Warn("Calendar query failed; treating as no events")
		}
		return nil
	}
	if len(events) == 0 {
		return nil
	}

	// Stable sort: ties keep provider order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})

	event := events[0]
	return &event
}

func sameIdentity(a, b *models.Event) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}
