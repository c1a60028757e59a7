package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
)

type fakeProvider struct {
	events  []models.Event
	err     error
	changes chan struct{}

	lastStart time.Time
	lastEnd   time.Time
	lastIDs   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{changes: make(chan struct{}, 1)}
}

func (p *fakeProvider) QueryEvents(ctx context.Context, start, end time.Time, calendarIDs []string) ([]models.Event, error) {
	p.lastStart, p.lastEnd, p.lastIDs = start, end, calendarIDs
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

func (p *fakeProvider) Calendars(ctx context.Context) ([]calendar.Info, error) {
	return nil, nil
}

func (p *fakeProvider) RequestAccess(ctx context.Context) (bool, error) {
	return true, nil
}

func (p *fakeProvider) Changes() <-chan struct{} {
	return p.changes
}

type spyPresenter struct {
	shown []models.Event
}

func (p *spyPresenter) Show(event models.Event) {
	p.shown = append(p.shown, event)
}

type staticConfig struct {
	config *models.Config
}

func (s *staticConfig) Load() *models.Config {
	return s.config
}

func event(id string, start time.Time) models.Event {
	return models.Event{
		ID:         id,
		CalendarID: "work",
		Title:      id,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	}
}

func newTestMonitor(events []models.Event, leadMinutes int, now time.Time) (*Monitor, *fakeProvider, *spyPresenter, *MockClock) {
	provider := newFakeProvider()
	provider.events = events
	presenter := &spyPresenter{}
	clock := &MockClock{FixedNow: now}
	config := &staticConfig{config: &models.Config{
		AlertLeadMinutes:   leadMinutes,
		EnabledCalendarIDs: []string{"work"},
	}}
	m := New(provider, config, presenter, WithClock(clock))
	return m, provider, presenter, clock
}

func TestEvaluate_EmptyCalendarSelectionYieldsNoEvents(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(2*time.Minute)),
	}, 10, now)
	m.config = &staticConfig{config: &models.Config{
		AlertLeadMinutes:   10,
		EnabledCalendarIDs: nil,
	}}

	m.Evaluate(context.Background())

	assert.Nil(t, m.CurrentNextEvent())
	assert.Empty(t, presenter.shown)
	assert.True(t, provider.lastStart.IsZero(), "provider must not be queried at all")
}

func TestEvaluate_SoonestStartWins(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, _, _, _ := newTestMonitor([]models.Event{
		event("later", now.Add(3*time.Hour)),
		event("soonest", now.Add(time.Hour)),
		event("middle", now.Add(2*time.Hour)),
	}, 10, now)

	m.Evaluate(context.Background())

	next := m.CurrentNextEvent()
	require.NotNil(t, next)
	assert.Equal(t, "soonest", next.ID)
}

func TestEvaluate_TieKeepsProviderOrder(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)
	m, _, _, _ := newTestMonitor([]models.Event{
		event("first-in-provider-order", start),
		event("second-in-provider-order", start),
	}, 10, now)

	m.Evaluate(context.Background())

	next := m.CurrentNextEvent()
	require.NotNil(t, next)
	assert.Equal(t, "first-in-provider-order", next.ID)
}

func TestEvaluate_OneShotLatch(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, _, presenter, clock := newTestMonitor([]models.Event{
		event("e1", now.Add(5*time.Minute)),
	}, 10, now)

	m.Evaluate(context.Background())
	require.Len(t, presenter.shown, 1, "first evaluation inside the lead window fires")
	assert.Equal(t, "e1", presenter.shown[0].ID)

	clock.Advance(time.Second)
	m.Evaluate(context.Background())
	assert.Len(t, presenter.shown, 1, "same event never fires twice")
}

func TestEvaluate_LatchResetsOnEventChange(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(5*time.Minute)),
	}, 10, now)

	m.Evaluate(context.Background())
	require.Len(t, presenter.shown, 1)

	// e1 disappears, e2 shows up already within the lead window.
	provider.events = []models.Event{event("e2", now.Add(7*time.Minute))}
	m.Evaluate(context.Background())

	require.Len(t, presenter.shown, 2, "a different next event gets a fresh chance to alert")
	assert.Equal(t, "e2", presenter.shown[1].ID)
}

func TestEvaluate_LatchSurvivesNoneThenSameEvent(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(5*time.Minute)),
	}, 10, now)

	m.Evaluate(context.Background())
	require.Len(t, presenter.shown, 1)

	// Next event goes away: memory resets.
	provider.events = nil
	m.Evaluate(context.Background())
	assert.Nil(t, m.CurrentNextEvent())

	// The same event returning is a new selection and may fire again.
	provider.events = []models.Event{event("e1", now.Add(5*time.Minute))}
	m.Evaluate(context.Background())
	assert.Len(t, presenter.shown, 2)
}

func TestEvaluate_BoundaryConditions(t *testing.T) {
	testCases := []struct {
		name       string
		untilStart time.Duration
		wantFire   bool
	}{
		{name: "exactly at lead fires", untilStart: 10 * time.Minute, wantFire: true},
		{name: "inside lead fires", untilStart: time.Second, wantFire: true},
		{name: "starting now does not fire", untilStart: 0, wantFire: false},
		{name: "already started does not fire", untilStart: -time.Minute, wantFire: false},
		{name: "beyond lead does not fire", untilStart: 10*time.Minute + time.Second, wantFire: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
			m, _, presenter, _ := newTestMonitor([]models.Event{
				event("e1", now.Add(tc.untilStart)),
			}, 10, now)

			m.Evaluate(context.Background())

			if tc.wantFire {
				assert.Len(t, presenter.shown, 1)
			} else {
				assert.Empty(t, presenter.shown)
			}
		})
	}
}

func TestEvaluate_ProviderErrorDegradesToNone(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(5*time.Minute)),
	}, 10, now)

	provider.err = calendar.ErrAccessDenied
	m.Evaluate(context.Background())

	assert.Nil(t, m.CurrentNextEvent())
	assert.Empty(t, presenter.shown)

	// Access restored on a later poll: normal operation resumes.
	provider.err = nil
	m.Evaluate(context.Background())
	require.NotNil(t, m.CurrentNextEvent())
	assert.Len(t, presenter.shown, 1)
}

func TestEvaluate_QueriesLookAheadWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, _, _ := newTestMonitor(nil, 10, now)

	m.Evaluate(context.Background())

	assert.True(t, provider.lastStart.Equal(now))
	assert.True(t, provider.lastEnd.Equal(now.Add(LookAhead)))
	assert.Equal(t, []string{"work"}, provider.lastIDs)
}

func TestEvaluate_LeadTimeClampedFromConfig(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// 90 configured clamps to 30: an event 40 minutes out must not fire.
	m, _, presenter, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(40*time.Minute)),
	}, 90, now)

	m.Evaluate(context.Background())
	assert.Empty(t, presenter.shown)
}

func TestShowTestAlert_BypassesLatch(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, _, presenter, _ := newTestMonitor(nil, 10, now)

	sample := event("sample", now.Add(time.Hour))
	m.ShowTestAlert(sample)
	m.ShowTestAlert(sample)

	assert.Len(t, presenter.shown, 2, "test alerts skip the one-shot latch")
}

func TestCurrentNextEvent_ReturnsCopy(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, _, _, _ := newTestMonitor([]models.Event{
		event("e1", now.Add(time.Hour)),
	}, 10, now)

	m.Evaluate(context.Background())

	first := m.CurrentNextEvent()
	require.NotNil(t, first)
	first.Title = "mutated"

	second := m.CurrentNextEvent()
	require.NotNil(t, second)
	assert.Equal(t, "e1", second.Title)
}

func TestRefresh_TriggersEvaluationOnRunLoop(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor(nil, 10, now)

	updates := make(chan struct{}, 16)
	m.onUpdate = func(*models.Event) {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// Initial evaluation.
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected initial evaluation")
	}

	provider.events = []models.Event{event("e1", now.Add(5*time.Minute))}
	m.Refresh()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected evaluation after Refresh")
	}
	assert.Len(t, presenter.shown, 1)
}

func TestRun_ReactsToProviderChanges(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m, provider, presenter, _ := newTestMonitor(nil, 10, now)

	updates := make(chan struct{}, 16)
	m.onUpdate = func(*models.Event) {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected initial evaluation")
	}

	provider.events = []models.Event{event("e1", now.Add(5*time.Minute))}
	provider.changes <- struct{}{}

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected evaluation after provider change signal")
	}
	assert.Len(t, presenter.shown, 1)
}
