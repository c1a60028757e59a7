package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwatch/meetwatch/pkg/audio"
	"github.com/meetwatch/meetwatch/pkg/models"
)

type fakeSurface struct {
	shown  bool
	closed bool
}

func (s *fakeSurface) Show()  { s.shown = true }
func (s *fakeSurface) Close() { s.closed = true }

func newTestPresenter(surfaceCount int) (*AlertPresenter, *[]*fakeSurface) {
	created := &[]*fakeSurface{}

	p := &AlertPresenter{
		startChime: func() *audio.Player { return nil },
	}
	p.newSurfaces = func(event models.Event, dismiss func()) []alertSurface {
		surfaces := make([]alertSurface, 0, surfaceCount)
		for i := 0; i < surfaceCount; i++ {
			s := &fakeSurface{}
			*created = append(*created, s)
			surfaces = append(surfaces, s)
		}
		return surfaces
	}
	return p, created
}

func testEvent(title string) models.Event {
	return models.Event{
		ID:        "ev-" + title,
		Title:     title,
		StartTime: time.Now().Add(5 * time.Minute),
		EndTime:   time.Now().Add(35 * time.Minute),
	}
}

func TestAlertPresenterShowsAllSurfaces(t *testing.T) {
	p, created := newTestPresenter(2)

	p.Show(testEvent("standup"))

	require.Len(t, *created, 2)
	for _, s := range *created {
		assert.True(t, s.shown)
		assert.False(t, s.closed)
	}
	assert.True(t, p.Showing())
}

func TestAlertPresenterIgnoresShowWhileShowing(t *testing.T) {
	p, created := newTestPresenter(1)

	p.Show(testEvent("first"))
	p.Show(testEvent("second"))

	assert.Len(t, *created, 1, "second show should not build new surfaces")
}

func TestAlertPresenterDismissClosesAllSurfaces(t *testing.T) {
	p, created := newTestPresenter(3)

	p.Show(testEvent("standup"))
	p.Dismiss()

	for _, s := range *created {
		assert.True(t, s.closed)
	}
	assert.False(t, p.Showing())
}

func TestAlertPresenterDismissIsIdempotent(t *testing.T) {
	p, _ := newTestPresenter(1)

	p.Show(testEvent("standup"))
	p.Dismiss()

	assert.NotPanics(t, func() { p.Dismiss() })
}

func TestAlertPresenterShowsAgainAfterDismiss(t *testing.T) {
	p, created := newTestPresenter(1)

	p.Show(testEvent("first"))
	p.Dismiss()
	p.Show(testEvent("second"))

	require.Len(t, *created, 2)
	assert.True(t, (*created)[1].shown)
	assert.False(t, (*created)[1].closed)
	assert.True(t, p.Showing())
}

func TestAlertPresenterSurfaceDismissCallbackClosesSiblings(t *testing.T) {
	p, created := newTestPresenter(2)

	var dismiss func()
	inner := p.newSurfaces
	p.newSurfaces = func(event models.Event, d func()) []alertSurface {
		dismiss = d
		return inner(event, d)
	}

	p.Show(testEvent("standup"))
	require.NotNil(t, dismiss)

	// Simulate the user completing the hold on one window.
	dismiss()

	for _, s := range *created {
		assert.True(t, s.closed)
	}
	assert.False(t, p.Showing())
}
