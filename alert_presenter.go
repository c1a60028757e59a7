package main

import (
	"sync"

	"fyne.io/fyne/v2"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/audio"
	"github.com/meetwatch/meetwatch/pkg/models"
	"github.com/meetwatch/meetwatch/pkg/platform"
	"github.com/meetwatch/meetwatch/pkg/store"
)

// alertSurface is one visible alert, usually a fullscreen window.
type alertSurface interface {
	Show()
	Close()
}

// AlertPresenter raises one alert surface per display and a looping
// chime. At most one alert is on screen at a time; while it is showing,
// further Show calls are dropped. Dismissing any surface tears down all
// of them.
type AlertPresenter struct {
	app    fyne.App
	config *store.ConfigStore

	mu       sync.Mutex
	showing  bool
	surfaces []alertSurface
	chime    *audio.Player

	// Swapped out by tests.
	newSurfaces func(event models.Event, dismiss func()) []alertSurface
	startChime  func() *audio.Player
}

func NewAlertPresenter(app fyne.App, config *store.ConfigStore) *AlertPresenter {
	p := &AlertPresenter{
		app:        app,
		config:     config,
		startChime: audio.PlayChime,
	}
	p.newSurfaces = p.buildWindows
	return p
}

func (p *AlertPresenter) buildWindows(event models.Event, dismiss func()) []alertSurface {
	holdSeconds := p.config.Load().HoldSeconds()

	count := platform.DisplayCount()
	surfaces := make([]alertSurface, 0, count)
	for i := 0; i < count; i++ {
		surfaces = append(surfaces, NewAlertWindow(p.app, event, holdSeconds, dismiss))
	}
	return surfaces
}

// Show raises the alert for the given event. A no-op while a previous
// alert is still on screen.
func (p *AlertPresenter) Show(event models.Event) {
	p.mu.Lock()
	if p.showing {
		p.mu.Unlock()
		log.WithField("title", event.Title).Debug("Alert already showing, ignoring")
		return
	}
	p.showing = true
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"title": event.Title,
		"start": event.StartTime,
	}).Info("Showing alert")

	surfaces := p.newSurfaces(event, p.Dismiss)
	chime := p.startChime()

	p.mu.Lock()
	p.surfaces = surfaces
	p.chime = chime
	p.mu.Unlock()

	for _, s := range surfaces {
		s.Show()
	}
}

// Dismiss closes every surface and stops the chime. Safe to call more
// than once.
func (p *AlertPresenter) Dismiss() {
	p.mu.Lock()
	if !p.showing {
		p.mu.Unlock()
		return
	}
	surfaces := p.surfaces
	chime := p.chime
	p.surfaces = nil
	p.chime = nil
	p.showing = false
	p.mu.Unlock()

	chime.Stop()
	for _, s := range surfaces {
		s.Close()
	}

	log.Info("Alert dismissed")
}

// Showing reports whether an alert is currently on screen.
func (p *AlertPresenter) Showing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showing
}
