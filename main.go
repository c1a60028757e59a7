package main

import (
	"context"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
	"github.com/meetwatch/meetwatch/pkg/monitor"
	"github.com/meetwatch/meetwatch/pkg/platform"
	"github.com/meetwatch/meetwatch/pkg/store"
)

type MeetWatch struct {
	app          fyne.App
	store        *store.ConfigStore
	provider     *calendar.Multi
	monitor      *monitor.Monitor
	presenter    *AlertPresenter
	loginItem    *platform.LoginItem
	configWindow *ConfigWindow

	ctx    context.Context
	cancel context.CancelFunc

	// Event ID the tray menu was last built for, to skip rebuilds.
	trayEventID string
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(os.Getenv("MEETWATCH_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	mw := &MeetWatch{
		app: app.NewWithID("io.meetwatch.app"),
	}

	if err := mw.initialize(); err != nil {
		log.Fatal(err)
	}

	mw.run()
}

func (mw *MeetWatch) initialize() error {
	mw.ctx, mw.cancel = context.WithCancel(context.Background())
	mw.store = store.NewConfigStore(mw.app)

	// Reconcile the login item with the stored setting on startup.
	loginItem, err := platform.NewLoginItem("io.meetwatch.app", "MeetWatch")
	if err != nil {
		log.WithError(err).Warn("Login item unavailable")
	} else {
		mw.loginItem = loginItem
		if err := mw.loginItem.Apply(mw.store.Load().AutoStart); err != nil {
			log.WithError(err).Warn("Failed to apply autostart setting")
		}
	}

	// Backends read their settings through the store on every sync, so
	// edits in the settings window take effect without a rebuild.
	ics := calendar.NewICSBackend(
		func() []models.ICalSource { return mw.store.Load().ICalSources },
		mw.syncInterval,
	)
	dav := calendar.NewCalDAVBackend(
		func() models.CalDAVAccount { return mw.store.Load().CalDAV },
		mw.syncInterval,
	)
	mw.provider = calendar.NewMulti(ics, dav)

	mw.presenter = NewAlertPresenter(mw.app, mw.store)
	mw.monitor = monitor.New(mw.provider, mw.store, mw.presenter,
		monitor.WithOnUpdate(mw.handleNextEventUpdate))

	go mw.provider.Run(mw.ctx)
	go mw.monitor.Run(mw.ctx)

	go func() {
		granted, err := mw.provider.RequestAccess(mw.ctx)
		if err != nil {
			log.WithError(err).Warn("Calendar access check failed")
		} else if !granted {
			log.Warn("Calendar access not granted; alerts disabled until access is restored")
		}
	}()

	mw.setupSystemTray()

	if mw.store.Load().NeedsConfiguration() {
		mw.showConfigWindow()
	}

	return nil
}

func (mw *MeetWatch) run() {
	mw.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	mw.app.Run()
}

func (mw *MeetWatch) syncInterval() time.Duration {
	return time.Duration(mw.store.Load().SyncInterval()) * time.Minute
}

// handleNextEventUpdate runs on the monitor goroutine after every
// evaluation; it keeps the tray menu in sync with the next event.
func (mw *MeetWatch) handleNextEventUpdate(next *models.Event) {
	id := ""
	if next != nil {
		id = next.ID
	}
	if id == mw.trayEventID {
		return
	}
	mw.trayEventID = id

	fyne.Do(func() {
		mw.updateSystemTrayMenu(next)
	})
}

// refresh forces a provider sync followed by a monitor evaluation.
func (mw *MeetWatch) refresh() {
	mw.provider.Sync(mw.ctx)
	mw.monitor.Refresh()
}

func (mw *MeetWatch) showTestAlert() {
	now := time.Now()
	mw.monitor.ShowTestAlert(models.Event{
		ID:        "test-alert",
		Title:     "Test Alert",
		StartTime: now.Add(time.Duration(mw.store.Load().LeadMinutes()) * time.Minute),
		EndTime:   now.Add(time.Duration(mw.store.Load().LeadMinutes()+30) * time.Minute),
		Notes:     "This is what a meeting alert looks like.",
		URL:       "https://meetwatch.example.com/test",
	})
}

func (mw *MeetWatch) showConfigWindow() {
	if mw.configWindow != nil && mw.configWindow.window != nil {
		mw.configWindow.window.RequestFocus()
		mw.configWindow.window.Show()
		return
	}

	mw.configWindow = NewConfigWindow(mw.app, mw.store, mw.provider, mw.presenter, func(newConfig *models.Config) {
		mw.store.Save(newConfig)

		if mw.loginItem != nil {
			if err := mw.loginItem.Apply(newConfig.AutoStart); err != nil {
				log.WithError(err).Warn("Failed to apply autostart setting")
			}
		}

		if !newConfig.NeedsConfiguration() {
			go mw.refresh()
		}
	})

	mw.configWindow.window.SetOnClosed(func() {
		mw.configWindow = nil
	})

	mw.configWindow.Show()
}

func (mw *MeetWatch) quit() {
	mw.cancel()
	mw.app.Quit()
}
