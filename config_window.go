package main

import (
	"fmt"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
	"github.com/meetwatch/meetwatch/pkg/store"
)

type ConfigWindow struct {
	window    fyne.Window
	app       fyne.App
	store     *store.ConfigStore
	config    *models.Config
	provider  calendar.Provider
	presenter *AlertPresenter
	onSave    func(*models.Config)

	// General tab
	autoStartCheck     *widget.Check
	syncIntervalSelect *widget.Select

	// Calendars tab
	icalSourcesList     *widget.List
	icalSourcesData     []models.ICalSource
	caldavEndpointEntry *widget.Entry
	caldavUsernameEntry *widget.Entry
	caldavPasswordEntry *widget.Entry
	calendarChecks      *fyne.Container
	enabledIDs          map[string]bool

	// Alert tab
	leadMinutesSelect *widget.Select
	holdSecondsSelect *widget.Select

	// UI state
	hasUnsavedChanges bool
	saveStatusLabel   *widget.Label
	saveButton        *widget.Button
}

func NewConfigWindow(app fyne.App, configStore *store.ConfigStore, provider calendar.Provider, presenter *AlertPresenter, onSave func(*models.Config)) *ConfigWindow {
	cw := &ConfigWindow{
		app:       app,
		store:     configStore,
		config:    configStore.Load(),
		provider:  provider,
		presenter: presenter,
		onSave:    onSave,
	}

	cw.window = app.NewWindow("MeetWatch - Settings")
	cw.buildUI()

	return cw
}

func (cw *ConfigWindow) buildUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("General", cw.buildGeneralTab()),
		container.NewTabItem("Calendars", cw.buildCalendarsTab()),
		container.NewTabItem("Alert", cw.buildAlertTab()),
	)

	cw.saveStatusLabel = widget.NewLabel("")
	cw.saveStatusLabel.Importance = widget.SuccessImportance

	cw.saveButton = widget.NewButton("Save", func() {
		cw.saveButton.Disable()
		cw.saveStatusLabel.SetText("Saving...")
		cw.saveStatusLabel.Importance = widget.MediumImportance
		cw.saveStatusLabel.Refresh()

		newConfig := cw.getConfigFromUI()
		go func() {
			if cw.onSave != nil {
				cw.onSave(newConfig)
			}

			fyne.Do(func() {
				cw.config = newConfig
				cw.hasUnsavedChanges = false
				cw.saveStatusLabel.SetText("Settings saved successfully")
				cw.saveStatusLabel.Importance = widget.SuccessImportance
				cw.saveStatusLabel.Refresh()
				cw.updateSaveButtonState()

				// Clear success message after 3 seconds
				go func() {
					time.Sleep(3 * time.Second)
					fyne.Do(func() {
						if cw.saveStatusLabel.Text == "Settings saved successfully" {
							cw.saveStatusLabel.SetText("")
							cw.saveStatusLabel.Refresh()
						}
					})
				}()
			})
		}()
	})
	cw.saveButton.Importance = widget.HighImportance
	cw.saveButton.Disable() // Initially disabled until changes are made

	previewButton := widget.NewButton("Preview Alert", func() {
		now := time.Now()
		cw.presenter.Show(models.Event{
			ID:        "preview-alert",
			Title:     "Sample Meeting",
			Notes:     "This is a preview of how meeting alerts will appear. Lead time and hold-to-dismiss are set in the Alert tab.",
			StartTime: now.Add(5 * time.Minute),
			EndTime:   now.Add(35 * time.Minute),
			URL:       "https://meet.example.com/sample",
			Status:    "CONFIRMED",
		})
	})

	closeButton := widget.NewButton("Close", func() {
		cw.handleClose()
	})

	leftButtons := container.NewHBox(
		cw.saveButton,
		cw.saveStatusLabel,
	)
	rightButtons := container.NewHBox(
		previewButton,
		closeButton,
	)

	buttonRow := container.NewBorder(
		nil,
		nil,
		leftButtons,
		rightButtons,
		container.NewHBox(),
	)

	content := container.NewBorder(
		nil,
		container.NewPadded(buttonRow),
		nil,
		nil,
		tabs,
	)

	cw.window.SetContent(content)
	cw.window.Resize(fyne.NewSize(900, 700))
	cw.window.CenterOnScreen()

	cw.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			cw.handleClose()
		}
	})

	cw.window.SetCloseIntercept(func() {
		cw.handleClose()
	})
}

func (cw *ConfigWindow) getConfigFromUI() *models.Config {
	syncInterval := models.DefaultSyncInterval
	if cw.syncIntervalSelect.Selected != "" {
		var val int
		if _, err := fmt.Sscanf(cw.syncIntervalSelect.Selected, "%d min", &val); err == nil {
			syncInterval = val
		}
	}

	leadMinutes := models.DefaultLeadMinutes
	if cw.leadMinutesSelect.Selected != "" {
		var val int
		if _, err := fmt.Sscanf(cw.leadMinutesSelect.Selected, "%d min", &val); err == nil {
			leadMinutes = val
		}
	}

	holdSeconds := models.DefaultHoldSeconds
	if cw.holdSecondsSelect.Selected != "" {
		var val int
		if _, err := fmt.Sscanf(cw.holdSecondsSelect.Selected, "%d sec", &val); err == nil {
			holdSeconds = val
		}
	}

	enabled := make([]string, 0, len(cw.enabledIDs))
	for id, on := range cw.enabledIDs {
		if on {
			enabled = append(enabled, id)
		}
	}
	sort.Strings(enabled)

	return &models.Config{
		AlertLeadMinutes:    leadMinutes,
		EnabledCalendarIDs:  enabled,
		AutoStart:           cw.autoStartCheck.Checked,
		ICalSources:         cw.icalSourcesData,
		SyncIntervalMinutes: syncInterval,
		HoldTimeSeconds:     holdSeconds,
		CalDAV: models.CalDAVAccount{
			Endpoint: cw.caldavEndpointEntry.Text,
			Username: cw.caldavUsernameEntry.Text,
			Password: cw.caldavPasswordEntry.Text,
		},
	}
}

func (cw *ConfigWindow) Show() {
	cw.window.Show()
}

// markChanged marks the config as having unsaved changes
func (cw *ConfigWindow) markChanged() {
	cw.hasUnsavedChanges = true
	cw.updateSaveButtonState()
}

func (cw *ConfigWindow) updateSaveButtonState() {
	if cw.saveButton != nil {
		if cw.hasUnsavedChanges {
			cw.saveButton.Enable()
		} else {
			cw.saveButton.Disable()
		}
	}
}

// handleClose handles window close with unsaved changes check
func (cw *ConfigWindow) handleClose() {
	if cw.hasActualChanges() {
		dialog.ShowConfirm("Unsaved Changes",
			"You have unsaved changes. Are you sure you want to close?",
			func(confirmed bool) {
				if confirmed {
					cw.window.Close()
				}
			}, cw.window)
	} else {
		cw.window.Close()
	}
}

// hasActualChanges checks if the current UI state differs from the saved config
func (cw *ConfigWindow) hasActualChanges() bool {
	current := cw.getConfigFromUI()

	if current.AutoStart != cw.config.AutoStart {
		return true
	}
	if current.SyncIntervalMinutes != cw.config.SyncIntervalMinutes {
		return true
	}
	if current.AlertLeadMinutes != cw.config.AlertLeadMinutes {
		return true
	}
	if current.HoldTimeSeconds != cw.config.HoldTimeSeconds {
		return true
	}
	if current.CalDAV != cw.config.CalDAV {
		return true
	}

	if len(current.EnabledCalendarIDs) != len(cw.config.EnabledCalendarIDs) {
		return true
	}
	saved := append([]string(nil), cw.config.EnabledCalendarIDs...)
	sort.Strings(saved)
	for i := range current.EnabledCalendarIDs {
		if current.EnabledCalendarIDs[i] != saved[i] {
			return true
		}
	}

	if len(current.ICalSources) != len(cw.config.ICalSources) {
		return true
	}
	for i := range current.ICalSources {
		if current.ICalSources[i] != cw.config.ICalSources[i] {
			return true
		}
	}

	return false
}
