package main

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/calendar"
)

func (cw *ConfigWindow) buildCalendarsTab() fyne.CanvasObject {
	cw.icalSourcesData = append(cw.icalSourcesData, cw.config.ICalSources...)

	cw.enabledIDs = make(map[string]bool)
	for _, id := range cw.config.EnabledCalendarIDs {
		cw.enabledIDs[id] = true
	}

	var selectedIndex int = -1

	cw.icalSourcesList = widget.NewList(
		func() int {
			return len(cw.icalSourcesData)
		},
		func() fyne.CanvasObject {
			nameLabel := widget.NewLabel("Name")
			nameLabel.TextStyle.Bold = true
			urlLabel := widget.NewLabel("URL")
			urlLabel.Importance = widget.MediumImportance
			return container.NewVBox(nameLabel, urlLabel)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			vbox := o.(*fyne.Container)
			nameLabel := vbox.Objects[0].(*widget.Label)
			urlLabel := vbox.Objects[1].(*widget.Label)

			source := cw.icalSourcesData[i]
			nameLabel.SetText(source.Name)

			// Truncate long URLs for display
			displayURL := source.URL
			if len(displayURL) > 60 {
				displayURL = displayURL[:57] + "..."
			}
			urlLabel.SetText(displayURL)
		})

	cw.icalSourcesList.OnSelected = func(id widget.ListItemID) {
		selectedIndex = id
	}

	plusButton := widget.NewButton("", func() {
		cw.showAddSourceDialog()
	})
	plusButton.Icon = theme.ContentAddIcon()

	minusButton := widget.NewButton("", func() {
		if selectedIndex >= 0 && selectedIndex < len(cw.icalSourcesData) {
			sourceName := cw.icalSourcesData[selectedIndex].Name
			dialog.ShowConfirm("Remove Calendar",
				fmt.Sprintf("Are you sure you want to remove '%s'?", sourceName),
				func(confirmed bool) {
					if confirmed {
						cw.icalSourcesData = append(cw.icalSourcesData[:selectedIndex], cw.icalSourcesData[selectedIndex+1:]...)
						cw.icalSourcesList.UnselectAll()
						selectedIndex = -1
						cw.icalSourcesList.Refresh()
						cw.markChanged()
					}
				}, cw.window)
		}
	})
	minusButton.Icon = theme.ContentRemoveIcon()

	addControls := container.NewHBox(plusButton, minusButton)

	listScroll := container.NewScroll(cw.icalSourcesList)
	listScroll.SetMinSize(fyne.NewSize(0, 160))

	listWithBorder := container.NewBorder(
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		listScroll,
	)

	icalSourcesContainer := container.NewVBox(listWithBorder, addControls)

	// CalDAV account
	cw.caldavEndpointEntry = widget.NewEntry()
	cw.caldavEndpointEntry.SetPlaceHolder("https://caldav.example.com")
	cw.caldavEndpointEntry.SetText(cw.config.CalDAV.Endpoint)
	cw.caldavEndpointEntry.OnChanged = func(string) { cw.markChanged() }

	cw.caldavUsernameEntry = widget.NewEntry()
	cw.caldavUsernameEntry.SetText(cw.config.CalDAV.Username)
	cw.caldavUsernameEntry.OnChanged = func(string) { cw.markChanged() }

	cw.caldavPasswordEntry = widget.NewPasswordEntry()
	cw.caldavPasswordEntry.SetText(cw.config.CalDAV.Password)
	cw.caldavPasswordEntry.OnChanged = func(string) { cw.markChanged() }

	caldavForm := container.New(layout.NewFormLayout(),
		widget.NewLabel("Server URL:"), cw.caldavEndpointEntry,
		widget.NewLabel("Username:"), cw.caldavUsernameEntry,
		widget.NewLabel("Password:"), cw.caldavPasswordEntry,
	)

	// Enabled calendars checklist, populated from the provider
	cw.calendarChecks = container.NewVBox()
	refreshButton := widget.NewButton("Refresh List", func() {
		cw.refreshCalendarList()
	})
	refreshButton.Icon = theme.ViewRefreshIcon()
	cw.refreshCalendarList()

	icalSourcesLabel := widget.NewLabel("iCal Sources:")
	icalSourcesHelp := widget.NewLabel("Add one or more named calendar feed URLs")
	icalSourcesHelp.Wrapping = fyne.TextWrapWord
	icalSourcesHelp.Importance = widget.MediumImportance

	caldavLabel := widget.NewLabel("CalDAV Account:")
	caldavHelp := widget.NewLabel("Optional. Calendars are discovered from the server after saving.")
	caldavHelp.Wrapping = fyne.TextWrapWord
	caldavHelp.Importance = widget.MediumImportance

	enabledLabel := widget.NewLabel("Watched Calendars:")
	enabledHelp := widget.NewLabel("Only events from checked calendars are considered for alerts. Nothing checked means no alerts.")
	enabledHelp.Wrapping = fyne.TextWrapWord
	enabledHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(icalSourcesLabel, icalSourcesHelp),
		icalSourcesContainer,

		container.NewVBox(caldavLabel, caldavHelp),
		caldavForm,

		container.NewVBox(enabledLabel, enabledHelp),
		container.NewVBox(cw.calendarChecks, container.NewHBox(refreshButton)),
	)

	content := container.NewVBox(
		widget.NewLabel("Calendar Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

// refreshCalendarList rebuilds the watched-calendars checklist from the
// provider's current calendar set.
func (cw *ConfigWindow) refreshCalendarList() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		infos, err := cw.provider.Calendars(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to list calendars")
		}

		fyne.Do(func() {
			cw.calendarChecks.RemoveAll()

			if len(infos) == 0 {
				placeholder := widget.NewLabel("No calendars found. Add a source and save first.")
				placeholder.Importance = widget.MediumImportance
				cw.calendarChecks.Add(placeholder)
			}

			for _, info := range infos {
				cw.addCalendarCheck(info)
			}
			cw.calendarChecks.Refresh()
		})
	}()
}

func (cw *ConfigWindow) addCalendarCheck(info calendar.Info) {
	id := info.ID
	check := widget.NewCheck(info.Name, nil)
	check.SetChecked(cw.enabledIDs[id])
	// Set after SetChecked so restoring saved state doesn't count as an edit.
	check.OnChanged = func(checked bool) {
		cw.enabledIDs[id] = checked
		cw.markChanged()
	}
	cw.calendarChecks.Add(check)
}
