package main

import (
	"os/exec"
	"runtime"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
)

func (cw *ConfigWindow) buildGeneralTab() fyne.CanvasObject {
	cw.autoStartCheck = widget.NewCheck("Start MeetWatch at Login", func(checked bool) {
		cw.markChanged()
	})
	cw.autoStartCheck.SetChecked(cw.config.AutoStart)

	intervalOptions := []string{"1 min", "2 min", "5 min", "10 min", "15 min", "30 min"}
	cw.syncIntervalSelect = widget.NewSelect(intervalOptions, func(value string) {
		cw.markChanged()
	})
	cw.syncIntervalSelect.SetSelected(strconv.Itoa(cw.config.SyncInterval()) + " min")

	// Storage root URI display (read-only)
	storageURIEntry := widget.NewEntry()
	storageURIEntry.SetText(cw.app.Storage().RootURI().String())
	storageURIEntry.Disable()

	openStorageButton := widget.NewButton("Open in File Manager", func() {
		path := cw.app.Storage().RootURI().Path()
		var cmd *exec.Cmd

		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", path)
		case "windows":
			cmd = exec.Command("explorer", path)
		case "linux":
			cmd = exec.Command("xdg-open", path)
		default:
			log.WithField("os", runtime.GOOS).Warn("Unsupported OS for file manager")
			return
		}

		if err := cmd.Start(); err != nil {
			log.WithError(err).Error("Failed to open file manager")
		}
	})

	autoStartLabel := widget.NewLabel("Auto Start:")
	autoStartHelp := widget.NewLabel("Launch MeetWatch automatically when you log in")
	autoStartHelp.Importance = widget.MediumImportance

	syncIntervalLabel := widget.NewLabel("Sync Interval:")
	syncIntervalHelp := widget.NewLabel("How often to fetch events from calendar sources")
	syncIntervalHelp.Importance = widget.MediumImportance

	storageLabel := widget.NewLabel("Storage Location:")
	storageHelp := widget.NewLabel("Application data and settings are stored here")
	storageHelp.Wrapping = fyne.TextWrapWord
	storageHelp.Importance = widget.MediumImportance

	storageContainer := container.NewBorder(
		nil,
		container.NewPadded(openStorageButton),
		nil,
		nil,
		storageURIEntry,
	)

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(autoStartLabel, autoStartHelp),
		cw.autoStartCheck,

		container.NewVBox(syncIntervalLabel, syncIntervalHelp),
		container.NewVBox(cw.syncIntervalSelect),

		container.NewVBox(storageLabel, storageHelp),
		storageContainer,
	)

	content := container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}
