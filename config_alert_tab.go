package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/meetwatch/meetwatch/pkg/models"
)

func (cw *ConfigWindow) buildAlertTab() fyne.CanvasObject {
	// Lead time select, 1-30 minutes
	leadOptions := make([]string, 0, models.MaxLeadMinutes)
	for i := models.MinLeadMinutes; i <= models.MaxLeadMinutes; i++ {
		leadOptions = append(leadOptions, fmt.Sprintf("%d min", i))
	}
	cw.leadMinutesSelect = widget.NewSelect(leadOptions, func(value string) {
		cw.markChanged()
	})
	cw.leadMinutesSelect.SetSelected(strconv.Itoa(cw.config.LeadMinutes()) + " min")

	// Hold time select (1-10 seconds)
	holdOptions := []string{"1 sec", "2 sec", "3 sec", "4 sec", "5 sec", "6 sec", "7 sec", "8 sec", "9 sec", "10 sec"}
	cw.holdSecondsSelect = widget.NewSelect(holdOptions, func(value string) {
		cw.markChanged()
	})
	currentHold := cw.config.HoldSeconds()
	if currentHold > 10 {
		currentHold = 10
	}
	cw.holdSecondsSelect.SetSelected(strconv.Itoa(currentHold) + " sec")

	leadLabel := widget.NewLabel("Alert Lead Time:")
	leadHelp := widget.NewLabel("How many minutes before the meeting starts the alert fires")
	leadHelp.Wrapping = fyne.TextWrapWord
	leadHelp.Importance = widget.MediumImportance

	holdLabel := widget.NewLabel("Button Hold Time:")
	holdHelp := widget.NewLabel("How long to hold the Dismiss button to close an alert")
	holdHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(leadLabel, leadHelp),
		container.NewVBox(cw.leadMinutesSelect),

		container.NewVBox(holdLabel, holdHelp),
		container.NewVBox(cw.holdSecondsSelect),
	)

	content := container.NewVBox(
		widget.NewLabel("Alert Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}
