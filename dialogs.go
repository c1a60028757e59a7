package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"github.com/meetwatch/meetwatch/pkg/models"
)

func (cw *ConfigWindow) showAddSourceDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("e.g., Work Calendar")
	nameEntry.Validator = func(s string) error {
		if s == "" {
			return fmt.Errorf("name is required")
		}
		return nil
	}

	urlEntry := widget.NewMultiLineEntry()
	urlEntry.SetPlaceHolder("https://calendar.example.com/ical/...")
	urlEntry.Wrapping = fyne.TextWrapBreak
	urlEntry.SetMinRowsVisible(5)
	urlEntry.Validator = func(s string) error {
		if s == "" {
			return fmt.Errorf("URL is required")
		}
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return fmt.Errorf("URL must start with http:// or https://")
		}
		for _, existing := range cw.icalSourcesData {
			if existing.URL == s {
				return fmt.Errorf("this calendar URL has already been added")
			}
		}
		return nil
	}

	formItems := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("URL", urlEntry),
	}

	addDialog := dialog.NewForm("Add iCal Source", "Add", "Cancel", formItems, func(confirmed bool) {
		if !confirmed {
			return
		}

		cw.icalSourcesData = append(cw.icalSourcesData, models.ICalSource{
			ID:   uuid.New().String(),
			Name: nameEntry.Text,
			URL:  urlEntry.Text,
		})

		cw.icalSourcesList.Refresh()
		cw.markChanged()
	}, cw.window)

	addDialog.Resize(fyne.NewSize(600, 300))
	addDialog.Show()
}
