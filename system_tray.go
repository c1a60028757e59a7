package main

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
)

func (mw *MeetWatch) setupSystemTray() {
	mw.updateSystemTrayMenu(nil)
}

// updateSystemTrayMenu rebuilds the tray menu around the current next
// event. Must run on the Fyne main thread.
func (mw *MeetWatch) updateSystemTrayMenu(next *models.Event) {
	desk, ok := mw.app.(desktop.App)
	if !ok {
		return
	}

	menuItems := []*fyne.MenuItem{}

	if next != nil {
		headerItem := fyne.NewMenuItem("Next meeting:", nil)
		headerItem.Disabled = true
		menuItems = append(menuItems, headerItem)

		eventText := fmt.Sprintf("  %s - %s",
			next.StartTime.Format("3:04 PM"),
			truncateString(next.Title, 35))
		eventItem := fyne.NewMenuItem(eventText, nil)
		eventItem.Disabled = true
		menuItems = append(menuItems, eventItem)

		if link := calendar.MeetingLink(*next); link != "" {
			menuItems = append(menuItems, fyne.NewMenuItem("Join Meeting", func() {
				if u, err := url.Parse(link); err == nil {
					mw.app.OpenURL(u)
				}
			}))
		}
	} else {
		noneItem := fyne.NewMenuItem("No upcoming meetings", nil)
		noneItem.Disabled = true
		menuItems = append(menuItems, noneItem)
	}

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())

	menuItems = append(menuItems,
		fyne.NewMenuItem("Refresh Now", func() {
			go mw.refresh()
		}),
		fyne.NewMenuItem("Test Alert", func() {
			mw.showTestAlert()
		}),
		fyne.NewMenuItem("Settings", func() {
			mw.showConfigWindow()
		}),
	)

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	menuItems = append(menuItems, fyne.NewMenuItem("Quit", func() {
		mw.quit()
	}))

	desk.SetSystemTrayMenu(fyne.NewMenu("MeetWatch", menuItems...))
}

// truncateString truncates a string to maxLen characters, adding "..." if needed
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
