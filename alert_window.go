package main

import (
	"fmt"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
	"golang.design/x/hotkey"

	"github.com/meetwatch/meetwatch/pkg/calendar"
	"github.com/meetwatch/meetwatch/pkg/models"
	"github.com/meetwatch/meetwatch/pkg/platform"
)

// AlertWindow is one fullscreen alert surface. The presenter opens one
// per display and tears them all down when any of them is dismissed.
type AlertWindow struct {
	window          fyne.Window
	app             fyne.App
	event           models.Event
	holdTimeSeconds int
	onDismiss       func()

	dismissProgress float64
	dismissTicker   *time.Ticker
	dismissHeld     bool
	cmdQHotkey      *hotkey.Hotkey
	stopMonitoring  chan struct{}
}

func NewAlertWindow(app fyne.App, event models.Event, holdTimeSeconds int, onDismiss func()) *AlertWindow {
	aw := &AlertWindow{
		app:             app,
		event:           event,
		holdTimeSeconds: holdTimeSeconds,
		onDismiss:       onDismiss,
		stopMonitoring:  make(chan struct{}),
	}

	// Create window and build UI on the main Fyne thread
	fyne.Do(func() {
		aw.window = app.NewWindow("Meeting Alert")
		aw.window.SetFullScreen(true)
		aw.buildUI()

		// Register Cmd+Q hotkey while the alert is up so a reflexive
		// quit doesn't kill the whole app
		aw.registerCmdQPrevention()

		// Monitor window focus and refocus when needed
		aw.setupFocusMonitoring()

		aw.window.SetOnClosed(func() {
			close(aw.stopMonitoring)
			if aw.cmdQHotkey != nil {
				aw.cmdQHotkey.Unregister()
			}
		})
	})

	return aw
}

func (aw *AlertWindow) buildUI() {
	title := canvas.NewText(aw.event.Title, nil)
	title.TextSize = 32
	title.Alignment = fyne.TextAlignCenter

	minutes := aw.event.MinutesUntilStart(time.Now())
	var countdown string
	switch {
	case minutes == 0:
		countdown = "Starting now"
	case minutes == 1:
		countdown = "Starts in 1 minute"
	default:
		countdown = fmt.Sprintf("Starts in %d minutes", minutes)
	}
	countdownLabel := widget.NewLabel(countdown)
	countdownLabel.Alignment = fyne.TextAlignCenter
	countdownLabel.TextStyle = fyne.TextStyle{Bold: true}

	timeInfo := fmt.Sprintf("Start: %s\nEnd: %s",
		aw.event.StartTime.Format("3:04 PM"),
		aw.event.EndTime.Format("3:04 PM"))
	timeLabel := widget.NewLabel(timeInfo)
	timeLabel.Alignment = fyne.TextAlignCenter

	notes := widget.NewLabel(aw.event.Notes)
	notes.Wrapping = fyne.TextWrapWord
	notes.Alignment = fyne.TextAlignCenter

	var linkButton *widget.Button
	if link := calendar.MeetingLink(aw.event); link != "" {
		linkButton = widget.NewButton("Join Meeting", func() {
			if u, err := url.Parse(link); err == nil {
				fyne.CurrentApp().OpenURL(u)
			}
		})
		linkButton.Importance = widget.HighImportance
	}

	var dismissButton *HoldButton
	dismissButton = NewHoldButton(fmt.Sprintf("Dismiss (Hold %ds)", aw.holdTimeSeconds), func() {
		aw.startDismissProgress(dismissButton)
	}, func() {
		aw.stopDismissProgress(dismissButton)
	})

	content := container.NewVBox(
		container.NewPadded(title),
		countdownLabel,
		timeLabel,
		widget.NewSeparator(),
		container.NewPadded(notes),
	)

	if linkButton != nil {
		content.Add(container.NewCenter(linkButton))
	}

	content.Add(widget.NewSeparator())
	content.Add(container.NewCenter(dismissButton))

	centered := container.NewCenter(
		container.NewVBox(
			content,
		),
	)

	aw.window.SetContent(container.NewPadded(centered))
}

func (aw *AlertWindow) startDismissProgress(button *HoldButton) {
	if aw.dismissHeld {
		return
	}

	aw.dismissHeld = true
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})

	tickInterval := 50 * time.Millisecond
	totalTicks := float64(aw.holdTimeSeconds*1000) / float64(tickInterval.Milliseconds())
	progressIncrement := 1.0 / totalTicks

	aw.dismissTicker = time.NewTicker(tickInterval)

	go func() {
		for range aw.dismissTicker.C {
			if !aw.dismissHeld {
				return
			}

			aw.dismissProgress += progressIncrement
			currentProgress := aw.dismissProgress

			fyne.Do(func() {
				button.SetProgress(currentProgress)
			})

			if currentProgress >= 1.0 {
				aw.dismissTicker.Stop()
				if aw.onDismiss != nil {
					aw.onDismiss()
				}
				return
			}
		}
	}()
}

func (aw *AlertWindow) stopDismissProgress(button *HoldButton) {
	aw.dismissHeld = false
	if aw.dismissTicker != nil {
		aw.dismissTicker.Stop()
	}
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})
}

func (aw *AlertWindow) Show() {
	fyne.Do(func() {
		if aw.window != nil {
			aw.window.Show()
		}
	})
}

func (aw *AlertWindow) Close() {
	fyne.Do(func() {
		if aw.window != nil {
			aw.window.Close()
		}
	})
}

func (aw *AlertWindow) registerCmdQPrevention() {
	go func() {
		hk := hotkey.New([]hotkey.Modifier{hotkey.ModCmd}, hotkey.KeyQ)
		if err := hk.Register(); err != nil {
			log.WithError(err).Warn("Failed to register Cmd+Q hotkey prevention")
			return
		}
		aw.cmdQHotkey = hk

		// Consume Cmd+Q events so the default quit behavior never runs
		for range hk.Keydown() {
			log.Info("Cmd+Q blocked - hold the Dismiss button to close the alert")
		}
	}()
}

func (aw *AlertWindow) setupFocusMonitoring() {
	// The hotkey grabs Cmd+Q globally, so release it the moment the
	// alert loses focus and take it back when focus returns.
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		wasFocused := true
		for {
			select {
			case <-aw.stopMonitoring:
				return
			case <-ticker.C:
				if aw.window == nil {
					return
				}

				isFocused := platform.IsAppActive()

				if wasFocused && !isFocused {
					if aw.cmdQHotkey != nil {
						aw.cmdQHotkey.Unregister()
						aw.cmdQHotkey = nil
					}
				} else if !wasFocused && isFocused {
					if aw.cmdQHotkey == nil {
						aw.registerCmdQPrevention()
					}
				}

				// If another app stole focus, bring the alert back.
				if !isFocused {
					log.Debug("Alert window not active - bringing to front")
					platform.ActivateApp()
					fyne.Do(func() {
						if aw.window != nil {
							aw.window.Show()
						}
					})
				}

				wasFocused = isFocused
			}
		}
	}()
}
