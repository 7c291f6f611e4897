// Package timerwin is the main timer window: clock face, session form,
// and the threshold decision dialog.
package timerwin

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"timeclock/internal/core/model"
	"timeclock/internal/core/tracker"
)

// Callbacks defines timer window action handlers.
type Callbacks struct {
	OnStart           func(model.SessionDescriptor)
	OnPause           func()
	OnResume          func()
	OnStop            func()
	OnContinueLast    func()
	OnContinueSegment func()
	OnResolve         func(tracker.Resolution)
}

// Window is the main timer window.
type Window struct {
	window    fyne.Window
	callbacks Callbacks

	clock     *widget.Label
	modeLabel *widget.Label
	progress  *widget.ProgressBar
	badge     *widget.Label

	titleEntry *widget.Entry
	descEntry  *widget.Entry

	startButton    *widget.Button
	pauseButton    *widget.Button
	resumeButton   *widget.Button
	stopButton     *widget.Button
	continueButton *widget.Button
	segmentButton  *widget.Button

	guardOpen bool
}

// New creates the timer window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("Timeclock")

	win := &Window{
		window:    window,
		callbacks: callbacks,
	}

	win.clock = widget.NewLabelWithStyle("00:00:00", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	win.modeLabel = widget.NewLabelWithStyle("stopwatch", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	win.progress = widget.NewProgressBar()
	win.progress.Hide()
	win.badge = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	win.badge.Hide()

	win.titleEntry = widget.NewEntry()
	win.titleEntry.SetPlaceHolder("What are you working on?")
	win.descEntry = widget.NewEntry()
	win.descEntry.SetPlaceHolder("Description (optional)")

	win.startButton = widget.NewButton("Start", func() {
		if win.callbacks.OnStart != nil {
			win.callbacks.OnStart(model.SessionDescriptor{
				Title:       win.titleEntry.Text,
				Description: win.descEntry.Text,
			})
		}
	})
	win.pauseButton = widget.NewButton("Pause", func() {
		if win.callbacks.OnPause != nil {
			win.callbacks.OnPause()
		}
	})
	win.resumeButton = widget.NewButton("Resume", func() {
		if win.callbacks.OnResume != nil {
			win.callbacks.OnResume()
		}
	})
	win.stopButton = widget.NewButton("Stop", func() {
		if win.callbacks.OnStop != nil {
			win.callbacks.OnStop()
		}
	})
	win.continueButton = widget.NewButton("Continue last", func() {
		if win.callbacks.OnContinueLast != nil {
			win.callbacks.OnContinueLast()
		}
	})
	win.segmentButton = widget.NewButton("Continue", func() {
		if win.callbacks.OnContinueSegment != nil {
			win.callbacks.OnContinueSegment()
		}
	})
	win.segmentButton.Hide()

	buttons := container.NewHBox(
		win.startButton, win.pauseButton, win.resumeButton, win.stopButton, win.continueButton,
	)

	content := container.NewVBox(
		win.modeLabel,
		win.clock,
		win.progress,
		win.badge,
		win.segmentButton,
		win.titleEntry,
		win.descEntry,
		container.NewCenter(buttons),
	)
	window.SetContent(content)
	window.Resize(fyne.NewSize(380, 320))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	win.applyIdle(false)
	return win
}

// Show displays the timer window.
func (win *Window) Show() {
	win.window.Show()
	win.window.RequestFocus()
}

// ApplyEvent refreshes the window from a tracker event. Callers must
// invoke it on the fyne main thread.
func (win *Window) ApplyEvent(event tracker.Event, hasLast bool) {
	win.modeLabel.SetText(modeCaption(event))
	win.clock.SetText(formatClock(event.Display.Value))

	if event.Display.CountsDown || event.Display.Progress > 0 {
		win.progress.SetValue(clamp(event.Display.Progress))
		win.progress.Show()
	} else {
		win.progress.Hide()
	}

	switch event.Status {
	case tracker.StatusRunning:
		win.startButton.Disable()
		win.pauseButton.Enable()
		win.resumeButton.Disable()
		win.stopButton.Enable()
		win.continueButton.Disable()
		win.titleEntry.Disable()
		win.descEntry.Disable()
		win.badge.Hide()
	case tracker.StatusPaused:
		win.startButton.Disable()
		win.pauseButton.Disable()
		win.resumeButton.Enable()
		win.stopButton.Enable()
		win.continueButton.Disable()
		win.badge.SetText("On break")
		win.badge.Show()
	default:
		win.applyIdle(hasLast)
	}

	if event.Type == tracker.EventAwaitingAction {
		win.segmentButton.Show()
	}
	if event.Type == tracker.EventSegmentChange {
		win.segmentButton.Hide()
	}
}

// ShowBreak updates the break badge with the live break duration.
func (win *Window) ShowBreak(breakType string, since time.Time) {
	if since.IsZero() {
		return
	}
	label := "On break"
	if breakType != "" {
		label = fmt.Sprintf("On break (%s)", breakType)
	}
	win.badge.SetText(fmt.Sprintf("%s for %s", label, formatClock(time.Since(since))))
	win.badge.Show()
}

// FlashCompleted briefly shows the finished session's total.
func (win *Window) FlashCompleted(session *model.Session) {
	if session == nil {
		return
	}
	win.badge.SetText(fmt.Sprintf("Saved: %s (%s)", session.Title, formatClock(session.Duration)))
	win.badge.Show()
}

// ShowGuard opens the threshold decision dialog for a pending guard.
func (win *Window) ShowGuard(guard *tracker.GuardRequest) {
	if guard == nil || win.guardOpen {
		return
	}
	win.guardOpen = true

	summary := "This session has exceeded the workspace time threshold."
	if guard.Chain != nil {
		summary = fmt.Sprintf(
			"This session chain (%d sessions, %s total since %s) exceeds the workspace time threshold.",
			guard.Chain.Sessions,
			formatClock(guard.Chain.TotalDuration),
			guard.Chain.ChainStart.Local().Format("Jan 2 15:04"),
		)
	}

	workedEntry := widget.NewEntry()
	workedEntry.SetPlaceHolder("actual minutes worked")

	form := container.NewVBox(
		widget.NewLabel(summary),
		widget.NewLabel("Keep it as-is, discard it, or enter the time actually worked."),
		workedEntry,
	)

	var decision *dialog.CustomDialog
	resolve := func(resolution tracker.Resolution) {
		decision.Hide()
		win.guardOpen = false
		if win.callbacks.OnResolve != nil {
			win.callbacks.OnResolve(resolution)
		}
	}

	approveButton := widget.NewButton("Keep and request approval", func() {
		resolve(tracker.Resolution{Action: tracker.ResolutionApprove})
	})
	discardButton := widget.NewButton("Discard session", func() {
		resolve(tracker.Resolution{Action: tracker.ResolutionDiscard})
	})
	backfillButton := widget.NewButton("Correct the time", func() {
		minutes, err := strconv.Atoi(workedEntry.Text)
		if err != nil || minutes <= 0 {
			return
		}
		start := guard.RaisedAt
		if guard.Chain != nil {
			start = guard.Chain.ChainStart
		}
		resolve(tracker.Resolution{
			Action:    tracker.ResolutionBackfill,
			Title:     win.titleEntry.Text,
			StartTime: start,
			EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		})
	})

	content := container.NewVBox(form, approveButton, backfillButton, discardButton)
	decision = dialog.NewCustomWithoutButtons("Session too long", content, win.window)
	decision.SetOnClosed(func() {
		win.guardOpen = false
	})
	decision.Show()
}

func (win *Window) applyIdle(hasLast bool) {
	win.startButton.Enable()
	win.pauseButton.Disable()
	win.resumeButton.Disable()
	win.stopButton.Disable()
	if hasLast {
		win.continueButton.Enable()
	} else {
		win.continueButton.Disable()
	}
	win.titleEntry.Enable()
	win.descEntry.Enable()
	win.segmentButton.Hide()
}

func modeCaption(event tracker.Event) string {
	if event.Mode == model.ModePomodoro && event.Segment != "" {
		switch event.Segment {
		case model.SegmentShortBreak:
			return "pomodoro: short break"
		case model.SegmentLongBreak:
			return "pomodoro: long break"
		default:
			return "pomodoro: focus"
		}
	}
	return string(event.Mode)
}

func formatClock(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	totalSeconds := int(value.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
