package preferences

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"timeclock/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()

	modeSelect *widget.Select

	eyeRestCheck  *widget.Check
	eyeRestInt    *widget.Entry
	movementCheck *widget.Check
	movementInt   *widget.Entry
	milestones    *widget.Check
	cooldown      *widget.Entry

	focusDur   *widget.Entry
	shortBreak *widget.Entry
	longBreak  *widget.Entry
	cycleLen   *widget.Entry
	autoBreak  *widget.Check
	autoFocus  *widget.Check

	styleSelect  *widget.Select
	breakInt     *widget.Entry
	targetDur    *widget.Entry
	autoStop     *widget.Check
	countdownDur *widget.Entry
	autoRestart  *widget.Check
	restartDelay *widget.Entry

	idleCheck  *widget.Check
	idleAfter  *widget.Entry
	autostart  *widget.Check
	serverURL  *widget.Entry
	workspace  *widget.Entry
	saveButton *widget.Button
	lockNotice *widget.Label
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Timeclock Settings")

	prefs := &Window{
		window:   window,
		settings: settings,
		onSave:   onSave,
	}

	prefs.modeSelect = widget.NewSelect([]string{
		string(model.ModeStopwatch), string(model.ModePomodoro), string(model.ModeCustom),
	}, nil)

	prefs.eyeRestCheck = widget.NewCheck("Eye rest reminders", nil)
	prefs.eyeRestInt = widget.NewEntry()
	prefs.movementCheck = widget.NewCheck("Movement reminders", nil)
	prefs.movementInt = widget.NewEntry()
	prefs.milestones = widget.NewCheck("Milestone notifications", nil)
	prefs.cooldown = widget.NewEntry()

	prefs.focusDur = widget.NewEntry()
	prefs.shortBreak = widget.NewEntry()
	prefs.longBreak = widget.NewEntry()
	prefs.cycleLen = widget.NewEntry()
	prefs.autoBreak = widget.NewCheck("Start breaks automatically", nil)
	prefs.autoFocus = widget.NewCheck("Start focus automatically", nil)

	prefs.styleSelect = widget.NewSelect([]string{
		string(model.CustomEnhancedStopwatch), string(model.CustomCountdown),
	}, nil)
	prefs.breakInt = widget.NewEntry()
	prefs.targetDur = widget.NewEntry()
	prefs.autoStop = widget.NewCheck("Stop counting at target", nil)
	prefs.countdownDur = widget.NewEntry()
	prefs.autoRestart = widget.NewCheck("Restart countdown automatically", nil)
	prefs.restartDelay = widget.NewEntry()

	prefs.idleCheck = widget.NewCheck("Pause session when idle", nil)
	prefs.idleAfter = widget.NewEntry()
	prefs.autostart = widget.NewCheck("Launch at login", nil)
	prefs.serverURL = widget.NewEntry()
	prefs.serverURL.SetPlaceHolder("leave empty for local tracking")
	prefs.workspace = widget.NewEntry()

	prefs.lockNotice = widget.NewLabel("Settings are locked while a session is active.")
	prefs.lockNotice.Hide()

	reminderTab := container.NewVBox(
		prefs.eyeRestCheck,
		container.NewHBox(widget.NewLabel("Eye rest every"), prefs.eyeRestInt, widget.NewLabel("min")),
		prefs.movementCheck,
		container.NewHBox(widget.NewLabel("Movement every"), prefs.movementInt, widget.NewLabel("min")),
		prefs.milestones,
		container.NewHBox(widget.NewLabel("Notification cooldown"), prefs.cooldown, widget.NewLabel("min")),
	)

	pomodoroTab := container.NewVBox(
		container.NewHBox(widget.NewLabel("Focus"), prefs.focusDur, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Short break"), prefs.shortBreak, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break"), prefs.longBreak, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Sessions until long break"), prefs.cycleLen),
		prefs.autoBreak,
		prefs.autoFocus,
	)

	customTab := container.NewVBox(
		container.NewHBox(widget.NewLabel("Style"), prefs.styleSelect),
		container.NewHBox(widget.NewLabel("Break every"), prefs.breakInt, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Target"), prefs.targetDur, widget.NewLabel("min")),
		prefs.autoStop,
		container.NewHBox(widget.NewLabel("Countdown"), prefs.countdownDur, widget.NewLabel("min")),
		prefs.autoRestart,
		container.NewHBox(widget.NewLabel("Restart after"), prefs.restartDelay, widget.NewLabel("sec")),
	)

	advancedTab := container.NewVBox(
		prefs.idleCheck,
		container.NewHBox(widget.NewLabel("Idle pause after"), prefs.idleAfter, widget.NewLabel("min")),
		prefs.autostart,
		container.NewHBox(widget.NewLabel("Server URL"), prefs.serverURL),
		container.NewHBox(widget.NewLabel("Workspace"), prefs.workspace),
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Reminders", reminderTab),
		container.NewTabItem("Pomodoro", pomodoroTab),
		container.NewTabItem("Custom", customTab),
		container.NewTabItem("Advanced", advancedTab),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	header := container.NewVBox(
		container.NewHBox(widget.NewLabel("Timer mode"), prefs.modeSelect),
		prefs.lockNotice,
	)
	content := container.NewBorder(header, buttons, nil, nil, tabs)
	window.SetContent(content)
	window.Resize(fyne.NewSize(480, 520))

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetLocked disables editing while a session is active.
func (prefs *Window) SetLocked(locked bool) {
	if locked {
		prefs.saveButton.Disable()
		prefs.modeSelect.Disable()
		prefs.lockNotice.Show()
	} else {
		prefs.saveButton.Enable()
		prefs.modeSelect.Enable()
		prefs.lockNotice.Hide()
	}
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings

	prefs.modeSelect.SetSelected(string(settings.Mode))

	prefs.eyeRestCheck.SetChecked(settings.EyeRestEnabled)
	prefs.eyeRestInt.SetText(fmt.Sprintf("%d", int(settings.EyeRestInterval.Minutes())))
	prefs.movementCheck.SetChecked(settings.MovementEnabled)
	prefs.movementInt.SetText(fmt.Sprintf("%d", int(settings.MovementInterval.Minutes())))
	prefs.milestones.SetChecked(settings.MilestonesEnabled)
	prefs.cooldown.SetText(fmt.Sprintf("%d", int(settings.NotificationCooldown.Minutes())))

	prefs.focusDur.SetText(fmt.Sprintf("%d", int(settings.FocusDuration.Minutes())))
	prefs.shortBreak.SetText(fmt.Sprintf("%d", int(settings.ShortBreakDuration.Minutes())))
	prefs.longBreak.SetText(fmt.Sprintf("%d", int(settings.LongBreakDuration.Minutes())))
	prefs.cycleLen.SetText(fmt.Sprintf("%d", settings.SessionsUntilLongBreak))
	prefs.autoBreak.SetChecked(settings.AutoStartBreak)
	prefs.autoFocus.SetChecked(settings.AutoStartFocus)

	prefs.styleSelect.SetSelected(string(settings.CustomStyle))
	prefs.breakInt.SetText(fmt.Sprintf("%d", int(settings.BreakInterval.Minutes())))
	prefs.targetDur.SetText(fmt.Sprintf("%d", int(settings.TargetDuration.Minutes())))
	prefs.autoStop.SetChecked(settings.AutoStopAtTarget)
	prefs.countdownDur.SetText(fmt.Sprintf("%d", int(settings.CountdownDuration.Minutes())))
	prefs.autoRestart.SetChecked(settings.AutoRestart)
	prefs.restartDelay.SetText(fmt.Sprintf("%d", int(settings.RestartDelay.Seconds())))

	prefs.idleCheck.SetChecked(settings.IdleEnabled)
	prefs.idleAfter.SetText(fmt.Sprintf("%d", int(settings.IdleResetAfter.Minutes())))
	prefs.autostart.SetChecked(settings.LaunchAtLogin)
	prefs.serverURL.SetText(settings.ServerURL)
	prefs.workspace.SetText(settings.WorkspaceID)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	switch model.Mode(prefs.modeSelect.Selected) {
	case model.ModeStopwatch, model.ModePomodoro, model.ModeCustom:
		settings.Mode = model.Mode(prefs.modeSelect.Selected)
	}

	settings.EyeRestEnabled = prefs.eyeRestCheck.Checked
	if minutes, ok := parsePositiveInt(prefs.eyeRestInt.Text); ok {
		settings.EyeRestInterval = time.Duration(minutes) * time.Minute
	}
	settings.MovementEnabled = prefs.movementCheck.Checked
	if minutes, ok := parsePositiveInt(prefs.movementInt.Text); ok {
		settings.MovementInterval = time.Duration(minutes) * time.Minute
	}
	settings.MilestonesEnabled = prefs.milestones.Checked
	if minutes, ok := parsePositiveInt(prefs.cooldown.Text); ok {
		settings.NotificationCooldown = time.Duration(minutes) * time.Minute
	}

	if minutes, ok := parsePositiveInt(prefs.focusDur.Text); ok {
		settings.FocusDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.shortBreak.Text); ok {
		settings.ShortBreakDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.longBreak.Text); ok {
		settings.LongBreakDuration = time.Duration(minutes) * time.Minute
	}
	if count, ok := parsePositiveInt(prefs.cycleLen.Text); ok {
		settings.SessionsUntilLongBreak = count
	}
	settings.AutoStartBreak = prefs.autoBreak.Checked
	settings.AutoStartFocus = prefs.autoFocus.Checked

	switch model.CustomStyle(prefs.styleSelect.Selected) {
	case model.CustomEnhancedStopwatch, model.CustomCountdown:
		settings.CustomStyle = model.CustomStyle(prefs.styleSelect.Selected)
	}
	if minutes, ok := parsePositiveInt(prefs.breakInt.Text); ok {
		settings.BreakInterval = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.targetDur.Text); ok {
		settings.TargetDuration = time.Duration(minutes) * time.Minute
	}
	settings.AutoStopAtTarget = prefs.autoStop.Checked
	if minutes, ok := parsePositiveInt(prefs.countdownDur.Text); ok {
		settings.CountdownDuration = time.Duration(minutes) * time.Minute
	}
	settings.AutoRestart = prefs.autoRestart.Checked
	if seconds, ok := parsePositiveInt(prefs.restartDelay.Text); ok {
		settings.RestartDelay = time.Duration(seconds) * time.Second
	}

	settings.IdleEnabled = prefs.idleCheck.Checked
	if minutes, ok := parsePositiveInt(prefs.idleAfter.Text); ok {
		settings.IdleResetAfter = time.Duration(minutes) * time.Minute
	}
	settings.LaunchAtLogin = prefs.autostart.Checked
	settings.ServerURL = prefs.serverURL.Text
	settings.WorkspaceID = prefs.workspace.Text

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
