package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"timeclock/internal/core/model"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowTimer    func()
	OnPreferences  func()
	OnPause        func()
	OnResume       func()
	OnStop         func()
	OnContinueLast func()
	OnSwitchMode   func(model.Mode)
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app          desktop.App
	statusItem   *fyne.MenuItem
	pauseItem    *fyne.MenuItem
	resumeItem   *fyne.MenuItem
	stopItem     *fyne.MenuItem
	continueItem *fyne.MenuItem
	modeItem     *fyne.MenuItem
	callbacks    Callbacks
	statusLabel  string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.pauseItem = fyne.NewMenuItem("Pause session", func() {
		if manager.callbacks.OnPause != nil {
			manager.callbacks.OnPause()
		}
	})
	manager.pauseItem.Disabled = true

	manager.resumeItem = fyne.NewMenuItem("Resume session", func() {
		if manager.callbacks.OnResume != nil {
			manager.callbacks.OnResume()
		}
	})
	manager.resumeItem.Disabled = true

	manager.stopItem = fyne.NewMenuItem("Stop session", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	manager.continueItem = fyne.NewMenuItem("Continue last session", func() {
		if manager.callbacks.OnContinueLast != nil {
			manager.callbacks.OnContinueLast()
		}
	})
	manager.continueItem.Disabled = true

	manager.modeItem = fyne.NewMenuItem("Timer mode", nil)
	manager.modeItem.ChildMenu = fyne.NewMenu("",
		fyne.NewMenuItem("Stopwatch", func() { manager.switchMode(model.ModeStopwatch) }),
		fyne.NewMenuItem("Pomodoro", func() { manager.switchMode(model.ModePomodoro) }),
		fyne.NewMenuItem("Custom", func() { manager.switchMode(model.ModeCustom) }),
	)

	manager.refreshMenu()
	return manager
}

func (manager *Manager) switchMode(mode model.Mode) {
	if manager.callbacks.OnSwitchMode != nil {
		manager.callbacks.OnSwitchMode(mode)
	}
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetSessionState toggles the menu to match the tracker status.
func (manager *Manager) SetSessionState(running, paused, hasLast bool) {
	manager.pauseItem.Disabled = !running
	manager.resumeItem.Disabled = !paused
	manager.stopItem.Disabled = !running && !paused
	manager.continueItem.Disabled = running || paused || !hasLast
	manager.modeItem.Disabled = running || paused
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Timeclock",
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowTimer != nil {
				manager.callbacks.OnShowTimer()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		manager.modeItem,
		manager.pauseItem,
		manager.resumeItem,
		manager.stopItem,
		manager.continueItem,
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
