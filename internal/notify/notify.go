// Package notify delivers reminder notifications through the desktop
// environment.
package notify

import "fyne.io/fyne/v2"

// Desktop sends notifications via the running fyne application.
type Desktop struct {
	app fyne.App
}

// NewDesktop wraps a fyne app as a notification sink.
func NewDesktop(app fyne.App) *Desktop {
	return &Desktop{app: app}
}

// Notify shows a desktop notification.
func (desktop *Desktop) Notify(title, message string) {
	desktop.app.SendNotification(fyne.NewNotification(title, message))
}

// Nop discards notifications, for headless runs and tests.
type Nop struct{}

func (Nop) Notify(title, message string) {}
