package tracker

import (
	"time"

	"timeclock/internal/core/model"
	"timeclock/internal/core/reminder"
)

// Status is the tracker's local view of the session lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
)

func (status Status) String() string {
	switch status {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// EventType distinguishes tracker events for subscribers.
type EventType int

const (
	// EventStateChange fires on every session lifecycle transition.
	EventStateChange EventType = iota
	// EventTick fires once per second while a session is running.
	EventTick
	// EventReminder fires when a break or milestone reminder is due.
	EventReminder
	// EventSegmentChange fires when pomodoro enters a new segment or a
	// countdown restarts.
	EventSegmentChange
	// EventAwaitingAction fires when pomodoro finishes a segment and
	// waits for the user to continue.
	EventAwaitingAction
	// EventCompleted fires when a session stops or a custom timer
	// reaches its goal.
	EventCompleted
	// EventGuardPending fires when a pause or stop hits the workspace
	// time threshold and needs a user decision.
	EventGuardPending
	// EventGuardResolved fires when the pending guard decision is made.
	EventGuardResolved
	// EventIdleReset fires when the session is paused because the
	// machine went idle.
	EventIdleReset
)

// Display is what a clock face should show for the current mode.
type Display struct {
	Value      time.Duration
	CountsDown bool
	Progress   float64
}

// Event is a tracker state notification delivered to subscribers.
type Event struct {
	Type     EventType
	Status   Status
	Mode     model.Mode
	Session  *model.Session
	Display  Display
	Segment  model.PomodoroSegment
	Reminder *reminder.Event
	Guard    *GuardRequest
	At       time.Time
}
