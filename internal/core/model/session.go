package model

import "time"

// SessionStatus is the persisted state of a tracked session.
type SessionStatus string

const (
	SessionRunning SessionStatus = "running"
	SessionPaused  SessionStatus = "paused"
	SessionStopped SessionStatus = "stopped"
)

// Session is a single contiguous block of tracked time.
type Session struct {
	ID              string
	WorkspaceID     string
	UserID          string
	Title           string
	Description     string
	CategoryID      string
	TaskID          string
	StartTime       time.Time
	EndTime         *time.Time
	Duration        time.Duration
	Status          SessionStatus
	PendingApproval bool
	ResumedFrom     string
}

// SessionDescriptor carries the fields needed to start a session.
type SessionDescriptor struct {
	Title       string
	Description string
	CategoryID  string
	TaskID      string
}

// Break is a timed pause attached to a paused session.
type Break struct {
	ID        string
	SessionID string
	Type      string
	Start     time.Time
	End       *time.Time
}

// SessionProtection is derived from tracker state and never persisted.
type SessionProtection struct {
	IsActive          bool
	CurrentMode       Mode
	CanSwitchModes    bool
	CanModifySettings bool
}
