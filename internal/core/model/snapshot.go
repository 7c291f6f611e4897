package model

import "time"

// Mode selects how displayed time and completion behave.
type Mode string

const (
	ModeStopwatch Mode = "stopwatch"
	ModePomodoro  Mode = "pomodoro"
	ModeCustom    Mode = "custom"
)

// PomodoroSegment identifies the current slice of a pomodoro cycle.
type PomodoroSegment string

const (
	SegmentFocus      PomodoroSegment = "focus"
	SegmentShortBreak PomodoroSegment = "short_break"
	SegmentLongBreak  PomodoroSegment = "long_break"
)

// BreakBook tracks when each reminder kind last fired so reminders are
// never duplicated. Fields are advanced by the reminder evaluator only.
type BreakBook struct {
	LastEyeBreak      time.Time
	LastMovementBreak time.Time
	LastIntervalBreak time.Time
	IntervalBreaks    int
	LastMilestone     time.Duration
	LastNotification  time.Time
	TargetReached     bool
}

// PomodoroSnapshot is the pomodoro-specific part of a mode snapshot.
type PomodoroSnapshot struct {
	Segment        PomodoroSegment
	Remaining      time.Duration
	SessionInCycle int
	CycleCount     int
	AwaitingAction bool
}

// CustomSnapshot is the custom-timer-specific part of a mode snapshot.
type CustomSnapshot struct {
	TargetReached      bool
	Progress           float64
	CountdownRemaining time.Duration
}

// ModeSnapshot caches per-mode elapsed time and break bookkeeping so
// the timer survives an application restart without losing state.
// Exactly one snapshot exists per mode; snapshots are restored
// verbatim, never merged.
type ModeSnapshot struct {
	Mode      Mode
	SessionID string
	Elapsed   time.Duration
	Breaks    BreakBook
	Pomodoro  *PomodoroSnapshot
	Custom    *CustomSnapshot
	SavedAt   time.Time
}
