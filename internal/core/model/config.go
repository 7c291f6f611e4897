package model

import "time"

// ReminderConfig defines the recurring break reminders.
type ReminderConfig struct {
	EyeRestEnabled    bool
	EyeRestInterval   time.Duration
	MovementEnabled   bool
	MovementInterval  time.Duration
	MilestonesEnabled bool
	Cooldown          time.Duration
}

// PomodoroConfig defines the focus/break cycle.
type PomodoroConfig struct {
	FocusDuration          time.Duration
	ShortBreakDuration     time.Duration
	LongBreakDuration      time.Duration
	SessionsUntilLongBreak int
	AutoStartBreak         bool
	AutoStartFocus         bool
}

// CustomStyle selects between the two custom timer flavours.
type CustomStyle string

const (
	CustomEnhancedStopwatch CustomStyle = "enhanced_stopwatch"
	CustomCountdown         CustomStyle = "countdown"
)

// CustomConfig defines the custom timer mode.
type CustomConfig struct {
	Style CustomStyle

	// Enhanced stopwatch.
	BreakInterval    time.Duration
	TargetDuration   time.Duration
	AutoStopAtTarget bool

	// Traditional countdown.
	CountdownDuration time.Duration
	AutoRestart       bool
	RestartDelay      time.Duration
}

// ThresholdPolicy is the workspace rule gating overly long sessions.
type ThresholdPolicy struct {
	Enabled bool
	MaxAge  time.Duration
}

// TrackerConfig contains runtime settings for the session tracker.
type TrackerConfig struct {
	Mode      Mode
	Reminders ReminderConfig
	Pomodoro  PomodoroConfig
	Custom    CustomConfig
	Threshold ThresholdPolicy

	IdleResetEnabled  bool
	IdleResetAfter    time.Duration
	IdleCheckInterval time.Duration
}
