package preferences

import (
	"time"

	"timeclock/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	Mode model.Mode

	EyeRestEnabled       bool
	EyeRestInterval      time.Duration
	MovementEnabled      bool
	MovementInterval     time.Duration
	MilestonesEnabled    bool
	NotificationCooldown time.Duration

	FocusDuration          time.Duration
	ShortBreakDuration     time.Duration
	LongBreakDuration      time.Duration
	SessionsUntilLongBreak int
	AutoStartBreak         bool
	AutoStartFocus         bool

	CustomStyle       model.CustomStyle
	BreakInterval     time.Duration
	TargetDuration    time.Duration
	AutoStopAtTarget  bool
	CountdownDuration time.Duration
	AutoRestart       bool
	RestartDelay      time.Duration

	ThresholdEnabled bool
	ThresholdMaxAge  time.Duration

	IdleEnabled    bool
	IdleResetAfter time.Duration

	ServerURL   string
	WorkspaceID string

	LaunchAtLogin bool
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		Mode: model.ModeStopwatch,

		EyeRestEnabled:       true,
		EyeRestInterval:      20 * time.Minute,
		MovementEnabled:      true,
		MovementInterval:     60 * time.Minute,
		MilestonesEnabled:    true,
		NotificationCooldown: 5 * time.Minute,

		FocusDuration:          25 * time.Minute,
		ShortBreakDuration:     5 * time.Minute,
		LongBreakDuration:      15 * time.Minute,
		SessionsUntilLongBreak: 4,
		AutoStartBreak:         true,
		AutoStartFocus:         false,

		CustomStyle:       model.CustomEnhancedStopwatch,
		BreakInterval:     45 * time.Minute,
		TargetDuration:    4 * time.Hour,
		AutoStopAtTarget:  false,
		CountdownDuration: 30 * time.Minute,
		AutoRestart:       false,
		RestartDelay:      30 * time.Second,

		ThresholdEnabled: true,
		ThresholdMaxAge:  12 * time.Hour,

		IdleEnabled:    true,
		IdleResetAfter: 10 * time.Minute,
	}
}

// TrackerConfig converts settings to the tracker's runtime config.
func (settings Settings) TrackerConfig() model.TrackerConfig {
	return model.TrackerConfig{
		Mode: settings.Mode,
		Reminders: model.ReminderConfig{
			EyeRestEnabled:    settings.EyeRestEnabled,
			EyeRestInterval:   settings.EyeRestInterval,
			MovementEnabled:   settings.MovementEnabled,
			MovementInterval:  settings.MovementInterval,
			MilestonesEnabled: settings.MilestonesEnabled,
			Cooldown:          settings.NotificationCooldown,
		},
		Pomodoro: model.PomodoroConfig{
			FocusDuration:          settings.FocusDuration,
			ShortBreakDuration:     settings.ShortBreakDuration,
			LongBreakDuration:      settings.LongBreakDuration,
			SessionsUntilLongBreak: settings.SessionsUntilLongBreak,
			AutoStartBreak:         settings.AutoStartBreak,
			AutoStartFocus:         settings.AutoStartFocus,
		},
		Custom: model.CustomConfig{
			Style:             settings.CustomStyle,
			BreakInterval:     settings.BreakInterval,
			TargetDuration:    settings.TargetDuration,
			AutoStopAtTarget:  settings.AutoStopAtTarget,
			CountdownDuration: settings.CountdownDuration,
			AutoRestart:       settings.AutoRestart,
			RestartDelay:      settings.RestartDelay,
		},
		Threshold: model.ThresholdPolicy{
			Enabled: settings.ThresholdEnabled,
			MaxAge:  settings.ThresholdMaxAge,
		},
		IdleResetEnabled:  settings.IdleEnabled,
		IdleResetAfter:    settings.IdleResetAfter,
		IdleCheckInterval: 30 * time.Second,
	}
}
