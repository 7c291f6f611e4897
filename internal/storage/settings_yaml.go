package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"timeclock/internal/core/model"
	"timeclock/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Mode string `yaml:"mode"`

	EyeRestEnabled              bool `yaml:"eye_rest_enabled"`
	EyeRestIntervalMinutes      int  `yaml:"eye_rest_interval_minutes"`
	MovementEnabled             bool `yaml:"movement_enabled"`
	MovementIntervalMinutes     int  `yaml:"movement_interval_minutes"`
	MilestonesEnabled           bool `yaml:"milestones_enabled"`
	NotificationCooldownMinutes int  `yaml:"notification_cooldown_minutes"`

	FocusMinutes           int  `yaml:"focus_minutes"`
	ShortBreakMinutes      int  `yaml:"short_break_minutes"`
	LongBreakMinutes       int  `yaml:"long_break_minutes"`
	SessionsUntilLongBreak int  `yaml:"sessions_until_long_break"`
	AutoStartBreak         bool `yaml:"auto_start_break"`
	AutoStartFocus         bool `yaml:"auto_start_focus"`

	CustomStyle          string `yaml:"custom_style"`
	BreakIntervalMinutes int    `yaml:"break_interval_minutes"`
	TargetMinutes        int    `yaml:"target_minutes"`
	AutoStopAtTarget     bool   `yaml:"auto_stop_at_target"`
	CountdownMinutes     int    `yaml:"countdown_minutes"`
	AutoRestart          bool   `yaml:"auto_restart"`
	RestartDelaySeconds  int    `yaml:"restart_delay_seconds"`

	ThresholdEnabled  bool `yaml:"threshold_enabled"`
	ThresholdMaxHours int  `yaml:"threshold_max_hours"`

	IdleEnabled           bool `yaml:"idle_enabled"`
	IdleResetAfterMinutes int  `yaml:"idle_reset_after_minutes"`

	ServerURL   string `yaml:"server_url"`
	WorkspaceID string `yaml:"workspace_id"`

	LaunchAtLogin bool `yaml:"launch_at_login"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName, settingsFileName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		Mode: string(settings.Mode),

		EyeRestEnabled:              settings.EyeRestEnabled,
		EyeRestIntervalMinutes:      int(settings.EyeRestInterval / time.Minute),
		MovementEnabled:             settings.MovementEnabled,
		MovementIntervalMinutes:     int(settings.MovementInterval / time.Minute),
		MilestonesEnabled:           settings.MilestonesEnabled,
		NotificationCooldownMinutes: int(settings.NotificationCooldown / time.Minute),

		FocusMinutes:           int(settings.FocusDuration / time.Minute),
		ShortBreakMinutes:      int(settings.ShortBreakDuration / time.Minute),
		LongBreakMinutes:       int(settings.LongBreakDuration / time.Minute),
		SessionsUntilLongBreak: settings.SessionsUntilLongBreak,
		AutoStartBreak:         settings.AutoStartBreak,
		AutoStartFocus:         settings.AutoStartFocus,

		CustomStyle:          string(settings.CustomStyle),
		BreakIntervalMinutes: int(settings.BreakInterval / time.Minute),
		TargetMinutes:        int(settings.TargetDuration / time.Minute),
		AutoStopAtTarget:     settings.AutoStopAtTarget,
		CountdownMinutes:     int(settings.CountdownDuration / time.Minute),
		AutoRestart:          settings.AutoRestart,
		RestartDelaySeconds:  int(settings.RestartDelay / time.Second),

		ThresholdEnabled:  settings.ThresholdEnabled,
		ThresholdMaxHours: int(settings.ThresholdMaxAge / time.Hour),

		IdleEnabled:           settings.IdleEnabled,
		IdleResetAfterMinutes: int(settings.IdleResetAfter / time.Minute),

		ServerURL:   settings.ServerURL,
		WorkspaceID: settings.WorkspaceID,

		LaunchAtLogin: settings.LaunchAtLogin,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName, fileName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	switch model.Mode(fileData.Mode) {
	case model.ModeStopwatch, model.ModePomodoro, model.ModeCustom:
		settings.Mode = model.Mode(fileData.Mode)
	}
	switch model.CustomStyle(fileData.CustomStyle) {
	case model.CustomEnhancedStopwatch, model.CustomCountdown:
		settings.CustomStyle = model.CustomStyle(fileData.CustomStyle)
	}

	if fileData.EyeRestIntervalMinutes > 0 {
		settings.EyeRestInterval = time.Duration(fileData.EyeRestIntervalMinutes) * time.Minute
	}
	if fileData.MovementIntervalMinutes > 0 {
		settings.MovementInterval = time.Duration(fileData.MovementIntervalMinutes) * time.Minute
	}
	if fileData.NotificationCooldownMinutes > 0 {
		settings.NotificationCooldown = time.Duration(fileData.NotificationCooldownMinutes) * time.Minute
	}

	if fileData.FocusMinutes > 0 {
		settings.FocusDuration = time.Duration(fileData.FocusMinutes) * time.Minute
	}
	if fileData.ShortBreakMinutes > 0 {
		settings.ShortBreakDuration = time.Duration(fileData.ShortBreakMinutes) * time.Minute
	}
	if fileData.LongBreakMinutes > 0 {
		settings.LongBreakDuration = time.Duration(fileData.LongBreakMinutes) * time.Minute
	}
	if fileData.SessionsUntilLongBreak > 0 {
		settings.SessionsUntilLongBreak = fileData.SessionsUntilLongBreak
	}

	if fileData.BreakIntervalMinutes > 0 {
		settings.BreakInterval = time.Duration(fileData.BreakIntervalMinutes) * time.Minute
	}
	if fileData.TargetMinutes > 0 {
		settings.TargetDuration = time.Duration(fileData.TargetMinutes) * time.Minute
	}
	if fileData.CountdownMinutes > 0 {
		settings.CountdownDuration = time.Duration(fileData.CountdownMinutes) * time.Minute
	}
	if fileData.RestartDelaySeconds > 0 {
		settings.RestartDelay = time.Duration(fileData.RestartDelaySeconds) * time.Second
	}

	if fileData.ThresholdMaxHours > 0 {
		settings.ThresholdMaxAge = time.Duration(fileData.ThresholdMaxHours) * time.Hour
	}
	if fileData.IdleResetAfterMinutes > 0 {
		settings.IdleResetAfter = time.Duration(fileData.IdleResetAfterMinutes) * time.Minute
	}

	settings.EyeRestEnabled = fileData.EyeRestEnabled
	settings.MovementEnabled = fileData.MovementEnabled
	settings.MilestonesEnabled = fileData.MilestonesEnabled
	settings.AutoStartBreak = fileData.AutoStartBreak
	settings.AutoStartFocus = fileData.AutoStartFocus
	settings.AutoStopAtTarget = fileData.AutoStopAtTarget
	settings.AutoRestart = fileData.AutoRestart
	settings.ThresholdEnabled = fileData.ThresholdEnabled
	settings.IdleEnabled = fileData.IdleEnabled
	settings.ServerURL = fileData.ServerURL
	settings.WorkspaceID = fileData.WorkspaceID
	settings.LaunchAtLogin = fileData.LaunchAtLogin
}
