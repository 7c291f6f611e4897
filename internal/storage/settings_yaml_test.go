package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/core/model"
	"timeclock/internal/ui/preferences"
)

const testAppName = "TimeclockTest"

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	isolateConfigDir(t)

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	settings := preferences.DefaultSettings()
	settings.Mode = model.ModePomodoro
	settings.EyeRestInterval = 25 * time.Minute
	settings.MovementEnabled = false
	settings.FocusDuration = 50 * time.Minute
	settings.SessionsUntilLongBreak = 3
	settings.AutoStartFocus = true
	settings.CustomStyle = model.CustomCountdown
	settings.RestartDelay = 45 * time.Second
	settings.ThresholdMaxAge = 10 * time.Hour
	settings.ServerURL = "https://workspace.example.com"
	settings.WorkspaceID = "ws-42"
	settings.LaunchAtLogin = true

	require.NoError(t, SaveSettings(testAppName, settings))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadSettingsIgnoresInvalidValues(t *testing.T) {
	dir := isolateConfigDir(t)

	configDir := filepath.Join(dir, testAppName)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	raw := []byte("mode: banana\ncustom_style: hourglass\nfocus_minutes: -5\neye_rest_interval_minutes: 0\n")
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), raw, 0o644))

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.Mode, settings.Mode)
	assert.Equal(t, defaults.CustomStyle, settings.CustomStyle)
	assert.Equal(t, defaults.FocusDuration, settings.FocusDuration)
	assert.Equal(t, defaults.EyeRestInterval, settings.EyeRestInterval)
}

func TestLoadSettingsBadYamlReturnsError(t *testing.T) {
	dir := isolateConfigDir(t)

	configDir := filepath.Join(dir, testAppName)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), []byte("{not yaml"), 0o644))

	settings, err := LoadSettings(testAppName)
	assert.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings, "defaults still come back on a parse failure")
}
