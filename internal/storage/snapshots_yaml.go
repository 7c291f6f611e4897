package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"timeclock/internal/core/model"
)

const snapshotsFileName = "snapshots.yaml"

// SnapshotFile persists one snapshot per timer mode in a single YAML
// file next to the settings. Entries are scoped by workspace so two
// backends never read each other's state; the config dir itself is
// already per OS user. Saving is best-effort: a write failure must
// never take the timer down.
type SnapshotFile struct {
	path      string
	workspace string
}

// NewSnapshotStore creates a snapshot store under the app's config dir.
// An empty workspace scopes the entries to the local store.
func NewSnapshotStore(appName, workspace string) (*SnapshotFile, error) {
	path, err := resolveConfigPath(appName, snapshotsFileName)
	if err != nil {
		return nil, err
	}
	return &SnapshotFile{path: path, workspace: workspace}, nil
}

func (store *SnapshotFile) key(mode model.Mode) string {
	if store.workspace == "" {
		return string(mode)
	}
	return store.workspace + "/" + string(mode)
}

type yamlBreakBook struct {
	LastEyeBreak      time.Time `yaml:"last_eye_break,omitempty"`
	LastMovementBreak time.Time `yaml:"last_movement_break,omitempty"`
	LastIntervalBreak time.Time `yaml:"last_interval_break,omitempty"`
	IntervalBreaks    int       `yaml:"interval_breaks,omitempty"`
	LastMilestoneMins int       `yaml:"last_milestone_minutes,omitempty"`
	LastNotification  time.Time `yaml:"last_notification,omitempty"`
	TargetReached     bool      `yaml:"target_reached,omitempty"`
}

type yamlPomodoro struct {
	Segment          string `yaml:"segment"`
	RemainingSeconds int64  `yaml:"remaining_seconds"`
	SessionInCycle   int    `yaml:"session_in_cycle"`
	CycleCount       int    `yaml:"cycle_count"`
	AwaitingAction   bool   `yaml:"awaiting_action"`
}

type yamlCustom struct {
	TargetReached    bool    `yaml:"target_reached"`
	Progress         float64 `yaml:"progress"`
	CountdownSeconds int64   `yaml:"countdown_remaining_seconds"`
}

type yamlSnapshot struct {
	SessionID      string        `yaml:"session_id,omitempty"`
	ElapsedSeconds int64         `yaml:"elapsed_seconds"`
	SavedAt        time.Time     `yaml:"saved_at"`
	Breaks         yamlBreakBook `yaml:"breaks"`
	Pomodoro       *yamlPomodoro `yaml:"pomodoro,omitempty"`
	Custom         *yamlCustom   `yaml:"custom,omitempty"`
}

// Load returns the stored snapshot for a mode, if any.
func (store *SnapshotFile) Load(mode model.Mode) (model.ModeSnapshot, bool, error) {
	byMode, err := store.read()
	if err != nil {
		return model.ModeSnapshot{}, false, err
	}
	fileData, found := byMode[store.key(mode)]
	if !found {
		return model.ModeSnapshot{}, false, nil
	}

	snap := model.ModeSnapshot{
		Mode:      mode,
		SessionID: fileData.SessionID,
		Elapsed:   time.Duration(fileData.ElapsedSeconds) * time.Second,
		SavedAt:   fileData.SavedAt,
		Breaks: model.BreakBook{
			LastEyeBreak:      fileData.Breaks.LastEyeBreak,
			LastMovementBreak: fileData.Breaks.LastMovementBreak,
			LastIntervalBreak: fileData.Breaks.LastIntervalBreak,
			IntervalBreaks:    fileData.Breaks.IntervalBreaks,
			LastMilestone:     time.Duration(fileData.Breaks.LastMilestoneMins) * time.Minute,
			LastNotification:  fileData.Breaks.LastNotification,
			TargetReached:     fileData.Breaks.TargetReached,
		},
	}
	if fileData.Pomodoro != nil {
		snap.Pomodoro = &model.PomodoroSnapshot{
			Segment:        model.PomodoroSegment(fileData.Pomodoro.Segment),
			Remaining:      time.Duration(fileData.Pomodoro.RemainingSeconds) * time.Second,
			SessionInCycle: fileData.Pomodoro.SessionInCycle,
			CycleCount:     fileData.Pomodoro.CycleCount,
			AwaitingAction: fileData.Pomodoro.AwaitingAction,
		}
	}
	if fileData.Custom != nil {
		snap.Custom = &model.CustomSnapshot{
			TargetReached:      fileData.Custom.TargetReached,
			Progress:           fileData.Custom.Progress,
			CountdownRemaining: time.Duration(fileData.Custom.CountdownSeconds) * time.Second,
		}
	}
	return snap, true, nil
}

// Save stores the snapshot, replacing any previous one for its mode.
func (store *SnapshotFile) Save(snap model.ModeSnapshot) error {
	byMode, err := store.read()
	if err != nil {
		return err
	}

	fileData := yamlSnapshot{
		SessionID:      snap.SessionID,
		ElapsedSeconds: int64(snap.Elapsed.Seconds()),
		SavedAt:        snap.SavedAt,
		Breaks: yamlBreakBook{
			LastEyeBreak:      snap.Breaks.LastEyeBreak,
			LastMovementBreak: snap.Breaks.LastMovementBreak,
			LastIntervalBreak: snap.Breaks.LastIntervalBreak,
			IntervalBreaks:    snap.Breaks.IntervalBreaks,
			LastMilestoneMins: int(snap.Breaks.LastMilestone.Minutes()),
			LastNotification:  snap.Breaks.LastNotification,
			TargetReached:     snap.Breaks.TargetReached,
		},
	}
	if snap.Pomodoro != nil {
		fileData.Pomodoro = &yamlPomodoro{
			Segment:          string(snap.Pomodoro.Segment),
			RemainingSeconds: int64(snap.Pomodoro.Remaining.Seconds()),
			SessionInCycle:   snap.Pomodoro.SessionInCycle,
			CycleCount:       snap.Pomodoro.CycleCount,
			AwaitingAction:   snap.Pomodoro.AwaitingAction,
		}
	}
	if snap.Custom != nil {
		fileData.Custom = &yamlCustom{
			TargetReached:    snap.Custom.TargetReached,
			Progress:         snap.Custom.Progress,
			CountdownSeconds: int64(snap.Custom.CountdownRemaining.Seconds()),
		}
	}

	byMode[store.key(snap.Mode)] = fileData
	return store.write(byMode)
}

// Clear drops the stored snapshot for a mode.
func (store *SnapshotFile) Clear(mode model.Mode) error {
	byMode, err := store.read()
	if err != nil {
		return err
	}
	if _, found := byMode[store.key(mode)]; !found {
		return nil
	}
	delete(byMode, store.key(mode))
	return store.write(byMode)
}

func (store *SnapshotFile) read() (map[string]yamlSnapshot, error) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]yamlSnapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshots file: %w", err)
	}

	byMode := map[string]yamlSnapshot{}
	if err := yaml.Unmarshal(rawData, &byMode); err != nil {
		return nil, fmt.Errorf("parse snapshots yaml: %w", err)
	}
	return byMode, nil
}

func (store *SnapshotFile) write(byMode map[string]yamlSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(byMode)
	if err != nil {
		return fmt.Errorf("marshal snapshots yaml: %w", err)
	}
	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write snapshots file: %w", err)
	}
	return nil
}
