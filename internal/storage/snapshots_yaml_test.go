package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/core/model"
)

func newTestSnapshotStore(t *testing.T) *SnapshotFile {
	t.Helper()
	isolateConfigDir(t)
	store, err := NewSnapshotStore(testAppName, "")
	require.NoError(t, err)
	return store
}

func TestSnapshotsScopedByWorkspace(t *testing.T) {
	isolateConfigDir(t)
	first, err := NewSnapshotStore(testAppName, "ws-1")
	require.NoError(t, err)
	second, err := NewSnapshotStore(testAppName, "ws-2")
	require.NoError(t, err)

	require.NoError(t, first.Save(model.ModeSnapshot{Mode: model.ModeStopwatch, Elapsed: time.Hour}))

	_, found, err := second.Load(model.ModeStopwatch)
	require.NoError(t, err)
	assert.False(t, found, "workspaces never see each other's snapshots")

	loaded, found, err := first.Load(model.ModeStopwatch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, time.Hour, loaded.Elapsed)
}

func TestSnapshotMissingModeNotFound(t *testing.T) {
	store := newTestSnapshotStore(t)

	_, found, err := store.Load(model.ModePomodoro)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotRoundTripPomodoro(t *testing.T) {
	store := newTestSnapshotStore(t)

	savedAt := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	snap := model.ModeSnapshot{
		Mode:      model.ModePomodoro,
		SessionID: "sess-1",
		Elapsed:   95 * time.Minute,
		SavedAt:   savedAt,
		Breaks: model.BreakBook{
			LastEyeBreak:     savedAt.Add(-10 * time.Minute),
			IntervalBreaks:   2,
			LastMilestone:    60 * time.Minute,
			LastNotification: savedAt.Add(-3 * time.Minute),
		},
		Pomodoro: &model.PomodoroSnapshot{
			Segment:        model.SegmentShortBreak,
			Remaining:      3 * time.Minute,
			SessionInCycle: 3,
			CycleCount:     1,
			AwaitingAction: true,
		},
	}
	require.NoError(t, store.Save(snap))

	loaded, found, err := store.Load(model.ModePomodoro)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap, loaded)
}

func TestSnapshotRoundTripCustom(t *testing.T) {
	store := newTestSnapshotStore(t)

	snap := model.ModeSnapshot{
		Mode:    model.ModeCustom,
		Elapsed: 2 * time.Hour,
		SavedAt: time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC),
		Custom: &model.CustomSnapshot{
			TargetReached:      true,
			Progress:           0.5,
			CountdownRemaining: 12 * time.Minute,
		},
	}
	require.NoError(t, store.Save(snap))

	loaded, found, err := store.Load(model.ModeCustom)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap, loaded)
}

func TestSnapshotsKeptPerMode(t *testing.T) {
	store := newTestSnapshotStore(t)

	require.NoError(t, store.Save(model.ModeSnapshot{Mode: model.ModeStopwatch, Elapsed: time.Hour}))
	require.NoError(t, store.Save(model.ModeSnapshot{Mode: model.ModePomodoro, Elapsed: 10 * time.Minute}))

	stopwatch, found, err := store.Load(model.ModeStopwatch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, time.Hour, stopwatch.Elapsed)

	pomodoro, found, err := store.Load(model.ModePomodoro)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10*time.Minute, pomodoro.Elapsed)
}

func TestSnapshotSaveReplacesPrevious(t *testing.T) {
	store := newTestSnapshotStore(t)

	require.NoError(t, store.Save(model.ModeSnapshot{Mode: model.ModeStopwatch, Elapsed: time.Hour}))
	require.NoError(t, store.Save(model.ModeSnapshot{Mode: model.ModeStopwatch, Elapsed: 2 * time.Hour}))

	loaded, found, err := store.Load(model.ModeStopwatch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2*time.Hour, loaded.Elapsed)
}

func TestSnapshotClear(t *testing.T) {
	store := newTestSnapshotStore(t)

	require.NoError(t, store.Save(model.ModeSnapshot{Mode: model.ModeStopwatch, Elapsed: time.Hour}))
	require.NoError(t, store.Clear(model.ModeStopwatch))

	_, found, err := store.Load(model.ModeStopwatch)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, store.Clear(model.ModeStopwatch), "clearing twice is harmless")
}
