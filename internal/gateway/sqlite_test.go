package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/core/model"
)

func openTestStore(t *testing.T, threshold model.ThresholdPolicy) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "sessions.db"), threshold)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// frozenClock makes the store's notion of now test-controlled.
type frozenClock struct {
	now time.Time
}

func (clock *frozenClock) Now() time.Time { return clock.now }

func freeze(store *Store) *frozenClock {
	clock := &frozenClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	store.now = clock.Now
	return clock
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	clock := freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "writing", Description: "chapter 3"})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, model.SessionRunning, session.Status)

	clock.now = clock.now.Add(30 * time.Minute)
	paused, err := store.PauseSession(ctx, session.ID, BreakRequest{TypeName: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionPaused, paused.Status)
	assert.Equal(t, 30*time.Minute, paused.Duration)

	activeBreak, err := store.ActiveBreak(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, activeBreak)
	assert.Equal(t, "coffee", activeBreak.Type)

	clock.now = clock.now.Add(10 * time.Minute)
	resumed, err := store.ResumeSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionRunning, resumed.Status)

	activeBreak, err = store.ActiveBreak(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, activeBreak, "resume closes the open break")

	clock.now = clock.now.Add(20 * time.Minute)
	stopped, err := store.StopSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStopped, stopped.Status)
	assert.Equal(t, 50*time.Minute, stopped.Duration, "break time is excluded from the total")
	require.NotNil(t, stopped.EndTime)
}

func TestOnlyOneActiveSession(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	freeze(store)
	ctx := context.Background()

	_, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "first"})
	require.NoError(t, err)

	_, err = store.CreateSession(ctx, model.SessionDescriptor{Title: "second"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestInvalidTransitions(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "x"})
	require.NoError(t, err)

	_, err = store.ResumeSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrInvalid, "cannot resume a running session")

	_, err = store.PauseSession(ctx, "no-such-id", BreakRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.StopSession(ctx, session.ID)
	require.NoError(t, err)
	_, err = store.StopSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrInvalid, "cannot stop twice")
}

func TestQueriesByStatus(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	freeze(store)
	ctx := context.Background()

	running, err := store.RunningSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, running)

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "x"})
	require.NoError(t, err)

	running, err = store.RunningSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, session.ID, running.ID)

	_, err = store.PauseSession(ctx, session.ID, BreakRequest{})
	require.NoError(t, err)

	running, err = store.RunningSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, running)

	paused, err := store.PausedSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, paused)
	assert.Equal(t, session.ID, paused.ID)
}

func TestResumeStoppedSessionChains(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	clock := freeze(store)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "report"})
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Hour)
	_, err = store.StopSession(ctx, first.ID)
	require.NoError(t, err)

	clock.now = clock.now.Add(10 * time.Minute)
	second, err := store.ResumeSession(ctx, first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.ID, second.ResumedFrom)
	assert.Equal(t, "report", second.Title)
	assert.Equal(t, model.SessionRunning, second.Status)
}

func TestThresholdBlocksOversizedChain(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{Enabled: true, MaxAge: 12 * time.Hour})
	clock := freeze(store)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "marathon"})
	require.NoError(t, err)
	clock.now = clock.now.Add(8 * time.Hour)
	_, err = store.StopSession(ctx, first.ID)
	require.NoError(t, err)

	second, err := store.ResumeSession(ctx, first.ID)
	require.NoError(t, err)

	// The chain is now 13 hours old measured from the first session.
	clock.now = clock.now.Add(5 * time.Hour)
	_, err = store.StopSession(ctx, second.ID)

	var threshold *ThresholdError
	require.ErrorAs(t, err, &threshold)
	require.NotNil(t, threshold.Chain)
	assert.Equal(t, 2, threshold.Chain.Sessions)
	assert.Equal(t, 13*time.Hour, threshold.Chain.TotalDuration)

	// The session is untouched by the rejected stop.
	running, err := store.RunningSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, running)
}

func TestApprovalBypassesThreshold(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{Enabled: true, MaxAge: time.Hour})
	clock := freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "long haul"})
	require.NoError(t, err)
	clock.now = clock.now.Add(2 * time.Hour)

	_, err = store.StopSession(ctx, session.ID)
	var threshold *ThresholdError
	require.ErrorAs(t, err, &threshold)

	require.NoError(t, store.ApproveSession(ctx, session.ID))
	stopped, err := store.StopSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStopped, stopped.Status)
}

func TestDiscardRemovesSession(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "oops"})
	require.NoError(t, err)
	require.NoError(t, store.DiscardSession(ctx, session.ID))

	_, _, err = store.loadSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DiscardSession(ctx, session.ID), ErrNotFound)
}

func TestBackfillAsBreakLeavesPausedSession(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	clock := freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "forgot to stop"})
	require.NoError(t, err)
	start := clock.now
	clock.now = clock.now.Add(14 * time.Hour)

	replacement, err := store.BackfillSession(ctx, BackfillRequest{
		SessionID: session.ID,
		Title:     "forgot to stop",
		StartTime: start,
		EndTime:   start.Add(6 * time.Hour),
		AsBreak:   true,
		BreakType: "overnight",
	})
	require.NoError(t, err)
	require.NotNil(t, replacement)
	assert.Equal(t, model.SessionPaused, replacement.Status)
	assert.NotEqual(t, session.ID, replacement.ID)

	activeBreak, err := store.ActiveBreak(ctx, replacement.ID)
	require.NoError(t, err)
	require.NotNil(t, activeBreak)
	assert.Equal(t, "overnight", activeBreak.Type)

	_, _, err = store.loadSession(ctx, session.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "the oversized session is replaced")
}

func TestBackfillRejectsInvertedRangeKeepingSession(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	clock := freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "forgot to stop"})
	require.NoError(t, err)
	start := clock.now
	clock.now = clock.now.Add(14 * time.Hour)

	_, err = store.BackfillSession(ctx, BackfillRequest{
		SessionID: session.ID,
		Title:     "forgot to stop",
		StartTime: start.Add(6 * time.Hour),
		EndTime:   start,
		AsBreak:   true,
		BreakType: "overnight",
	})
	assert.ErrorIs(t, err, ErrInvalid)

	// The failed backfill must not touch the original session.
	running, err := store.RunningSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, session.ID, running.ID)
}

func TestBackfillWithoutBreakLeavesNothingActive(t *testing.T) {
	store := openTestStore(t, model.ThresholdPolicy{})
	clock := freeze(store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, model.SessionDescriptor{Title: "forgot to stop"})
	require.NoError(t, err)
	start := clock.now
	clock.now = clock.now.Add(14 * time.Hour)

	replacement, err := store.BackfillSession(ctx, BackfillRequest{
		SessionID: session.ID,
		Title:     "forgot to stop",
		StartTime: start,
		EndTime:   start.Add(6 * time.Hour),
	})
	require.NoError(t, err)
	assert.Nil(t, replacement)

	running, err := store.RunningSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, running)
	paused, err := store.PausedSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, paused)
}
