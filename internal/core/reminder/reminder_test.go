package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/core/model"
)

func baseConfig() Config {
	return Config{
		Mode: model.ModeStopwatch,
		Reminders: model.ReminderConfig{
			EyeRestEnabled:    true,
			EyeRestInterval:   20 * time.Minute,
			MovementEnabled:   true,
			MovementInterval:  60 * time.Minute,
			MilestonesEnabled: true,
			Cooldown:          5 * time.Minute,
		},
	}
}

func TestEyeRestFiresAfterInterval(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	book := Seed(start)
	config := baseConfig()

	now := start.Add(20*time.Minute + time.Second)
	fired, book := Evaluate(now, now.Sub(start), book, config)

	require.Len(t, fired, 1)
	assert.Equal(t, KindEyeRest, fired[0].Kind)
	assert.Equal(t, now, book.LastEyeBreak)
	assert.Equal(t, now, book.LastNotification)

	// The same condition must not fire again on the next tick.
	next := now.Add(time.Second)
	fired, _ = Evaluate(next, next.Sub(start), book, config)
	assert.Empty(t, fired)
}

func TestCooldownSuppressesWithoutConsuming(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	book := Seed(start)
	config := baseConfig()
	config.Reminders.MovementInterval = 23 * time.Minute

	// Eye rest fires first and arms the shared cooldown.
	now := start.Add(20*time.Minute + time.Second)
	fired, book := Evaluate(now, now.Sub(start), book, config)
	require.Len(t, fired, 1)
	require.Equal(t, KindEyeRest, fired[0].Kind)

	// Movement becomes due 3 minutes later, inside the cooldown.
	during := start.Add(23*time.Minute + time.Second)
	fired, book = Evaluate(during, during.Sub(start), book, config)
	assert.Empty(t, fired)
	assert.Equal(t, start, book.LastMovementBreak, "suppressed reminder must not consume its condition")

	// Once the cooldown clears, the held movement reminder fires.
	after := now.Add(5*time.Minute + time.Second)
	fired, _ = Evaluate(after, after.Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, KindMovement, fired[0].Kind)
}

func TestMilestonesFireOnceEach(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := baseConfig()
	config.Reminders.EyeRestEnabled = false
	config.Reminders.MovementEnabled = false
	book := Seed(start)

	var seen []time.Duration
	for _, minutes := range []int{29, 30, 31, 60, 61, 120, 180, 240, 300} {
		now := start.Add(time.Duration(minutes) * time.Minute)
		var fired []Event
		fired, book = Evaluate(now, now.Sub(start), book, config)
		for _, event := range fired {
			if event.Kind == KindMilestone {
				seen = append(seen, event.Milestone)
			}
		}
	}

	assert.Equal(t, Milestones, seen)
}

func TestMilestoneCatchUpFiresHighestOnly(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := baseConfig()
	config.Reminders.EyeRestEnabled = false
	config.Reminders.MovementEnabled = false
	book := Seed(start)

	// A restored snapshot can land mid-session past several milestones.
	// Only one fires per tick, lowest first.
	now := start.Add(65 * time.Minute)
	fired, book := Evaluate(now, now.Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, 30*time.Minute, fired[0].Milestone)

	fired, _ = Evaluate(now.Add(time.Second), now.Add(time.Second).Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, 60*time.Minute, fired[0].Milestone)
}

func TestMilestonesOnlyInStopwatchMode(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := baseConfig()
	config.Mode = model.ModePomodoro
	config.Reminders.EyeRestEnabled = false
	config.Reminders.MovementEnabled = false
	book := Seed(start)

	now := start.Add(30 * time.Minute)
	fired, _ := Evaluate(now, now.Sub(start), book, config)
	assert.Empty(t, fired)
}

func TestIntervalBreaksCount(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := baseConfig()
	config.Mode = model.ModeCustom
	config.Reminders.EyeRestEnabled = false
	config.Reminders.MovementEnabled = false
	config.Custom = model.CustomConfig{
		Style:         model.CustomEnhancedStopwatch,
		BreakInterval: 45 * time.Minute,
	}
	book := Seed(start)

	first := start.Add(45 * time.Minute)
	fired, book := Evaluate(first, first.Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, KindIntervalBreak, fired[0].Kind)
	assert.Equal(t, 1, book.IntervalBreaks)

	second := first.Add(45 * time.Minute)
	fired, book = Evaluate(second, second.Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, 2, book.IntervalBreaks)
}

func TestTargetReachedFiresOnce(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	config := baseConfig()
	config.Mode = model.ModeCustom
	config.Reminders.EyeRestEnabled = false
	config.Reminders.MovementEnabled = false
	config.Custom = model.CustomConfig{
		Style:          model.CustomEnhancedStopwatch,
		TargetDuration: 2 * time.Hour,
	}
	book := Seed(start)

	now := start.Add(2 * time.Hour)
	fired, book := Evaluate(now, now.Sub(start), book, config)
	require.Len(t, fired, 1)
	assert.Equal(t, KindTargetReached, fired[0].Kind)
	assert.True(t, book.TargetReached)

	later := now.Add(time.Minute)
	fired, _ = Evaluate(later, later.Sub(start), book, config)
	assert.Empty(t, fired)
}
