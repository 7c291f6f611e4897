// Package reminder decides, from elapsed time and bookkeeping alone,
// which break or milestone notifications are due on a given tick.
package reminder

import (
	"fmt"
	"time"

	"timeclock/internal/core/model"
)

// Kind classifies a fired reminder.
type Kind string

const (
	KindEyeRest       Kind = "eye_rest"
	KindMovement      Kind = "movement"
	KindMilestone     Kind = "milestone"
	KindIntervalBreak Kind = "interval_break"
	KindTargetReached Kind = "target_reached"
)

// Event is a single reminder due on this tick.
type Event struct {
	Kind      Kind
	Message   string
	Milestone time.Duration
	At        time.Time
}

// Config is the slice of tracker configuration the evaluator needs.
type Config struct {
	Mode      model.Mode
	Reminders model.ReminderConfig
	Custom    model.CustomConfig
}

// Milestones lists the stopwatch elapsed-time marks that fire once each.
var Milestones = []time.Duration{
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
	180 * time.Minute,
	240 * time.Minute,
}

// Evaluate inspects the current tick and returns the reminders that
// should fire together with the updated bookkeeping. Each fired
// reminder advances exactly one bookkeeping field, so a reminder of a
// given kind can never fire twice without that field being reset in
// between. Eye-rest and movement reminders additionally share a global
// notification cooldown: while it is active the condition is left
// untouched, so the reminder fires once the cooldown clears.
func Evaluate(now time.Time, elapsed time.Duration, book model.BreakBook, config Config) ([]Event, model.BreakBook) {
	var fired []Event

	cooldownOver := func() bool {
		if config.Reminders.Cooldown <= 0 {
			return true
		}
		return book.LastNotification.IsZero() ||
			now.Sub(book.LastNotification) >= config.Reminders.Cooldown
	}

	if config.Reminders.EyeRestEnabled && config.Reminders.EyeRestInterval > 0 &&
		!book.LastEyeBreak.IsZero() &&
		now.Sub(book.LastEyeBreak) > config.Reminders.EyeRestInterval &&
		cooldownOver() {
		book.LastEyeBreak = now
		book.LastNotification = now
		fired = append(fired, Event{
			Kind:    KindEyeRest,
			Message: "Time to rest your eyes for a moment.",
			At:      now,
		})
	}

	if config.Reminders.MovementEnabled && config.Reminders.MovementInterval > 0 &&
		!book.LastMovementBreak.IsZero() &&
		now.Sub(book.LastMovementBreak) > config.Reminders.MovementInterval &&
		cooldownOver() {
		book.LastMovementBreak = now
		book.LastNotification = now
		fired = append(fired, Event{
			Kind:    KindMovement,
			Message: "Stand up and move around for a bit.",
			At:      now,
		})
	}

	if config.Mode == model.ModeStopwatch && config.Reminders.MilestonesEnabled {
		for _, milestone := range Milestones {
			if elapsed >= milestone && book.LastMilestone < milestone {
				book.LastMilestone = milestone
				fired = append(fired, Event{
					Kind:      KindMilestone,
					Message:   fmt.Sprintf("You have been working for %d minutes.", int(milestone.Minutes())),
					Milestone: milestone,
					At:        now,
				})
				break
			}
		}
	}

	if config.Mode == model.ModeCustom && config.Custom.Style == model.CustomEnhancedStopwatch {
		if config.Custom.BreakInterval > 0 && !book.LastIntervalBreak.IsZero() &&
			now.Sub(book.LastIntervalBreak) >= config.Custom.BreakInterval {
			book.LastIntervalBreak = now
			book.IntervalBreaks++
			fired = append(fired, Event{
				Kind:    KindIntervalBreak,
				Message: fmt.Sprintf("Interval break %d: take a short pause.", book.IntervalBreaks),
				At:      now,
			})
		}

		if config.Custom.TargetDuration > 0 && !book.TargetReached &&
			elapsed >= config.Custom.TargetDuration {
			book.TargetReached = true
			fired = append(fired, Event{
				Kind:    KindTargetReached,
				Message: fmt.Sprintf("Target of %d minutes reached.", int(config.Custom.TargetDuration.Minutes())),
				At:      now,
			})
		}
	}

	return fired, book
}

// Seed initializes the bookkeeping for a session starting now so the
// first reminders are measured from the session start, not from zero.
func Seed(now time.Time) model.BreakBook {
	return model.BreakBook{
		LastEyeBreak:      now,
		LastMovementBreak: now,
		LastIntervalBreak: now,
	}
}
