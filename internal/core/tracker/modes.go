package tracker

import (
	"time"

	"timeclock/internal/core/model"
)

// outcome reports what a strategy decided during one tick advance.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeSegmentChange
	outcomeAwaitAction
	outcomeCompleted
)

// strategy is the per-mode behavior behind the tracker's clock face.
// Strategies are driven from the tick loop while the tracker lock is
// held and must not block.
type strategy interface {
	mode() model.Mode
	begin()
	advance(delta, elapsed time.Duration) outcome
	display(elapsed time.Duration) Display
	snapshot(snap *model.ModeSnapshot)
	restore(snap *model.ModeSnapshot)
}

func newStrategy(config model.TrackerConfig) strategy {
	switch config.Mode {
	case model.ModePomodoro:
		return &pomodoroStrategy{config: config.Pomodoro}
	case model.ModeCustom:
		return &customStrategy{config: config.Custom}
	default:
		return &stopwatchStrategy{}
	}
}

// stopwatchStrategy counts elapsed work time upward with no ceiling.
type stopwatchStrategy struct{}

func (strategy *stopwatchStrategy) mode() model.Mode { return model.ModeStopwatch }

func (strategy *stopwatchStrategy) begin() {}

func (strategy *stopwatchStrategy) advance(delta, elapsed time.Duration) outcome {
	return outcomeNone
}

func (strategy *stopwatchStrategy) display(elapsed time.Duration) Display {
	return Display{Value: elapsed}
}

func (strategy *stopwatchStrategy) snapshot(snap *model.ModeSnapshot) {}

func (strategy *stopwatchStrategy) restore(snap *model.ModeSnapshot) {}

// pomodoroStrategy cycles focus and break segments. When auto-start is
// off it parks the next segment and waits for the user to continue.
type pomodoroStrategy struct {
	config         model.PomodoroConfig
	segment        model.PomodoroSegment
	remaining      time.Duration
	sessionInCycle int
	cycleCount     int
	awaiting       bool
	parked         model.PomodoroSegment
}

func (strategy *pomodoroStrategy) mode() model.Mode { return model.ModePomodoro }

// begin starts a new session: a fresh focus segment, with the cycle
// position carried over from earlier sessions.
func (strategy *pomodoroStrategy) begin() {
	if strategy.sessionInCycle == 0 {
		strategy.sessionInCycle = 1
	}
	strategy.segment = model.SegmentFocus
	strategy.remaining = strategy.config.FocusDuration
	strategy.awaiting = false
}

func (strategy *pomodoroStrategy) advance(delta, elapsed time.Duration) outcome {
	if strategy.awaiting {
		return outcomeNone
	}
	strategy.remaining -= delta
	if strategy.remaining > 0 {
		return outcomeNone
	}
	strategy.remaining = 0

	next := strategy.nextSegment()
	if strategy.autoStarts(next) {
		strategy.enter(next)
		return outcomeSegmentChange
	}
	strategy.awaiting = true
	strategy.parked = next
	return outcomeAwaitAction
}

// nextSegment applies the cycle bookkeeping for the segment that just
// finished and returns the segment that follows it.
func (strategy *pomodoroStrategy) nextSegment() model.PomodoroSegment {
	if strategy.segment != model.SegmentFocus {
		return model.SegmentFocus
	}
	if strategy.sessionInCycle >= strategy.config.SessionsUntilLongBreak {
		strategy.cycleCount++
		strategy.sessionInCycle = 1
		return model.SegmentLongBreak
	}
	strategy.sessionInCycle++
	return model.SegmentShortBreak
}

func (strategy *pomodoroStrategy) autoStarts(next model.PomodoroSegment) bool {
	if next == model.SegmentFocus {
		return strategy.config.AutoStartFocus
	}
	return strategy.config.AutoStartBreak
}

func (strategy *pomodoroStrategy) enter(segment model.PomodoroSegment) {
	strategy.segment = segment
	strategy.remaining = strategy.segmentDuration(segment)
	strategy.awaiting = false
}

// continueParked enters the segment parked by a non-auto transition.
func (strategy *pomodoroStrategy) continueParked() bool {
	if !strategy.awaiting {
		return false
	}
	strategy.enter(strategy.parked)
	return true
}

func (strategy *pomodoroStrategy) segmentDuration(segment model.PomodoroSegment) time.Duration {
	switch segment {
	case model.SegmentShortBreak:
		return strategy.config.ShortBreakDuration
	case model.SegmentLongBreak:
		return strategy.config.LongBreakDuration
	default:
		return strategy.config.FocusDuration
	}
}

func (strategy *pomodoroStrategy) display(elapsed time.Duration) Display {
	total := strategy.segmentDuration(strategy.segment)
	progress := 1.0
	if total > 0 && strategy.remaining > 0 {
		progress = 1 - float64(strategy.remaining)/float64(total)
	}
	return Display{Value: strategy.remaining, CountsDown: true, Progress: progress}
}

func (strategy *pomodoroStrategy) snapshot(snap *model.ModeSnapshot) {
	snap.Pomodoro = &model.PomodoroSnapshot{
		Segment:        strategy.segment,
		Remaining:      strategy.remaining,
		SessionInCycle: strategy.sessionInCycle,
		CycleCount:     strategy.cycleCount,
		AwaitingAction: strategy.awaiting,
	}
}

func (strategy *pomodoroStrategy) restore(snap *model.ModeSnapshot) {
	if snap.Pomodoro == nil {
		return
	}
	strategy.segment = snap.Pomodoro.Segment
	strategy.remaining = snap.Pomodoro.Remaining
	strategy.sessionInCycle = snap.Pomodoro.SessionInCycle
	strategy.cycleCount = snap.Pomodoro.CycleCount
	strategy.awaiting = snap.Pomodoro.AwaitingAction
	if strategy.awaiting {
		strategy.parked = strategy.afterCurrent()
	}
}

// afterCurrent recomputes the parked segment without touching the cycle
// counters, which were already advanced before the snapshot was taken.
func (strategy *pomodoroStrategy) afterCurrent() model.PomodoroSegment {
	if strategy.segment != model.SegmentFocus {
		return model.SegmentFocus
	}
	if strategy.sessionInCycle == 1 && strategy.cycleCount > 0 {
		return model.SegmentLongBreak
	}
	return model.SegmentShortBreak
}

// customStrategy implements the two custom timer styles: an enhanced
// stopwatch with a target, and a restartable countdown.
type customStrategy struct {
	config        model.CustomConfig
	targetReached bool
	halted        bool
	remaining     time.Duration
	restartWait   time.Duration
}

func (strategy *customStrategy) mode() model.Mode { return model.ModeCustom }

func (strategy *customStrategy) begin() {
	strategy.targetReached = false
	strategy.halted = false
	strategy.restartWait = 0
	if strategy.config.Style == model.CustomCountdown {
		strategy.remaining = strategy.config.CountdownDuration
	}
}

func (strategy *customStrategy) advance(delta, elapsed time.Duration) outcome {
	if strategy.config.Style == model.CustomCountdown {
		return strategy.advanceCountdown(delta)
	}
	return strategy.advanceStopwatch(elapsed)
}

func (strategy *customStrategy) advanceStopwatch(elapsed time.Duration) outcome {
	if strategy.targetReached || strategy.config.TargetDuration <= 0 {
		return outcomeNone
	}
	if elapsed < strategy.config.TargetDuration {
		return outcomeNone
	}
	strategy.targetReached = true
	if strategy.config.AutoStopAtTarget {
		strategy.halted = true
		return outcomeCompleted
	}
	return outcomeNone
}

func (strategy *customStrategy) advanceCountdown(delta time.Duration) outcome {
	if strategy.halted {
		if !strategy.config.AutoRestart {
			return outcomeNone
		}
		strategy.restartWait -= delta
		if strategy.restartWait > 0 {
			return outcomeNone
		}
		strategy.halted = false
		strategy.remaining = strategy.config.CountdownDuration
		return outcomeSegmentChange
	}

	strategy.remaining -= delta
	if strategy.remaining > 0 {
		return outcomeNone
	}
	strategy.remaining = 0
	strategy.halted = true
	strategy.restartWait = strategy.config.RestartDelay
	return outcomeCompleted
}

func (strategy *customStrategy) display(elapsed time.Duration) Display {
	if strategy.config.Style == model.CustomCountdown {
		total := strategy.config.CountdownDuration
		progress := 1.0
		if total > 0 && strategy.remaining > 0 {
			progress = 1 - float64(strategy.remaining)/float64(total)
		}
		return Display{Value: strategy.remaining, CountsDown: true, Progress: progress}
	}

	value := elapsed
	if strategy.halted && strategy.config.TargetDuration > 0 && value > strategy.config.TargetDuration {
		value = strategy.config.TargetDuration
	}
	progress := 0.0
	if strategy.config.TargetDuration > 0 {
		progress = float64(value) / float64(strategy.config.TargetDuration)
		if progress > 1 {
			progress = 1
		}
	}
	return Display{Value: value, Progress: progress}
}

func (strategy *customStrategy) snapshot(snap *model.ModeSnapshot) {
	progress := 0.0
	if strategy.config.TargetDuration > 0 {
		progress = float64(snap.Elapsed) / float64(strategy.config.TargetDuration)
	}
	snap.Custom = &model.CustomSnapshot{
		TargetReached:      strategy.targetReached,
		Progress:           progress,
		CountdownRemaining: strategy.remaining,
	}
}

func (strategy *customStrategy) restore(snap *model.ModeSnapshot) {
	if snap.Custom == nil {
		return
	}
	strategy.targetReached = snap.Custom.TargetReached
	strategy.remaining = snap.Custom.CountdownRemaining
}
