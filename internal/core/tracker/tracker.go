// Package tracker drives the work-session state machine: one session at
// a time moving between idle, running, and paused, with per-mode clock
// behavior, break reminders, and a guard for oversized sessions.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"timeclock/internal/core/model"
	"timeclock/internal/core/reminder"
	"timeclock/internal/gateway"
)

// ErrOperationInFlight rejects an operation while the same operation is
// still waiting on the gateway.
var ErrOperationInFlight = errors.New("operation already in flight")

// ErrInvalidTransition rejects an operation that does not apply to the
// tracker's current status.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrGuardPending rejects session operations while a threshold guard
// awaits a decision.
var ErrGuardPending = errors.New("threshold guard awaiting decision")

// ErrIdleUnsupported is returned by idle checkers on platforms where
// idle time cannot be measured.
var ErrIdleUnsupported = errors.New("idle detection not supported")

const (
	opStart   = "start"
	opPause   = "pause"
	opResume  = "resume"
	opStop    = "stop"
	opResolve = "resolve"
)

const completionFlash = 3 * time.Second

// SnapshotStore persists one snapshot per mode across restarts.
type SnapshotStore interface {
	Load(mode model.Mode) (model.ModeSnapshot, bool, error)
	Save(snap model.ModeSnapshot) error
	Clear(mode model.Mode) error
}

// Notifier delivers a user-facing notification.
type Notifier interface {
	Notify(title, message string)
}

// SoundPlayer plays the reminder chime.
type SoundPlayer interface {
	Play()
}

// IdleChecker reports how long the machine has been without input.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Tracker is the session timer controller. All state is guarded by mu;
// gateway calls happen outside the lock and their responses are
// discarded if the session changed underneath them.
type Tracker struct {
	gateway   gateway.Gateway
	snapshots SnapshotStore
	notifier  Notifier
	sound     SoundPlayer
	idle      IdleChecker
	log       *zap.SugaredLogger
	now       func() time.Time

	mu       sync.Mutex
	config   model.TrackerConfig
	status   Status
	session  *model.Session
	strategy strategy
	book     model.BreakBook

	startedAt   time.Time
	accumulated time.Duration
	lastTick    time.Time

	breakType    string
	breakStarted time.Time

	inFlight     map[string]bool
	pendingGuard *GuardRequest
	lastStopped  *model.Session

	justCompleted bool
	idleTripped   bool
	idleChecking  bool
	lastIdleCheck time.Time

	events    []chan Event
	stopCh    chan struct{}
	closeOnce sync.Once
}

// Option configures optional tracker collaborators.
type Option func(*Tracker)

// WithNotifier wires the notification sink.
func WithNotifier(notifier Notifier) Option {
	return func(tracker *Tracker) { tracker.notifier = notifier }
}

// WithSound wires the reminder chime.
func WithSound(sound SoundPlayer) Option {
	return func(tracker *Tracker) { tracker.sound = sound }
}

// WithIdleChecker wires platform idle detection.
func WithIdleChecker(idle IdleChecker) Option {
	return func(tracker *Tracker) { tracker.idle = idle }
}

// New creates a tracker in the idle state.
func New(gw gateway.Gateway, snapshots SnapshotStore, config model.TrackerConfig, log *zap.SugaredLogger, options ...Option) *Tracker {
	tracker := &Tracker{
		gateway:   gw,
		snapshots: snapshots,
		log:       log,
		now:       time.Now,
		config:    config,
		strategy:  newStrategy(config),
		inFlight:  make(map[string]bool),
		stopCh:    make(chan struct{}),
	}
	for _, option := range options {
		option(tracker)
	}
	return tracker
}

// Bootstrap restores the current mode's snapshot and adopts any session
// the gateway still considers active, so a restart resumes where the
// user left off.
func (tracker *Tracker) Bootstrap(ctx context.Context) error {
	tracker.mu.Lock()
	tracker.restoreSnapshotLocked(tracker.config.Mode)
	tracker.mu.Unlock()

	session, err := tracker.gateway.RunningSession(ctx)
	if err != nil {
		if gateway.IsTransient(err) {
			tracker.log.Warnw("gateway unreachable during bootstrap, starting idle", "error", err)
			return nil
		}
		return fmt.Errorf("query running session: %w", err)
	}
	if session == nil {
		if session, err = tracker.gateway.PausedSession(ctx); err != nil {
			if gateway.IsTransient(err) {
				tracker.log.Warnw("gateway unreachable during bootstrap, starting idle", "error", err)
				return nil
			}
			return fmt.Errorf("query paused session: %w", err)
		}
	}
	if session == nil {
		return nil
	}

	var activeBreak *model.Break
	if session.Status == model.SessionPaused {
		if activeBreak, err = tracker.gateway.ActiveBreak(ctx, session.ID); err != nil {
			tracker.log.Warnw("could not load active break", "session", session.ID, "error", err)
		}
	}

	tracker.mu.Lock()
	tracker.adoptLocked(session, activeBreak)
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()
	tracker.log.Infow("adopted existing session", "session", session.ID, "status", session.Status)
	return nil
}

// adoptLocked installs a gateway session as the tracker's current one.
func (tracker *Tracker) adoptLocked(session *model.Session, activeBreak *model.Break) {
	now := tracker.now()
	tracker.session = session
	tracker.accumulated = session.Duration
	tracker.lastTick = now
	tracker.book = reminder.Seed(now)

	switch session.Status {
	case model.SessionRunning:
		tracker.status = StatusRunning
		if session.Duration == 0 {
			tracker.accumulated = 0
			tracker.startedAt = session.StartTime
		} else {
			tracker.startedAt = now
		}
	case model.SessionPaused:
		tracker.status = StatusPaused
		if activeBreak != nil {
			tracker.breakType = activeBreak.Type
			tracker.breakStarted = activeBreak.Start
		} else {
			tracker.breakStarted = now
		}
	default:
		tracker.status = StatusIdle
		tracker.session = nil
	}
}

// Start begins a new session from idle.
func (tracker *Tracker) Start(ctx context.Context, descriptor model.SessionDescriptor) error {
	tracker.mu.Lock()
	if tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return ErrGuardPending
	}
	if tracker.status != StatusIdle {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidTransition, tracker.status)
	}
	if tracker.inFlight[opStart] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opStart] = true
	tracker.mu.Unlock()

	session, err := tracker.gateway.CreateSession(ctx, descriptor)

	tracker.mu.Lock()
	delete(tracker.inFlight, opStart)
	if err != nil {
		tracker.mu.Unlock()
		return fmt.Errorf("create session: %w", err)
	}

	now := tracker.now()
	tracker.session = session
	tracker.status = StatusRunning
	tracker.startedAt = now
	tracker.accumulated = 0
	tracker.lastTick = now
	tracker.book = reminder.Seed(now)
	tracker.justCompleted = false
	tracker.idleTripped = false
	tracker.strategy.begin()
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()

	tracker.log.Infow("session started", "session", session.ID, "title", session.Title)
	return nil
}

// Pause suspends the running session, opening a break on the gateway.
// A threshold rejection parks the operation behind a guard instead of
// failing outright.
func (tracker *Tracker) Pause(ctx context.Context, breakReq gateway.BreakRequest) error {
	tracker.mu.Lock()
	if tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return ErrGuardPending
	}
	if tracker.status != StatusRunning {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidTransition, tracker.status)
	}
	if tracker.inFlight[opPause] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opPause] = true
	sessionID := tracker.session.ID
	tracker.mu.Unlock()

	updated, err := tracker.gateway.PauseSession(ctx, sessionID, breakReq)

	tracker.mu.Lock()
	delete(tracker.inFlight, opPause)
	if stale := tracker.session == nil || tracker.session.ID != sessionID; stale {
		tracker.mu.Unlock()
		tracker.log.Warnw("discarding stale pause response", "session", sessionID)
		return nil
	}
	if err != nil {
		defer tracker.mu.Unlock()
		var threshold *gateway.ThresholdError
		if errors.As(err, &threshold) {
			tracker.pendingGuard = &GuardRequest{
				Op:        GuardOpPause,
				SessionID: sessionID,
				Chain:     threshold.Chain,
				Break:     breakReq,
				RaisedAt:  tracker.now(),
			}
			tracker.emitLocked(EventGuardPending)
			return err
		}
		return fmt.Errorf("pause session: %w", err)
	}

	if updated != nil {
		tracker.session = updated
	}
	tracker.enterPausedLocked(tracker.now(), breakLabel(breakReq))
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()
	tracker.log.Infow("session paused", "session", sessionID)
	return nil
}

// Resume continues the paused session.
func (tracker *Tracker) Resume(ctx context.Context) error {
	tracker.mu.Lock()
	if tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return ErrGuardPending
	}
	if tracker.status != StatusPaused {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidTransition, tracker.status)
	}
	if tracker.inFlight[opResume] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opResume] = true
	sessionID := tracker.session.ID
	tracker.mu.Unlock()

	updated, err := tracker.gateway.ResumeSession(ctx, sessionID)

	tracker.mu.Lock()
	delete(tracker.inFlight, opResume)
	if stale := tracker.session == nil || tracker.session.ID != sessionID; stale {
		tracker.mu.Unlock()
		tracker.log.Warnw("discarding stale resume response", "session", sessionID)
		return nil
	}
	if err != nil {
		tracker.mu.Unlock()
		return fmt.Errorf("resume session: %w", err)
	}

	now := tracker.now()
	if updated != nil {
		tracker.session = updated
	}
	tracker.status = StatusRunning
	tracker.startedAt = now
	tracker.lastTick = now
	tracker.breakType = ""
	tracker.breakStarted = time.Time{}
	tracker.idleTripped = false
	// The break that just ended counts as an eye and movement rest.
	tracker.book.LastEyeBreak = now
	tracker.book.LastMovementBreak = now
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()
	tracker.log.Infow("session resumed", "session", sessionID)
	return nil
}

// Stop finalizes the running or paused session. Like Pause, a threshold
// rejection raises a guard.
func (tracker *Tracker) Stop(ctx context.Context) error {
	tracker.mu.Lock()
	if tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return ErrGuardPending
	}
	if tracker.status == StatusIdle {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: no session to stop", ErrInvalidTransition)
	}
	if tracker.inFlight[opStop] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opStop] = true
	sessionID := tracker.session.ID
	tracker.mu.Unlock()

	stopped, err := tracker.gateway.StopSession(ctx, sessionID)

	tracker.mu.Lock()
	delete(tracker.inFlight, opStop)
	if stale := tracker.session == nil || tracker.session.ID != sessionID; stale {
		tracker.mu.Unlock()
		tracker.log.Warnw("discarding stale stop response", "session", sessionID)
		return nil
	}
	if err != nil {
		defer tracker.mu.Unlock()
		var threshold *gateway.ThresholdError
		if errors.As(err, &threshold) {
			tracker.pendingGuard = &GuardRequest{
				Op:        GuardOpStop,
				SessionID: sessionID,
				Chain:     threshold.Chain,
				RaisedAt:  tracker.now(),
			}
			tracker.emitLocked(EventGuardPending)
			return err
		}
		return fmt.Errorf("stop session: %w", err)
	}

	pendingApproval := tracker.session.PendingApproval
	if stopped != nil {
		tracker.lastStopped = stopped
		pendingApproval = pendingApproval || stopped.PendingApproval
	}
	if pendingApproval {
		// Sessions stopped under an approval request close quietly,
		// without the completion flash.
		tracker.clearSessionLocked()
	} else {
		tracker.finishSessionLocked(tracker.now())
	}
	tracker.mu.Unlock()
	tracker.log.Infow("session stopped", "session", sessionID)
	return nil
}

// ResumeLast starts a new session chained onto the most recently
// stopped one, preserving its title and threshold accounting.
func (tracker *Tracker) ResumeLast(ctx context.Context) error {
	tracker.mu.Lock()
	if tracker.status != StatusIdle || tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: cannot continue a session while one is active", ErrInvalidTransition)
	}
	last := tracker.lastStopped
	if last == nil {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: no stopped session to continue", ErrInvalidTransition)
	}
	if tracker.inFlight[opStart] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opStart] = true
	tracker.mu.Unlock()

	session, err := tracker.gateway.ResumeSession(ctx, last.ID)

	tracker.mu.Lock()
	delete(tracker.inFlight, opStart)
	if err != nil {
		tracker.mu.Unlock()
		return fmt.Errorf("continue last session: %w", err)
	}
	tracker.adoptLocked(session, nil)
	tracker.strategy.begin()
	tracker.justCompleted = false
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()
	tracker.log.Infow("continued last session", "session", session.ID, "resumedFrom", last.ID)
	return nil
}

// ContinuePomodoro leaves the awaiting-action state by entering the
// parked segment. It is a no-op in other modes.
func (tracker *Tracker) ContinuePomodoro() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	pomodoro, ok := tracker.strategy.(*pomodoroStrategy)
	if !ok || !pomodoro.continueParked() {
		return
	}
	tracker.saveSnapshotLocked()
	tracker.emitLocked(EventSegmentChange)
}

// SwitchMode changes the timer mode. The outgoing mode's state is
// snapshotted and the incoming mode's snapshot is restored verbatim.
// Switching is only allowed without an active session.
func (tracker *Tracker) SwitchMode(mode model.Mode) error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.status != StatusIdle {
		return fmt.Errorf("%w: cannot switch modes during an active session", ErrInvalidTransition)
	}
	if mode == tracker.config.Mode {
		return nil
	}

	tracker.saveSnapshotLocked()
	tracker.config.Mode = mode
	tracker.strategy = newStrategy(tracker.config)
	tracker.book = model.BreakBook{}
	tracker.restoreSnapshotLocked(mode)
	tracker.emitLocked(EventStateChange)
	tracker.log.Infow("mode switched", "mode", mode)
	return nil
}

// UpdateConfig replaces the tracker configuration. Settings are locked
// while a session is active.
func (tracker *Tracker) UpdateConfig(config model.TrackerConfig) error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.status != StatusIdle {
		return fmt.Errorf("%w: settings are locked during an active session", ErrInvalidTransition)
	}

	var snap model.ModeSnapshot
	tracker.strategy.snapshot(&snap)
	config.Mode = tracker.config.Mode
	tracker.config = config
	tracker.strategy = newStrategy(config)
	tracker.strategy.restore(&snap)
	return nil
}

// Protection reports what the UI may change in the current state.
func (tracker *Tracker) Protection() model.SessionProtection {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	idle := tracker.status == StatusIdle && tracker.pendingGuard == nil
	return model.SessionProtection{
		IsActive:          tracker.status != StatusIdle,
		CurrentMode:       tracker.config.Mode,
		CanSwitchModes:    idle,
		CanModifySettings: idle,
	}
}

// Config returns a copy of the current configuration.
func (tracker *Tracker) Config() model.TrackerConfig {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.config
}

// Session returns the current session, or nil when idle.
func (tracker *Tracker) Session() *model.Session {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.session
}

// Status returns the tracker's lifecycle status.
func (tracker *Tracker) Status() Status {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.status
}

// BreakInfo returns the type and start of the current break while
// paused.
func (tracker *Tracker) BreakInfo() (string, time.Time) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.breakType, tracker.breakStarted
}

// Subscribe returns a channel of tracker events. Slow subscribers drop
// events rather than block the tick loop.
func (tracker *Tracker) Subscribe(buffer int) <-chan Event {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	channel := make(chan Event, buffer)
	tracker.events = append(tracker.events, channel)
	return channel
}

// Run drives the one-second tick loop until ctx is canceled or Close is
// called.
func (tracker *Tracker) Run(ctx context.Context) {
	go tracker.runSync(ctx)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tracker.stopCh:
			return
		case tickTime := <-ticker.C:
			tracker.tick(tickTime)
		}
	}
}

// Close stops the tick loop and saves the current mode snapshot.
func (tracker *Tracker) Close() {
	tracker.closeOnce.Do(func() {
		close(tracker.stopCh)
		tracker.mu.Lock()
		tracker.saveSnapshotLocked()
		tracker.mu.Unlock()
	})
}

// tick advances the clock by one beat. Elapsed time is derived from
// wall-clock anchors, so a missed or duplicated tick never skews it.
func (tracker *Tracker) tick(now time.Time) {
	tracker.mu.Lock()
	if tracker.status != StatusRunning {
		tracker.mu.Unlock()
		return
	}

	delta := now.Sub(tracker.lastTick)
	if delta < 0 {
		delta = 0
	}
	tracker.lastTick = now
	elapsed := tracker.elapsedLocked(now)

	var notices []reminder.Event

	advanced := tracker.strategy.advance(delta, elapsed)
	switch advanced {
	case outcomeSegmentChange:
		tracker.emitLocked(EventSegmentChange)
		notices = append(notices, segmentNotice(tracker.strategy, now))
	case outcomeAwaitAction:
		tracker.emitLocked(EventAwaitingAction)
		notices = append(notices, reminder.Event{
			Kind:    reminder.KindIntervalBreak,
			Message: "Segment finished. Ready to continue?",
			At:      now,
		})
	case outcomeCompleted:
		tracker.emitLocked(EventCompleted)
		notices = append(notices, reminder.Event{
			Kind:    reminder.KindTargetReached,
			Message: "Timer finished.",
			At:      now,
		})
	}

	fired, book := reminder.Evaluate(now, elapsed, tracker.book, reminder.Config{
		Mode:      tracker.config.Mode,
		Reminders: tracker.config.Reminders,
		Custom:    tracker.config.Custom,
	})
	tracker.book = book
	for index := range fired {
		event := tracker.eventLocked(EventReminder)
		event.Reminder = &fired[index]
		tracker.sendLocked(event)
	}
	notices = append(notices, fired...)

	tracker.emitLocked(EventTick)
	if advanced != outcomeNone {
		tracker.saveSnapshotLocked()
	}
	tracker.maybeCheckIdleLocked(now)
	tracker.mu.Unlock()

	for _, notice := range notices {
		tracker.notify("Timeclock", notice.Message)
	}
}

func (tracker *Tracker) elapsedLocked(now time.Time) time.Duration {
	if tracker.status == StatusRunning {
		return tracker.accumulated + now.Sub(tracker.startedAt)
	}
	return tracker.accumulated
}

// Elapsed returns the session's accrued work time, excluding breaks.
func (tracker *Tracker) Elapsed() time.Duration {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.elapsedLocked(tracker.now())
}

// CurrentDisplay returns what the clock face should show right now.
func (tracker *Tracker) CurrentDisplay() Display {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.strategy.display(tracker.elapsedLocked(tracker.now()))
}

func (tracker *Tracker) enterPausedLocked(now time.Time, breakType string) {
	tracker.accumulated += now.Sub(tracker.startedAt)
	tracker.status = StatusPaused
	tracker.breakType = breakType
	tracker.breakStarted = now
	tracker.saveSnapshotLocked()
}

// finishSessionLocked moves to idle after a successful stop, keeping a
// short-lived completion flag so the UI can flash the result.
func (tracker *Tracker) finishSessionLocked(now time.Time) {
	tracker.clearSessionLocked()
	tracker.justCompleted = true
	tracker.emitLocked(EventCompleted)
	time.AfterFunc(completionFlash, func() {
		tracker.mu.Lock()
		tracker.justCompleted = false
		tracker.emitLocked(EventStateChange)
		tracker.mu.Unlock()
	})
}

func (tracker *Tracker) clearSessionLocked() {
	tracker.session = nil
	tracker.status = StatusIdle
	tracker.accumulated = 0
	tracker.startedAt = time.Time{}
	tracker.breakType = ""
	tracker.breakStarted = time.Time{}
	tracker.book = model.BreakBook{}
	tracker.saveSnapshotLocked()
	tracker.emitLocked(EventStateChange)
}

// JustCompleted reports whether a session stopped within the last few
// seconds, for the completion flash.
func (tracker *Tracker) JustCompleted() bool {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.justCompleted
}

// LastStopped returns the most recently stopped session, or nil.
func (tracker *Tracker) LastStopped() *model.Session {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.lastStopped
}

func (tracker *Tracker) saveSnapshotLocked() {
	if tracker.snapshots == nil {
		return
	}
	snap := model.ModeSnapshot{
		Mode:    tracker.config.Mode,
		Elapsed: tracker.accumulated,
		Breaks:  tracker.book,
		SavedAt: tracker.now(),
	}
	if tracker.session != nil {
		snap.SessionID = tracker.session.ID
	}
	tracker.strategy.snapshot(&snap)
	if err := tracker.snapshots.Save(snap); err != nil {
		tracker.log.Warnw("could not save mode snapshot", "mode", snap.Mode, "error", err)
	}
}

func (tracker *Tracker) restoreSnapshotLocked(mode model.Mode) {
	if tracker.snapshots == nil {
		return
	}
	snap, found, err := tracker.snapshots.Load(mode)
	if err != nil {
		tracker.log.Warnw("could not load mode snapshot", "mode", mode, "error", err)
		return
	}
	if !found {
		return
	}
	tracker.book = snap.Breaks
	tracker.strategy.restore(&snap)
}

// maybeCheckIdleLocked spawns an idle probe at the configured interval.
// The probe runs off the tick loop because platform idle queries can
// shell out.
func (tracker *Tracker) maybeCheckIdleLocked(now time.Time) {
	if tracker.idle == nil || !tracker.config.IdleResetEnabled || tracker.idleChecking {
		return
	}
	interval := tracker.config.IdleCheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if now.Sub(tracker.lastIdleCheck) < interval {
		return
	}
	tracker.lastIdleCheck = now
	tracker.idleChecking = true

	go func() {
		idleFor, err := tracker.idle.IdleDuration()

		tracker.mu.Lock()
		tracker.idleChecking = false
		if err != nil {
			tracker.mu.Unlock()
			if errors.Is(err, ErrIdleUnsupported) {
				tracker.disableIdleChecks()
			} else {
				tracker.log.Warnw("idle check failed", "error", err)
			}
			return
		}
		threshold := tracker.config.IdleResetAfter
		trip := tracker.status == StatusRunning && threshold > 0 && idleFor >= threshold && !tracker.idleTripped
		if !trip {
			if idleFor < threshold {
				tracker.idleTripped = false
			}
			tracker.mu.Unlock()
			return
		}
		tracker.idleTripped = true
		tracker.emitLocked(EventIdleReset)
		tracker.mu.Unlock()

		tracker.log.Infow("pausing idle session", "idle", idleFor)
		if err := tracker.Pause(context.Background(), gateway.BreakRequest{TypeName: "idle"}); err != nil {
			tracker.log.Warnw("idle pause failed", "error", err)
		}
	}()
}

func (tracker *Tracker) disableIdleChecks() {
	tracker.mu.Lock()
	tracker.idle = nil
	tracker.mu.Unlock()
	tracker.log.Infow("idle detection unavailable, disabling idle checks")
}

func (tracker *Tracker) eventLocked(eventType EventType) Event {
	now := tracker.now()
	event := Event{
		Type:    eventType,
		Status:  tracker.status,
		Mode:    tracker.config.Mode,
		Session: tracker.session,
		Display: tracker.strategy.display(tracker.elapsedLocked(now)),
		Guard:   tracker.pendingGuard,
		At:      now,
	}
	if pomodoro, ok := tracker.strategy.(*pomodoroStrategy); ok {
		event.Segment = pomodoro.segment
	}
	return event
}

func (tracker *Tracker) emitLocked(eventType EventType) {
	tracker.sendLocked(tracker.eventLocked(eventType))
}

func (tracker *Tracker) sendLocked(event Event) {
	for _, channel := range tracker.events {
		select {
		case channel <- event:
		default:
		}
	}
}

func (tracker *Tracker) notify(title, message string) {
	if tracker.notifier != nil {
		tracker.notifier.Notify(title, message)
	}
	if tracker.sound != nil {
		tracker.sound.Play()
	}
}

func breakLabel(breakReq gateway.BreakRequest) string {
	if breakReq.TypeName != "" {
		return breakReq.TypeName
	}
	return breakReq.TypeID
}

func segmentNotice(current strategy, now time.Time) reminder.Event {
	message := "Countdown restarted."
	if pomodoro, ok := current.(*pomodoroStrategy); ok {
		switch pomodoro.segment {
		case model.SegmentFocus:
			message = "Break over. Back to focus."
		case model.SegmentShortBreak:
			message = "Focus done. Take a short break."
		case model.SegmentLongBreak:
			message = "Cycle complete. Take a long break."
		}
	}
	return reminder.Event{Kind: reminder.KindIntervalBreak, Message: message, At: now}
}
