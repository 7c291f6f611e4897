package tracker

import (
	"context"
	"fmt"
	"time"

	"timeclock/internal/core/model"
	"timeclock/internal/gateway"
)

// GuardOp names the operation that tripped the threshold guard.
type GuardOp string

const (
	GuardOpPause GuardOp = "pause"
	GuardOpStop  GuardOp = "stop"
)

// GuardRequest is a pause or stop held back because the session's
// resume chain exceeds the workspace time threshold. It stays pending
// until the user picks a resolution.
type GuardRequest struct {
	Op        GuardOp
	SessionID string
	Chain     *gateway.ChainSummary
	Break     gateway.BreakRequest
	RaisedAt  time.Time
}

// ResolutionAction is the user's answer to a pending guard.
type ResolutionAction string

const (
	// ResolutionApprove requests approval for the oversized session and
	// replays the held operation.
	ResolutionApprove ResolutionAction = "approve"
	// ResolutionDiscard deletes the session without a history record.
	ResolutionDiscard ResolutionAction = "discard"
	// ResolutionBackfill replaces the session with a corrected entry.
	ResolutionBackfill ResolutionAction = "backfill"
)

// Resolution carries the user's guard decision. Backfill resolutions
// must supply the corrected time range.
type Resolution struct {
	Action    ResolutionAction
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// PendingGuard returns the guard awaiting a decision, or nil.
func (tracker *Tracker) PendingGuard() *GuardRequest {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.pendingGuard
}

// Resolve applies the user's decision to the pending threshold guard.
func (tracker *Tracker) Resolve(ctx context.Context, resolution Resolution) error {
	tracker.mu.Lock()
	guard := tracker.pendingGuard
	if guard == nil {
		tracker.mu.Unlock()
		return fmt.Errorf("%w: no guard pending", ErrInvalidTransition)
	}
	if tracker.inFlight[opResolve] {
		tracker.mu.Unlock()
		return ErrOperationInFlight
	}
	tracker.inFlight[opResolve] = true
	tracker.mu.Unlock()

	replacement, err := tracker.applyResolution(ctx, guard, resolution)

	tracker.mu.Lock()
	delete(tracker.inFlight, opResolve)
	if err != nil {
		tracker.mu.Unlock()
		return err
	}
	if tracker.session == nil || tracker.session.ID != guard.SessionID {
		// The gateway already applied the resolution; the guard must not
		// outlive the session it was raised for.
		tracker.pendingGuard = nil
		tracker.mu.Unlock()
		tracker.log.Warnw("discarding stale guard resolution", "session", guard.SessionID)
		return nil
	}

	now := tracker.now()
	tracker.pendingGuard = nil
	switch resolution.Action {
	case ResolutionApprove:
		if guard.Op == GuardOpPause {
			tracker.enterPausedLocked(now, guard.Break.TypeName)
		} else {
			// An approved stop closes quietly, no completion flash.
			tracker.clearSessionLocked()
		}
	case ResolutionDiscard:
		tracker.clearSessionLocked()
	case ResolutionBackfill:
		if replacement != nil {
			tracker.session = replacement
			tracker.accumulated = replacement.Duration
			tracker.status = StatusPaused
			tracker.breakType = guard.Break.TypeName
			tracker.breakStarted = now
		} else {
			tracker.clearSessionLocked()
		}
	}
	tracker.emitLocked(EventGuardResolved)
	tracker.emitLocked(EventStateChange)
	tracker.mu.Unlock()
	return nil
}

func (tracker *Tracker) applyResolution(ctx context.Context, guard *GuardRequest, resolution Resolution) (*model.Session, error) {
	switch resolution.Action {
	case ResolutionApprove:
		if err := tracker.gateway.ApproveSession(ctx, guard.SessionID); err != nil {
			return nil, fmt.Errorf("approve session: %w", err)
		}
		var err error
		if guard.Op == GuardOpPause {
			_, err = tracker.gateway.PauseSession(ctx, guard.SessionID, guard.Break)
		} else {
			_, err = tracker.gateway.StopSession(ctx, guard.SessionID)
		}
		if err != nil {
			return nil, fmt.Errorf("replay %s after approval: %w", guard.Op, err)
		}
		return nil, nil

	case ResolutionDiscard:
		if err := tracker.gateway.DiscardSession(ctx, guard.SessionID); err != nil {
			return nil, fmt.Errorf("discard session: %w", err)
		}
		return nil, nil

	case ResolutionBackfill:
		if resolution.EndTime.Before(resolution.StartTime) {
			return nil, fmt.Errorf("%w: backfill end precedes start", ErrInvalidTransition)
		}
		replacement, err := tracker.gateway.BackfillSession(ctx, gateway.BackfillRequest{
			SessionID: guard.SessionID,
			Title:     resolution.Title,
			StartTime: resolution.StartTime,
			EndTime:   resolution.EndTime,
			AsBreak:   guard.Op == GuardOpPause,
			BreakType: guard.Break.TypeName,
		})
		if err != nil {
			return nil, fmt.Errorf("backfill session: %w", err)
		}
		return replacement, nil

	default:
		return nil, fmt.Errorf("%w: unknown resolution %q", ErrInvalidTransition, resolution.Action)
	}
}
