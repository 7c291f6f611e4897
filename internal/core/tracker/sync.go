package tracker

import (
	"context"
	"time"

	"timeclock/internal/gateway"
)

const (
	defaultSyncInterval = 30 * time.Second
	maxSyncBackoff      = 5 * time.Minute
)

// runSync periodically reconciles local state with the gateway so a
// session started, resumed, or stopped from another client shows up
// here. Transient gateway failures back off exponentially.
func (tracker *Tracker) runSync(ctx context.Context) {
	interval := defaultSyncInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tracker.stopCh:
			return
		case <-timer.C:
		}

		err := tracker.syncOnce(ctx)
		switch {
		case err == nil:
			interval = defaultSyncInterval
		case gateway.IsTransient(err):
			interval *= 2
			if interval > maxSyncBackoff {
				interval = maxSyncBackoff
			}
			tracker.log.Warnw("sync failed, backing off", "retryIn", interval, "error", err)
		default:
			tracker.log.Warnw("sync failed", "error", err)
		}
		timer.Reset(interval)
	}
}

// syncOnce pulls the gateway's view of the active session and adjusts
// local state to match. It stands down whenever a user operation or a
// guard decision is underway.
func (tracker *Tracker) syncOnce(ctx context.Context) error {
	tracker.mu.Lock()
	if len(tracker.inFlight) > 0 || tracker.pendingGuard != nil {
		tracker.mu.Unlock()
		return nil
	}
	tracker.mu.Unlock()

	remote, err := tracker.gateway.RunningSession(ctx)
	if err != nil {
		return err
	}
	if remote == nil {
		if remote, err = tracker.gateway.PausedSession(ctx); err != nil {
			return err
		}
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if len(tracker.inFlight) > 0 || tracker.pendingGuard != nil {
		return nil
	}

	local := tracker.session
	switch {
	case remote == nil && local == nil:
		return nil

	case remote == nil:
		tracker.log.Infow("session ended remotely", "session", local.ID)
		tracker.clearSessionLocked()

	case local == nil || local.ID != remote.ID:
		tracker.log.Infow("adopting remote session", "session", remote.ID, "status", remote.Status)
		tracker.adoptLocked(remote, nil)
		tracker.emitLocked(EventStateChange)

	case tracker.status.String() != string(remote.Status):
		tracker.log.Infow("session state changed remotely",
			"session", remote.ID, "from", tracker.status, "to", remote.Status)
		tracker.adoptLocked(remote, nil)
		tracker.emitLocked(EventStateChange)
	}
	return nil
}
