// Package gateway abstracts session durability behind a single
// interface with two implementations: a REST client for a workspace
// backend and a local SQLite store for standalone use.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeclock/internal/core/model"
)

// ErrNotFound indicates the referenced session or break does not exist.
var ErrNotFound = errors.New("session not found")

// ErrInvalid indicates the operation does not apply to the session's
// current state (e.g. resuming a running session).
var ErrInvalid = errors.New("invalid session operation")

// ChainSummary describes a resume-linked chain of sessions treated as
// one continuous work block for threshold evaluation.
type ChainSummary struct {
	Sessions      int
	TotalDuration time.Duration
	ChainStart    time.Time
}

// ThresholdError signals that a pause or stop would let a session (or
// its resume chain) silently exceed the workspace time threshold. It is
// a control-flow signal routed to the threshold guard, not a failure.
type ThresholdError struct {
	Chain *ChainSummary
}

func (err *ThresholdError) Error() string {
	return "session exceeds workspace time threshold"
}

// TransientError wraps network-level failures that are safe to retry.
type TransientError struct {
	Err error
}

func (err *TransientError) Error() string {
	return fmt.Sprintf("gateway temporarily unavailable: %v", err.Err)
}

func (err *TransientError) Unwrap() error { return err.Err }

// IsTransient reports whether err is a retryable gateway failure.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// BreakRequest optionally tags the break opened by a pause.
type BreakRequest struct {
	TypeID   string
	TypeName string
}

// BackfillRequest disposes of an oversized session by recording a
// corrected "missed" entry in its place. When AsBreak is set the
// backfill was triggered by a pause, and the gateway leaves behind a
// fresh paused session with an open break.
type BackfillRequest struct {
	SessionID string
	Title     string
	StartTime time.Time
	EndTime   time.Time
	AsBreak   bool
	BreakType string
}

// Gateway owns session durability. Implementations must reject
// transitions that do not match the session's persisted state.
type Gateway interface {
	CreateSession(ctx context.Context, descriptor model.SessionDescriptor) (*model.Session, error)
	PauseSession(ctx context.Context, sessionID string, breakReq BreakRequest) (*model.Session, error)
	ResumeSession(ctx context.Context, sessionID string) (*model.Session, error)
	StopSession(ctx context.Context, sessionID string) (*model.Session, error)

	// ApproveSession marks the session as pending approval so a
	// subsequent pause/stop bypasses the threshold check.
	ApproveSession(ctx context.Context, sessionID string) error
	DiscardSession(ctx context.Context, sessionID string) error
	BackfillSession(ctx context.Context, req BackfillRequest) (*model.Session, error)

	RunningSession(ctx context.Context) (*model.Session, error)
	PausedSession(ctx context.Context) (*model.Session, error)
	ActiveBreak(ctx context.Context, sessionID string) (*model.Break, error)
}
