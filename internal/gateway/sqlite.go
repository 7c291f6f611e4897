package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"timeclock/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category_id      TEXT NOT NULL DEFAULT '',
	task_id          TEXT NOT NULL DEFAULT '',
	start_time       TIMESTAMP NOT NULL,
	last_started     TIMESTAMP NOT NULL,
	end_time         TIMESTAMP,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL,
	pending_approval INTEGER NOT NULL DEFAULT 0,
	resumed_from     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS breaks (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	break_type  TEXT NOT NULL DEFAULT '',
	break_start TIMESTAMP NOT NULL,
	break_end   TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_breaks_session ON breaks(session_id);
`

// Store is a local session gateway backed by SQLite, used when the
// application runs without a workspace backend.
type Store struct {
	db        *sql.DB
	threshold model.ThresholdPolicy
	now       func() time.Time
}

// OpenStore opens (creating if necessary) the SQLite database at path.
func OpenStore(path string, threshold model.ThresholdPolicy) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, threshold: threshold, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (store *Store) Close() error {
	return store.db.Close()
}

// CreateSession inserts a new running session. Only one session may be
// running or paused at a time.
func (store *Store) CreateSession(ctx context.Context, descriptor model.SessionDescriptor) (*model.Session, error) {
	active, err := store.activeSession(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("%w: a session is already active", ErrInvalid)
	}

	now := store.now().UTC()
	session := &model.Session{
		ID:          uuid.NewString(),
		Title:       descriptor.Title,
		Description: descriptor.Description,
		CategoryID:  descriptor.CategoryID,
		TaskID:      descriptor.TaskID,
		StartTime:   now,
		Status:      model.SessionRunning,
	}
	_, err = store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, description, category_id, task_id, start_time, last_started, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Title, session.Description, session.CategoryID,
		session.TaskID, now, now, string(model.SessionRunning))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// PauseSession transitions a running session to paused and opens a
// break, enforcing the workspace threshold first.
func (store *Store) PauseSession(ctx context.Context, sessionID string, breakReq BreakRequest) (*model.Session, error) {
	session, lastStarted, err := store.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionRunning {
		return nil, fmt.Errorf("%w: cannot pause a %s session", ErrInvalid, session.Status)
	}
	if err := store.checkThreshold(ctx, session, lastStarted); err != nil {
		return nil, err
	}

	now := store.now().UTC()
	session.Duration += now.Sub(lastStarted)
	session.Status = model.SessionPaused

	breakType := breakReq.TypeName
	if breakType == "" {
		breakType = breakReq.TypeID
	}
	_, err = store.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, duration_seconds = ? WHERE id = ?`,
		string(model.SessionPaused), int64(session.Duration.Seconds()), sessionID)
	if err != nil {
		return nil, fmt.Errorf("pause session: %w", err)
	}
	_, err = store.db.ExecContext(ctx, `
		INSERT INTO breaks (id, session_id, break_type, break_start) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), sessionID, breakType, now)
	if err != nil {
		return nil, fmt.Errorf("open break: %w", err)
	}
	return session, nil
}

// ResumeSession continues a paused session, or starts a fresh session
// chained onto a stopped one via resumed_from.
func (store *Store) ResumeSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, _, err := store.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := store.now().UTC()

	switch session.Status {
	case model.SessionPaused:
		_, err = store.db.ExecContext(ctx, `
			UPDATE breaks SET break_end = ? WHERE session_id = ? AND break_end IS NULL`, now, sessionID)
		if err != nil {
			return nil, fmt.Errorf("close break: %w", err)
		}
		_, err = store.db.ExecContext(ctx, `
			UPDATE sessions SET status = ?, last_started = ? WHERE id = ?`,
			string(model.SessionRunning), now, sessionID)
		if err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		session.Status = model.SessionRunning
		return session, nil

	case model.SessionStopped:
		active, err := store.activeSession(ctx)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, fmt.Errorf("%w: a session is already active", ErrInvalid)
		}
		resumed := &model.Session{
			ID:          uuid.NewString(),
			Title:       session.Title,
			Description: session.Description,
			CategoryID:  session.CategoryID,
			TaskID:      session.TaskID,
			StartTime:   now,
			Status:      model.SessionRunning,
			ResumedFrom: session.ID,
		}
		_, err = store.db.ExecContext(ctx, `
			INSERT INTO sessions (id, title, description, category_id, task_id, start_time, last_started, status, resumed_from)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			resumed.ID, resumed.Title, resumed.Description, resumed.CategoryID,
			resumed.TaskID, now, now, string(model.SessionRunning), session.ID)
		if err != nil {
			return nil, fmt.Errorf("resume stopped session: %w", err)
		}
		return resumed, nil

	default:
		return nil, fmt.Errorf("%w: cannot resume a %s session", ErrInvalid, session.Status)
	}
}

// StopSession finalizes a running or paused session, enforcing the
// workspace threshold first.
func (store *Store) StopSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, lastStarted, err := store.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStopped {
		return nil, fmt.Errorf("%w: session already stopped", ErrInvalid)
	}
	if err := store.checkThreshold(ctx, session, lastStarted); err != nil {
		return nil, err
	}

	now := store.now().UTC()
	if session.Status == model.SessionRunning {
		session.Duration += now.Sub(lastStarted)
	}
	session.Status = model.SessionStopped
	session.EndTime = &now

	_, err = store.db.ExecContext(ctx, `
		UPDATE breaks SET break_end = ? WHERE session_id = ? AND break_end IS NULL`, now, sessionID)
	if err != nil {
		return nil, fmt.Errorf("close break: %w", err)
	}
	_, err = store.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, end_time = ?, duration_seconds = ? WHERE id = ?`,
		string(model.SessionStopped), now, int64(session.Duration.Seconds()), sessionID)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}
	return session, nil
}

// ApproveSession flags the session so the next pause or stop bypasses
// the threshold check.
func (store *Store) ApproveSession(ctx context.Context, sessionID string) error {
	result, err := store.db.ExecContext(ctx,
		`UPDATE sessions SET pending_approval = 1 WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("approve session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DiscardSession deletes the session and its breaks outright.
func (store *Store) DiscardSession(ctx context.Context, sessionID string) error {
	result, err := store.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BackfillSession replaces an oversized session with a corrected entry.
// When AsBreak is set a fresh paused session with an open break is left
// in place so the user's pause continues as if the old session never
// overran.
func (store *Store) BackfillSession(ctx context.Context, req BackfillRequest) (*model.Session, error) {
	corrected := req.EndTime.Sub(req.StartTime)
	if corrected < 0 {
		return nil, fmt.Errorf("%w: backfill end precedes start", ErrInvalid)
	}
	original, _, err := store.loadSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// The discard and the corrected inserts must land together, or the
	// original session survives untouched.
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin backfill: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, req.SessionID); err != nil {
		return nil, fmt.Errorf("discard session: %w", err)
	}

	entryID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, description, category_id, task_id, start_time, last_started, end_time, duration_seconds, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entryID, req.Title, original.Description, original.CategoryID, original.TaskID,
		req.StartTime.UTC(), req.StartTime.UTC(), req.EndTime.UTC(),
		int64(corrected.Seconds()), string(model.SessionStopped))
	if err != nil {
		return nil, fmt.Errorf("insert backfill entry: %w", err)
	}

	if !req.AsBreak {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit backfill: %w", err)
		}
		return nil, nil
	}

	now := store.now().UTC()
	replacement := &model.Session{
		ID:          uuid.NewString(),
		Title:       original.Title,
		Description: original.Description,
		CategoryID:  original.CategoryID,
		TaskID:      original.TaskID,
		StartTime:   req.EndTime.UTC(),
		Duration:    0,
		Status:      model.SessionPaused,
		ResumedFrom: entryID,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, description, category_id, task_id, start_time, last_started, status, resumed_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		replacement.ID, replacement.Title, replacement.Description, replacement.CategoryID,
		replacement.TaskID, replacement.StartTime, replacement.StartTime,
		string(model.SessionPaused), entryID)
	if err != nil {
		return nil, fmt.Errorf("insert replacement session: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO breaks (id, session_id, break_type, break_start) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), replacement.ID, req.BreakType, now)
	if err != nil {
		return nil, fmt.Errorf("open replacement break: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit backfill: %w", err)
	}
	return replacement, nil
}

// RunningSession returns the running session, or nil when none exists.
func (store *Store) RunningSession(ctx context.Context) (*model.Session, error) {
	return store.sessionByStatus(ctx, model.SessionRunning)
}

// PausedSession returns the paused session, or nil when none exists.
func (store *Store) PausedSession(ctx context.Context) (*model.Session, error) {
	return store.sessionByStatus(ctx, model.SessionPaused)
}

// ActiveBreak returns the session's open break, or nil.
func (store *Store) ActiveBreak(ctx context.Context, sessionID string) (*model.Break, error) {
	row := store.db.QueryRowContext(ctx, `
		SELECT id, session_id, break_type, break_start
		FROM breaks WHERE session_id = ? AND break_end IS NULL
		ORDER BY break_start DESC LIMIT 1`, sessionID)

	var brk model.Break
	err := row.Scan(&brk.ID, &brk.SessionID, &brk.Type, &brk.Start)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active break: %w", err)
	}
	return &brk, nil
}

func (store *Store) sessionByStatus(ctx context.Context, status model.SessionStatus) (*model.Session, error) {
	row := store.db.QueryRowContext(ctx, `
		SELECT id, title, description, category_id, task_id, start_time, end_time,
		       duration_seconds, status, pending_approval, resumed_from
		FROM sessions WHERE status = ? ORDER BY start_time DESC LIMIT 1`, string(status))
	session, _, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (store *Store) activeSession(ctx context.Context) (*model.Session, error) {
	row := store.db.QueryRowContext(ctx, `
		SELECT id, title, description, category_id, task_id, start_time, end_time,
		       duration_seconds, status, pending_approval, resumed_from
		FROM sessions WHERE status IN (?, ?) LIMIT 1`,
		string(model.SessionRunning), string(model.SessionPaused))
	session, _, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (store *Store) loadSession(ctx context.Context, sessionID string) (*model.Session, time.Time, error) {
	row := store.db.QueryRowContext(ctx, `
		SELECT id, title, description, category_id, task_id, start_time, end_time,
		       duration_seconds, status, pending_approval, resumed_from, last_started
		FROM sessions WHERE id = ?`, sessionID)

	var (
		session     model.Session
		endTime     sql.NullTime
		seconds     int64
		pending     int
		lastStarted time.Time
	)
	err := row.Scan(&session.ID, &session.Title, &session.Description, &session.CategoryID,
		&session.TaskID, &session.StartTime, &endTime, &seconds, &session.Status,
		&pending, &session.ResumedFrom, &lastStarted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load session: %w", err)
	}
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	session.Duration = time.Duration(seconds) * time.Second
	session.PendingApproval = pending != 0
	return &session, lastStarted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, time.Time, error) {
	var (
		session model.Session
		endTime sql.NullTime
		seconds int64
		pending int
	)
	err := row.Scan(&session.ID, &session.Title, &session.Description, &session.CategoryID,
		&session.TaskID, &session.StartTime, &endTime, &seconds, &session.Status,
		&pending, &session.ResumedFrom)
	if err != nil {
		return nil, time.Time{}, err
	}
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	session.Duration = time.Duration(seconds) * time.Second
	session.PendingApproval = pending != 0
	return &session, time.Time{}, nil
}

// checkThreshold walks the resume chain of a session and returns a
// ThresholdError when the chain started longer ago than the workspace
// allows. Sessions flagged pending_approval bypass the check.
func (store *Store) checkThreshold(ctx context.Context, session *model.Session, lastStarted time.Time) error {
	if !store.threshold.Enabled || store.threshold.MaxAge <= 0 || session.PendingApproval {
		return nil
	}

	chain := ChainSummary{Sessions: 1, ChainStart: session.StartTime}
	total := session.Duration
	if session.Status == model.SessionRunning {
		total += store.now().Sub(lastStarted)
	}
	previousID := session.ResumedFrom
	for previousID != "" {
		row := store.db.QueryRowContext(ctx, `
			SELECT start_time, duration_seconds, resumed_from FROM sessions WHERE id = ?`, previousID)
		var (
			start   time.Time
			seconds int64
			next    string
		)
		err := row.Scan(&start, &seconds, &next)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return fmt.Errorf("walk resume chain: %w", err)
		}
		chain.Sessions++
		chain.ChainStart = start
		total += time.Duration(seconds) * time.Second
		previousID = next
	}
	chain.TotalDuration = total

	if store.now().Sub(chain.ChainStart) > store.threshold.MaxAge {
		return &ThresholdError{Chain: &chain}
	}
	return nil
}
