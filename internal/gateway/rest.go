package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"timeclock/internal/core/model"
)

const codeThresholdExceeded = "THRESHOLD_EXCEEDED"

// Client talks to the workspace time-tracking REST API.
type Client struct {
	baseURL     string
	workspaceID string
	httpClient  *http.Client
	log         *zap.SugaredLogger
}

// NewClient creates a REST gateway rooted at baseURL for one workspace.
func NewClient(baseURL, workspaceID string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:     baseURL,
		workspaceID: workspaceID,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

type wireSession struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	CategoryID      string     `json:"category_id,omitempty"`
	TaskID          string     `json:"task_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	Status          string     `json:"status"`
	PendingApproval bool       `json:"pending_approval"`
	ResumedFrom     string     `json:"resumed_from,omitempty"`
}

type wireBreak struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	BreakTypeName string     `json:"break_type_name,omitempty"`
	BreakStart    time.Time  `json:"break_start"`
	BreakEnd      *time.Time `json:"break_end,omitempty"`
}

type wireChain struct {
	Sessions             int       `json:"sessions"`
	TotalDurationSeconds int64     `json:"total_duration_seconds"`
	ChainStart           time.Time `json:"chain_start"`
}

type wireError struct {
	Error        string     `json:"error"`
	Code         string     `json:"code,omitempty"`
	ChainSummary *wireChain `json:"chain_summary,omitempty"`
}

type sessionEnvelope struct {
	Session *wireSession `json:"session"`
}

type breakEnvelope struct {
	Break *wireBreak `json:"break"`
}

func (client *Client) sessionsURL() string {
	return fmt.Sprintf("%s/api/v1/workspaces/%s/time-tracking/sessions", client.baseURL, client.workspaceID)
}

// CreateSession starts a new running session on the backend.
func (client *Client) CreateSession(ctx context.Context, descriptor model.SessionDescriptor) (*model.Session, error) {
	body := map[string]any{
		"title":       descriptor.Title,
		"description": descriptor.Description,
		"categoryId":  nullable(descriptor.CategoryID),
		"taskId":      nullable(descriptor.TaskID),
	}
	var envelope sessionEnvelope
	if err := client.do(ctx, http.MethodPost, client.sessionsURL(), body, &envelope); err != nil {
		return nil, err
	}
	return client.toSession(envelope.Session), nil
}

// PauseSession patches the session with a pause action, opening a break.
func (client *Client) PauseSession(ctx context.Context, sessionID string, breakReq BreakRequest) (*model.Session, error) {
	body := map[string]any{"action": "pause"}
	if breakReq.TypeID != "" {
		body["breakTypeId"] = breakReq.TypeID
	} else if breakReq.TypeName != "" {
		body["breakTypeName"] = breakReq.TypeName
	}
	return client.patchSession(ctx, sessionID, body)
}

// ResumeSession patches the session with a resume action, closing its break.
func (client *Client) ResumeSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return client.patchSession(ctx, sessionID, map[string]any{"action": "resume"})
}

// StopSession patches the session with a stop action, finalizing it.
func (client *Client) StopSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return client.patchSession(ctx, sessionID, map[string]any{"action": "stop"})
}

// ApproveSession submits an approval request for an oversized session.
func (client *Client) ApproveSession(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s/%s/request-approval", client.sessionsURL(), sessionID)
	return client.do(ctx, http.MethodPost, url, nil, nil)
}

// DiscardSession deletes the session without leaving a history record.
func (client *Client) DiscardSession(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s/%s", client.sessionsURL(), sessionID)
	return client.do(ctx, http.MethodDelete, url, nil, nil)
}

// BackfillSession replaces an oversized session with a corrected missed
// entry. The response carries the fresh paused session when the
// backfill originated from a pause.
func (client *Client) BackfillSession(ctx context.Context, req BackfillRequest) (*model.Session, error) {
	url := fmt.Sprintf("%s/api/v1/workspaces/%s/time-tracking/missed-entries", client.baseURL, client.workspaceID)
	body := map[string]any{
		"sessionId": req.SessionID,
		"title":     req.Title,
		"startTime": req.StartTime.UTC().Format(time.RFC3339),
		"endTime":   req.EndTime.UTC().Format(time.RFC3339),
		"asBreak":   req.AsBreak,
	}
	if req.BreakType != "" {
		body["breakType"] = req.BreakType
	}
	var envelope sessionEnvelope
	if err := client.do(ctx, http.MethodPost, url, body, &envelope); err != nil {
		return nil, err
	}
	return client.toSession(envelope.Session), nil
}

// RunningSession returns the user's running session, or nil.
func (client *Client) RunningSession(ctx context.Context) (*model.Session, error) {
	return client.querySession(ctx, "running")
}

// PausedSession returns the user's paused session, or nil.
func (client *Client) PausedSession(ctx context.Context) (*model.Session, error) {
	return client.querySession(ctx, "paused")
}

// ActiveBreak returns the open break of a paused session, or nil.
func (client *Client) ActiveBreak(ctx context.Context, sessionID string) (*model.Break, error) {
	url := fmt.Sprintf("%s/%s/breaks/active", client.sessionsURL(), sessionID)
	var envelope breakEnvelope
	if err := client.do(ctx, http.MethodGet, url, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Break == nil {
		return nil, nil
	}
	wire := envelope.Break
	return &model.Break{
		ID:        wire.ID,
		SessionID: wire.SessionID,
		Type:      wire.BreakTypeName,
		Start:     wire.BreakStart,
		End:       wire.BreakEnd,
	}, nil
}

func (client *Client) querySession(ctx context.Context, kind string) (*model.Session, error) {
	url := fmt.Sprintf("%s?type=%s", client.sessionsURL(), kind)
	var envelope sessionEnvelope
	if err := client.do(ctx, http.MethodGet, url, nil, &envelope); err != nil {
		return nil, err
	}
	return client.toSession(envelope.Session), nil
}

func (client *Client) patchSession(ctx context.Context, sessionID string, body map[string]any) (*model.Session, error) {
	url := fmt.Sprintf("%s/%s", client.sessionsURL(), sessionID)
	var envelope sessionEnvelope
	if err := client.do(ctx, http.MethodPatch, url, body, &envelope); err != nil {
		return nil, err
	}
	return client.toSession(envelope.Session), nil
}

func (client *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		serialized, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(serialized)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return client.decodeError(response)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (client *Client) decodeError(response *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(response.Body, 1<<16))

	var wire wireError
	if err := json.Unmarshal(raw, &wire); err == nil {
		if wire.Code == codeThresholdExceeded {
			thresholdErr := &ThresholdError{}
			if wire.ChainSummary != nil {
				thresholdErr.Chain = &ChainSummary{
					Sessions:      wire.ChainSummary.Sessions,
					TotalDuration: time.Duration(wire.ChainSummary.TotalDurationSeconds) * time.Second,
					ChainStart:    wire.ChainSummary.ChainStart,
				}
			}
			return thresholdErr
		}
		if wire.Error != "" {
			switch response.StatusCode {
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, wire.Error)
			case http.StatusConflict, http.StatusUnprocessableEntity:
				return fmt.Errorf("%w: %s", ErrInvalid, wire.Error)
			}
			if response.StatusCode >= 500 {
				return &TransientError{Err: fmt.Errorf("%s", wire.Error)}
			}
			return fmt.Errorf("gateway rejected request: %s", wire.Error)
		}
	}

	client.log.Warnw("unstructured gateway error", "status", response.StatusCode)
	if response.StatusCode >= 500 {
		return &TransientError{Err: fmt.Errorf("HTTP %d", response.StatusCode)}
	}
	return fmt.Errorf("gateway rejected request: HTTP %d", response.StatusCode)
}

func (client *Client) toSession(wire *wireSession) *model.Session {
	if wire == nil {
		return nil
	}
	return &model.Session{
		ID:              wire.ID,
		WorkspaceID:     client.workspaceID,
		Title:           wire.Title,
		Description:     wire.Description,
		CategoryID:      wire.CategoryID,
		TaskID:          wire.TaskID,
		StartTime:       wire.StartTime,
		EndTime:         wire.EndTime,
		Duration:        time.Duration(wire.DurationSeconds) * time.Second,
		Status:          model.SessionStatus(wire.Status),
		PendingApproval: wire.PendingApproval,
		ResumedFrom:     wire.ResumedFrom,
	}
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
