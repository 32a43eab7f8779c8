package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMRequestEventData captures one call to the generation dependency.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records one generation-dependency call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns the most recent events, newest first.
	QueryLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events
		   (timestamp, provider, model, purpose, input_tokens, output_tokens,
		    latency_ms, success, error_message, request_body, response_body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		boolToInt(data.Success), data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, provider, model, purpose, input_tokens,
		        output_tokens, latency_ms, success, error_message,
		        request_body, response_body
		 FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, timestamp, provider, model, purpose, input_tokens,
		        output_tokens, latency_ms, success, error_message,
		        request_body, response_body
		 FROM llm_events WHERE id = ?`, id)
	e, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func scanEvent(scan func(dest ...any) error) (*LLMEvent, error) {
	var e LLMEvent
	var ts int64
	var success int
	err := scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, err
	}
	e.Timestamp = time.UnixMilli(ts)
	e.Success = success != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
