package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Event is one completion-gateway request, successful or not.
type Event struct {
	ID           int64
	Timestamp    time.Time
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

// Recorder accepts gateway events. The LLM logging middleware takes this
// interface so tests can capture events without a database.
type Recorder interface {
	Append(ctx context.Context, e Event) error
}

// Append stores one event. The timestamp defaults to now when unset.
func (s *Store) Append(ctx context.Context, e Event) error {
	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO llm_events
		(at, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.Unix(), e.Provider, e.Model, e.Purpose,
		e.InputTokens, e.OutputTokens, e.LatencyMs,
		boolToInt(e.Success), e.ErrorMessage, e.RequestBody, e.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Event, error) {
	q := `SELECT id, at, provider, model, purpose, input_tokens, output_tokens,
		latency_ms, success, error_message, request_body, response_body
		FROM llm_events ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Get returns one event by ID, or nil when not found.
func (s *Store) Get(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, at, provider, model, purpose,
		input_tokens, output_tokens, latency_ms, success, error_message,
		request_body, response_body
		FROM llm_events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// PurposeUsage aggregates calls and tokens for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// UsageByPurpose aggregates token usage grouped by purpose label.
func (s *Store) UsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT purpose, COUNT(*),
		COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0)
		FROM llm_events GROUP BY purpose ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var stats []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan purpose usage: %w", err)
		}
		stats = append(stats, u)
	}
	return stats, rows.Err()
}

// ModelUsage aggregates calls and tokens for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// UsageByModel aggregates token usage grouped by model.
func (s *Store) UsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model, COUNT(*),
		COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_events GROUP BY model ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var stats []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		stats = append(stats, u)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (Event, error) {
	var e Event
	var at int64
	var success int
	err := r.Scan(&e.ID, &at, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("scan llm event: %w", err)
	}
	e.Timestamp = time.Unix(at, 0)
	e.Success = success != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
