package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/crispterm/internal/interview"
)

// SessionCache persists the working session for crash/restart recovery.
// There is exactly one writer (the owning engine's mutation path) and
// one read at startup.
type SessionCache interface {
	// Save overwrites the cached working copy.
	Save(ctx context.Context, s *interview.Session) error

	// Load returns the cached session, or nil if none is cached.
	// A payload that no longer parses is treated as absent — the
	// cache is recovery-only, never authoritative.
	Load(ctx context.Context) (*interview.Session, error)

	// Clear removes the cached session.
	Clear(ctx context.Context) error
}

type sessionCache struct {
	db *sql.DB
}

func (c *sessionCache) Save(ctx context.Context, s *interview.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO session_cache (slot, session_id, payload, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (slot) DO UPDATE SET
		   session_id = excluded.session_id,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		s.SessionID, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session cache: %w", err)
	}
	return nil
}

func (c *sessionCache) Load(ctx context.Context) (*interview.Session, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM session_cache WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session cache: %w", err)
	}

	var s interview.Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		// Corrupt cache: discard rather than fail recovery.
		_ = c.clear(ctx)
		return nil, nil
	}
	return &s, nil
}

func (c *sessionCache) Clear(ctx context.Context) error {
	if err := c.clear(ctx); err != nil {
		return fmt.Errorf("clear session cache: %w", err)
	}
	return nil
}

func (c *sessionCache) clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM session_cache WHERE slot = 1`)
	return err
}
