package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLSessionStore persists sessions to SQLite. State lives in plain columns
// for querying; prospect data, message history, and AI context are JSON
// blobs that round-trip without a per-field schema.
type SQLSessionStore struct {
	db *sql.DB
}

// NewSQLSessionStore creates a session store over an open database handle.
func NewSQLSessionStore(db *sql.DB) *SQLSessionStore {
	if db == nil {
		return nil
	}
	return &SQLSessionStore{db: db}
}

// Load reads a session by id, returning (nil, nil) when none exists.
func (s *SQLSessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("chat: session store not configured")
	}

	var (
		session      Session
		prospectJSON []byte
		messagesJSON []byte
		contextJSON  []byte
		state        string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, state, prospect_data, messages, ai_context, created_at, updated_at
		FROM sessions
		WHERE session_id = ?
	`, sessionID).Scan(
		&session.SessionID, &state, &prospectJSON, &messagesJSON, &contextJSON,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat: load session: %w", err)
	}

	session.State = State(state)
	if err := json.Unmarshal(prospectJSON, &session.ProspectData); err != nil {
		return nil, fmt.Errorf("chat: decode prospect data for %s: %w", sessionID, err)
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &session.Messages); err != nil {
			return nil, fmt.Errorf("chat: decode messages for %s: %w", sessionID, err)
		}
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &session.AIContext); err != nil {
			return nil, fmt.Errorf("chat: decode ai context for %s: %w", sessionID, err)
		}
	}
	return &session, nil
}

// Save upserts the session, overwriting any previous row for the id.
func (s *SQLSessionStore) Save(ctx context.Context, session *Session) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("chat: session store not configured")
	}

	prospectJSON, err := json.Marshal(session.ProspectData)
	if err != nil {
		return fmt.Errorf("chat: encode prospect data: %w", err)
	}
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("chat: encode messages: %w", err)
	}
	contextJSON, err := json.Marshal(session.AIContext)
	if err != nil {
		return fmt.Errorf("chat: encode ai context: %w", err)
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, state, prospect_data, messages, ai_context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			state = excluded.state,
			prospect_data = excluded.prospect_data,
			messages = excluded.messages,
			ai_context = excluded.ai_context,
			updated_at = excluded.updated_at
	`, session.SessionID, string(session.State), prospectJSON, messagesJSON, contextJSON,
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("chat: save session %s: %w", session.SessionID, err)
	}
	return nil
}

// Delete removes the session row; deleting a missing session is not an error.
func (s *SQLSessionStore) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("chat: session store not configured")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("chat: delete session %s: %w", sessionID, err)
	}
	return nil
}

// Exists reports whether a session row is present.
func (s *SQLSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("chat: session store not configured")
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ? LIMIT 1`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chat: check session %s: %w", sessionID, err)
	}
	return true, nil
}

var _ SessionStore = (*SQLSessionStore)(nil)
