package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseline/lease-concierge/internal/chat"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

// mockEngine replays canned sessions and records processed turns.
type mockEngine struct {
	sessions map[string]*chat.Session
	turns    []string
}

func newMockEngine() *mockEngine {
	return &mockEngine{sessions: make(map[string]*chat.Session)}
}

func (m *mockEngine) ProcessMessage(_ context.Context, sessionID, text string) (*chat.TurnResult, error) {
	m.turns = append(m.turns, text)
	return &chat.TurnResult{SessionID: sessionID, Reply: "ok", State: chat.StateGreeting}, nil
}

func (m *mockEngine) GetSession(_ context.Context, sessionID string) (*chat.Session, error) {
	return m.sessions[sessionID], nil
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestHandleHistory(t *testing.T) {
	eng := newMockEngine()
	session := chat.NewSession("sess1", "123 Main St")
	session.Messages = []chat.Message{
		{Sender: chat.SenderUser, Text: "Hello", Timestamp: time.Now().UTC()},
		{Sender: chat.SenderBot, Text: "Hi there!", Timestamp: time.Now().UTC()},
	}
	eng.sessions["sess1"] = session
	h := NewHandler(eng, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/webchat/history?session=sess1", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "Hello", resp.Messages[0].Text)
	assert.Equal(t, "assistant", resp.Messages[1].Role)
}

func TestHandleHistory_MissingParams(t *testing.T) {
	h := NewHandler(newMockEngine(), nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/webchat/history", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistory_UnknownSession(t *testing.T) {
	h := NewHandler(newMockEngine(), nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/webchat/history?session=nope", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestHandleWidgetJS(t *testing.T) {
	widgetContent := []byte("(function(){ /* widget */ })();")
	h := NewHandler(newMockEngine(), widgetContent, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/webchat/widget.js", nil)
	w := httptest.NewRecorder()

	h.HandleWidgetJS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, string(widgetContent), w.Body.String())
}
