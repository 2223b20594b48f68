package chat

import (
	"context"
	"fmt"
	"strings"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// historyWindow caps how many prior turns are sent to the model.
const historyWindow = 10

// ChatMessage is the provider-neutral message form sent to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMRequest struct {
	System   string
	Messages []ChatMessage
}

type LLMResponse struct {
	Text string
}

// LLMClient generates conversational replies. Implementations must be safe
// for concurrent use. The model output is advisory only: state transitions
// and bookings are decided by the engine, never by generated text.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// buildLLMRequest assembles the system prompt and a bounded history window
// for one assistant turn. The current user message is already the last
// history entry by the time this runs.
func buildLLMRequest(propertyName string, session *Session) LLMRequest {
	req := LLMRequest{System: buildSystemPrompt(propertyName, &session.ProspectData)}
	for _, msg := range session.RecentMessages(historyWindow) {
		role := ChatRoleAssistant
		if msg.Sender == SenderUser {
			role = ChatRoleUser
		}
		req.Messages = append(req.Messages, ChatMessage{Role: role, Content: msg.Text})
	}
	return req
}

// buildSystemPrompt assembles the leasing-assistant persona with whatever is
// already known about the prospect, so the model does not re-ask for it.
func buildSystemPrompt(propertyName string, data *ProspectData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly leasing assistant for %s, an apartment community.\n", propertyName)
	b.WriteString("Help prospective renters with questions about the property, pricing, amenities, and touring.\n")
	b.WriteString("Keep replies short and warm. Never invent unit availability or pricing.\n")

	var known []string
	if data.Name != "" {
		known = append(known, "name: "+data.Name)
	}
	if data.Email != "" {
		known = append(known, "email: "+data.Email)
	}
	if data.Phone != "" {
		known = append(known, "phone: "+data.Phone)
	}
	if data.MoveInDate != "" {
		known = append(known, "move-in date: "+data.MoveInDate)
	}
	if data.BedsWanted != nil {
		known = append(known, fmt.Sprintf("bedrooms wanted: %d", *data.BedsWanted))
	}
	if len(known) > 0 {
		b.WriteString("Already collected, do not ask again: " + strings.Join(known, "; ") + ".\n")
	}
	if missing := data.MissingFields(); len(missing) > 0 {
		b.WriteString("Still needed before a tour can be booked: " + strings.Join(missing, ", ") + ".\n")
	}
	return b.String()
}

// StubLLMClient returns a canned reply for environments without an API key.
type StubLLMClient struct{}

func (StubLLMClient) Complete(_ context.Context, _ LLMRequest) (LLMResponse, error) {
	return LLMResponse{
		Text: "Thanks for reaching out! I can answer questions about the community or get a tour on the books.",
	}, nil
}
