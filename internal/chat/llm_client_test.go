package chat

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildSystemPromptListsKnownAndMissing(t *testing.T) {
	data := ProspectData{Name: "Kausha", Email: "kausha@example.com"}
	prompt := buildSystemPrompt("Maple Court", &data)

	if !strings.Contains(prompt, "Maple Court") {
		t.Errorf("prompt missing property name: %q", prompt)
	}
	if !strings.Contains(prompt, "name: Kausha") {
		t.Errorf("prompt should list collected name: %q", prompt)
	}
	if !strings.Contains(prompt, "phone") {
		t.Errorf("prompt should name the still-missing phone field: %q", prompt)
	}
}

func TestBuildLLMRequestWindowsHistory(t *testing.T) {
	session := NewSession("s1", "123 Main St")
	for i := 0; i < 8; i++ {
		session.Append(SenderUser, fmt.Sprintf("question %d", i))
		session.Append(SenderBot, fmt.Sprintf("answer %d", i))
	}

	req := buildLLMRequest("Maple Court", session)
	if len(req.Messages) != historyWindow {
		t.Fatalf("got %d messages, want %d", len(req.Messages), historyWindow)
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != ChatRoleAssistant || last.Content != "answer 7" {
		t.Errorf("last message = %+v", last)
	}
	if req.Messages[len(req.Messages)-2].Role != ChatRoleUser {
		t.Errorf("roles not mapped from senders")
	}
	if req.System == "" {
		t.Error("system prompt empty")
	}
}
