package tutor

import (
	"context"
	"strings"
	"testing"
)

func TestSystemPromptMentionsSubject(t *testing.T) {
	for _, subject := range []string{"Mathematics", "English", "Biology"} {
		prompt := SystemPrompt(subject)
		if !strings.Contains(prompt, subject) {
			t.Errorf("prompt for %s does not mention the subject", subject)
		}
	}

	// The persona is pinned to the Nigerian syllabus
	prompt := SystemPrompt("Chemistry")
	if !strings.Contains(prompt, "WAEC") || !strings.Contains(prompt, "JAMB") {
		t.Error("prompt should reference WAEC and JAMB")
	}
}

func TestMockClientReply(t *testing.T) {
	c := NewMockClient()
	resp, err := c.Reply(context.Background(), SystemPrompt("Mathematics"), nil, "What is a quadratic equation?")
	if err != nil {
		t.Fatalf("mock reply failed: %v", err)
	}
	if resp.Content == "" {
		t.Error("mock reply has no content")
	}
}
