package types

import "testing"

func TestNewMessage_Constructors(t *testing.T) {
	t.Parallel()

	u := NewUserMessage("hello")
	if u.Role != RoleUser || u.Content != "hello" {
		t.Fatalf("unexpected user message: %+v", u)
	}
	if u.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	a := NewAssistantMessage("hi")
	if a.Role != RoleAssistant {
		t.Fatalf("unexpected assistant role: %s", a.Role)
	}

	w := NewWorkerMessage("research_team", "found it")
	if w.Role != RoleWorker {
		t.Fatalf("unexpected worker role: %s", w.Role)
	}
	if w.Name != "research_team" {
		t.Fatalf("expected worker provenance, got %q", w.Name)
	}
}
