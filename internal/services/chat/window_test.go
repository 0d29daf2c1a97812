// File: internal/services/chat/window_test.go
package chat

import (
	"testing"

	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/services/ai"
)

func msg(role domain.Role, content string) domain.Message {
	return domain.Message{Role: role, Content: content}
}

func TestBuildWindowTakesChronologicalTail(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "u1"),
		msg(domain.RoleAssistant, "a1"),
		msg(domain.RoleUser, "u2"),
		msg(domain.RoleAssistant, "a2"),
		msg(domain.RoleUser, "u3"),
	}

	window := BuildWindow(history, "current", 3)

	want := []ai.Turn{
		{Role: ai.TurnRoleUser, Text: "u2"},
		{Role: ai.TurnRoleModel, Text: "a2"},
		{Role: ai.TurnRoleUser, Text: "u3"},
	}
	assertWindow(t, window, want)
}

func TestBuildWindowExcludesCurrentMessage(t *testing.T) {
	// The current turn is already persisted when the window is read, so
	// the tail contains it and it must be filtered out.
	history := []domain.Message{
		msg(domain.RoleUser, "u1"),
		msg(domain.RoleAssistant, "a1"),
		msg(domain.RoleUser, "how are you"),
	}

	window := BuildWindow(history, "how are you", 3)

	want := []ai.Turn{
		{Role: ai.TurnRoleUser, Text: "u1"},
		{Role: ai.TurnRoleModel, Text: "a1"},
	}
	assertWindow(t, window, want)
}

func TestBuildWindowDropsLeadingModelTurn(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "u1"),
		msg(domain.RoleAssistant, "a1"),
		msg(domain.RoleUser, "u2"),
	}

	// k=2 tail is [a1, u2]; the leading model turn must go.
	window := BuildWindow(history, "current", 2)

	want := []ai.Turn{
		{Role: ai.TurnRoleUser, Text: "u2"},
	}
	assertWindow(t, window, want)
}

func TestBuildWindowCanBecomeEmpty(t *testing.T) {
	// After excluding the current message only a model turn remains, and a
	// model turn cannot open context.
	history := []domain.Message{
		msg(domain.RoleAssistant, "a1"),
		msg(domain.RoleUser, "current"),
	}

	if window := BuildWindow(history, "current", 2); len(window) != 0 {
		t.Fatalf("expected empty window, got %v", window)
	}
}

func TestBuildWindowEdgeInputs(t *testing.T) {
	if w := BuildWindow(nil, "x", 3); w != nil {
		t.Errorf("nil history should yield nil window, got %v", w)
	}
	if w := BuildWindow([]domain.Message{msg(domain.RoleUser, "u1")}, "x", 0); w != nil {
		t.Errorf("k=0 should yield nil window, got %v", w)
	}
}

func TestReverseChronological(t *testing.T) {
	newestFirst := []domain.Message{
		msg(domain.RoleUser, "third"),
		msg(domain.RoleAssistant, "second"),
		msg(domain.RoleUser, "first"),
	}

	got := reverseChronological(newestFirst)

	if got[0].Content != "first" || got[2].Content != "third" {
		t.Errorf("unexpected order: %q, %q, %q", got[0].Content, got[1].Content, got[2].Content)
	}
}

func assertWindow(t *testing.T, got, want []ai.Turn) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d turns, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
