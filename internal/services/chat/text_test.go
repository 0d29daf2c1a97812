// File: internal/services/chat/text_test.go
package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDeriveTitleTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("a", 100)
	title := DeriveTitle(long)

	if title != strings.Repeat("a", 30)+"..." {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestDeriveTitleShortMessageKeepsMarker(t *testing.T) {
	if got := DeriveTitle("hi"); got != "hi..." {
		t.Fatalf("expected %q, got %q", "hi...", got)
	}
}

func TestDeriveTitleTrimsWhitespace(t *testing.T) {
	if got := DeriveTitle("  hello  "); got != "hello..." {
		t.Fatalf("expected %q, got %q", "hello...", got)
	}
}

func TestTruncateTextPreservesRunes(t *testing.T) {
	input := strings.Repeat("é", 40)
	got := TruncateText(input, 30)

	if utf8.RuneCountInString(got) != 30 {
		t.Fatalf("expected 30 runes, got %d", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation produced invalid UTF-8")
	}
}

func TestTruncateTextEdgeCases(t *testing.T) {
	if got := TruncateText("", 10); got != "" {
		t.Errorf("empty input should stay empty, got %q", got)
	}
	if got := TruncateText("abc", 0); got != "" {
		t.Errorf("zero limit should yield empty string, got %q", got)
	}
	if got := TruncateText("abc", 10); got != "abc" {
		t.Errorf("short input should be unchanged, got %q", got)
	}
}
