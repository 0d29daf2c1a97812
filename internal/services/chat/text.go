// File: internal/services/chat/text.go
package chat

import (
	"strings"
	"unicode/utf8"
)

const titleRuneLimit = 30

// DeriveTitle builds a chat title from the first message: the first 30
// runes plus an ellipsis marker.
func DeriveTitle(message string) string {
	return TruncateText(strings.TrimSpace(message), titleRuneLimit) + "..."
}

// TruncateText safely truncates a UTF-8 string to maxLen runes, preserving character integrity
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}

	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0

	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}

	return b.String()
}
