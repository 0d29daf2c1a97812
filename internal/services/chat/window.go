// File: internal/services/chat/window.go
package chat

import (
	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/services/ai"
)

// BuildWindow derives the conversation window sent as model context:
// the chronological tail of at most k messages, with two corrections.
//
// Entries whose content equals current are excluded, because the turn
// being answered is already persisted by the time the window is read and
// must not be resubmitted as both history and input. A leading
// assistant-role entry is then dropped: a model turn cannot open context,
// so a window of [assistant] alone becomes empty rather than surviving
// as [assistant].
//
// The input slice must already be in chronological order.
func BuildWindow(history []domain.Message, current string, k int) []ai.Turn {
	if k <= 0 || len(history) == 0 {
		return nil
	}

	if len(history) > k {
		history = history[len(history)-k:]
	}

	window := make([]ai.Turn, 0, len(history))
	for _, msg := range history {
		if msg.Content == current {
			continue
		}
		window = append(window, ai.Turn{
			Role: msg.Role.ModelRole(),
			Text: msg.Content,
		})
	}

	for len(window) > 0 && window[0].Role == ai.TurnRoleModel {
		window = window[1:]
	}

	return window
}

// reverseChronological flips a newest-first fetch into chronological order.
func reverseChronological(messages []domain.Message) []domain.Message {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}
