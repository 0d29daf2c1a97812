// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/calmly-app/go-calmly/internal/domain"
)

// CreateChatRequest starts a new conversation from its first message.
type CreateChatRequest struct {
	Message string `json:"message"`
}

// CreateChatResponse returns the new chat ID alongside the first reply.
type CreateChatResponse struct {
	ChatID uint   `json:"chatId"`
	Title  string `json:"title"`
	Reply  string `json:"reply"`
}

// SendMessageRequest carries one turn against an existing chat.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse carries the assistant reply for the turn.
type SendMessageResponse struct {
	Reply string `json:"reply"`
}

// ChatSummary is one row of the chat list.
type ChatSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatHistoryResponse is the full history of one chat.
type ChatHistoryResponse struct {
	ID       uint              `json:"id"`
	Messages []MessageResponse `json:"messages"`
}

// MessageResponse is one message of a chat history.
type MessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToChatSummaries converts persisted chats to list rows.
func ToChatSummaries(chats []domain.Chat) []ChatSummary {
	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		out = append(out, ChatSummary{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out
}

// ToMessageResponses converts persisted messages to history rows.
func ToMessageResponses(messages []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
