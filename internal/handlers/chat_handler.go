// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/calmly-app/go-calmly/internal/dtos"
	"github.com/calmly-app/go-calmly/internal/middleware"
	"github.com/calmly-app/go-calmly/internal/services"
	chatservice "github.com/calmly-app/go-calmly/internal/services/chat"
)

type ChatHandler struct {
	ChatService *services.ChatService
	Cache       HistoryStore
}

func NewChatHandler(cs *services.ChatService, cache HistoryStore) *ChatHandler {
	if cache == nil {
		cache = NewHistoryCache(nil)
	}
	return &ChatHandler{
		ChatService: cs,
		Cache:       cache,
	}
}

// CreateChat starts a new conversation from its first message and returns
// the chat ID with the first assistant reply.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	chat, reply, err := h.ChatService.StartChat(r.Context(), userID, req.Message)
	if err != nil {
		writeError(w, "Could not start chat", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, dtos.CreateChatResponse{
		ChatID: chat.ID,
		Title:  chat.Title,
		Reply:  reply,
	})
}

// SendMessage runs one turn against an existing chat.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req dtos.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.ChatService.SendMessage(r.Context(), userID, chatID, req.Message)
	if err != nil {
		if chatservice.IsUnauthorized(err) {
			writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not process message", http.StatusInternalServerError)
		return
	}

	h.Cache.Invalidate(r.Context(), chatID)

	writeJSON(w, http.StatusOK, dtos.SendMessageResponse{Reply: reply})
}

// GetUserChats lists the user's chats, most recently active first.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToChatSummaries(chats))
}

// GetChatMessages returns the full history of one chat in order.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	// Ownership is checked before the cache is consulted, so a cached
	// history is never served to a non-owner. On a cache hit the message
	// table is not read at all.
	if err := h.ChatService.AuthorizeChatRead(r.Context(), userID, chatID); err != nil {
		writeError(w, "Chat not found", http.StatusNotFound)
		return
	}

	if cached, ok := h.Cache.Get(r.Context(), chatID); ok {
		writeJSON(w, http.StatusOK, dtos.ChatHistoryResponse{ID: chatID, Messages: cached})
		return
	}

	messages, err := h.ChatService.GetChatMessages(r.Context(), userID, chatID)
	if err != nil {
		if chatservice.IsNotFound(err) {
			writeError(w, "Chat not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}

	response := dtos.ToMessageResponses(messages)
	h.Cache.Set(r.Context(), chatID, response)
	writeJSON(w, http.StatusOK, dtos.ChatHistoryResponse{ID: chatID, Messages: response})
}

// DeleteChat removes a chat and its messages.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := chatIDFromPath(r)
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), userID, chatID); err != nil {
		if chatservice.IsUnauthorized(err) {
			writeError(w, "Chat not found or unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete chat", http.StatusInternalServerError)
		return
	}

	h.Cache.Invalidate(r.Context(), chatID)

	w.WriteHeader(http.StatusNoContent)
}

func chatIDFromPath(r *http.Request) (uint, error) {
	chatID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(chatID), err
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
