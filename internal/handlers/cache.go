// File: internal/handlers/cache.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/calmly-app/go-calmly/internal/dtos"
)

const historyCacheTTL = 24 * time.Hour

// HistoryStore is the read cache consulted by the history endpoint after
// the ownership check and before any message fetch.
type HistoryStore interface {
	Get(ctx context.Context, chatID uint) ([]dtos.MessageResponse, bool)
	Set(ctx context.Context, chatID uint, messages []dtos.MessageResponse)
	Invalidate(ctx context.Context, chatID uint)
}

// HistoryCache caches rendered chat histories in Redis. The client may be
// nil, in which case every call is a no-op and reads fall through to the
// database. Cache failures are logged and never fail a request.
type HistoryCache struct {
	client *redis.Client
}

func NewHistoryCache(client *redis.Client) *HistoryCache {
	return &HistoryCache{client: client}
}

func historyCacheKey(chatID uint) string {
	return fmt.Sprintf("chat:%d:messages", chatID)
}

// Get returns the cached history for a chat, or ok=false on miss,
// disabled cache, or any Redis error.
func (c *HistoryCache) Get(ctx context.Context, chatID uint) ([]dtos.MessageResponse, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, historyCacheKey(chatID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[HistoryCache] Get failed for chat %d: %v", chatID, err)
		}
		return nil, false
	}

	var messages []dtos.MessageResponse
	if err := json.Unmarshal(raw, &messages); err != nil {
		log.Printf("[HistoryCache] Corrupt entry for chat %d: %v", chatID, err)
		return nil, false
	}
	return messages, true
}

// Set stores the history for a chat.
func (c *HistoryCache) Set(ctx context.Context, chatID uint, messages []dtos.MessageResponse) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, historyCacheKey(chatID), raw, historyCacheTTL).Err(); err != nil {
		log.Printf("[HistoryCache] Set failed for chat %d: %v", chatID, err)
	}
}

// Invalidate drops the cached history after a write to the chat.
func (c *HistoryCache) Invalidate(ctx context.Context, chatID uint) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, historyCacheKey(chatID)).Err(); err != nil {
		log.Printf("[HistoryCache] Invalidate failed for chat %d: %v", chatID, err)
	}
}
