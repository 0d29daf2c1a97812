// File: internal/repository/chat/interface.go
package chat

import (
	"context"

	"github.com/calmly-app/go-calmly/internal/domain"
	"gorm.io/gorm"
)

// ChatRepository handles chat data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id uint) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error)
	Delete(ctx context.Context, chatID uint, userID uint) error
	TouchUpdatedAt(ctx context.Context, chatID uint) error

	// WithTx returns a view of the repository bound to the given
	// transaction. Used by the atomic create-chat path.
	WithTx(tx *gorm.DB) ChatRepository
}
