// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/calmly-app/go-calmly/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository handles message data operations. Messages are append-only:
// there is no update operation because a message is immutable once written.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	// FindRecentByChatID returns up to limit messages newest-first; callers
	// that need chronological order reverse the slice.
	FindRecentByChatID(ctx context.Context, chatID uint, limit int) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
	DeleteByChatID(ctx context.Context, chatID uint) error

	// WithTx returns a view of the repository bound to the given
	// transaction. Used by the atomic create-chat path.
	WithTx(tx *gorm.DB) MessageRepository
}
