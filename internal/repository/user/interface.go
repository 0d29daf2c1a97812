// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/calmly-app/go-calmly/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateEmergencyContact(ctx context.Context, userID uint, name, phone string) error
}
