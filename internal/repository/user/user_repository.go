// File: internal/repository/user/user_repository.go
package user

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/calmly-app/go-calmly/internal/domain"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUsernameTaken = errors.New("username already taken")

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return nil, errors.New("username is required")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		log.Printf("[UserRepository] Database error checking username %q: %v", user.Username, err)
		return nil, errors.New("database error creating user")
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("[UserRepository] Database error during user creation: %v", err)
		return nil, errors.New("database error creating user")
	}

	log.Printf("[UserRepository] User created successfully with ID: %d", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &user, nil
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[UserRepository] FindByUsername database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateEmergencyContact(ctx context.Context, userID uint, name, phone string) error {
	if userID == 0 {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"emergency_contact_name":  name,
			"emergency_contact_phone": phone,
		})

	if result.Error != nil {
		log.Printf("[UserRepository] Database error updating emergency contact for user ID %d: %v", userID, result.Error)
		return errors.New("database error updating emergency contact")
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
