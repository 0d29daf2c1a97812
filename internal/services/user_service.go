// File: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/calmly-app/go-calmly/internal/auth"
	"github.com/calmly-app/go-calmly/internal/domain"
	userrepo "github.com/calmly-app/go-calmly/internal/repository/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
)

// UserService handles registration, login and profile management.
type UserService struct {
	userRepo  userrepo.UserRepository
	jwtSecret string
	logger    Logger
}

func NewUserService(userRepo userrepo.UserRepository, jwtSecret string, logger Logger) (*UserService, error) {
	if userRepo == nil {
		return nil, errors.New("user repository is required")
	}
	if jwtSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &UserService{userRepo: userRepo, jwtSecret: jwtSecret, logger: logger}, nil
}

// Register creates an account. The emergency contact fields are optional
// at signup; without them crisis alerts for this user have nowhere to go.
func (s *UserService) Register(ctx context.Context, username, password, contactName, contactPhone string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	user := &domain.User{
		Username:              username,
		EmergencyContactName:  strings.TrimSpace(contactName),
		EmergencyContactPhone: strings.TrimSpace(contactPhone),
	}
	if err := user.HashPassword(password); err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", created.ID, "has_emergency_contact", created.HasEmergencyContact())
	return created, nil
}

// Login verifies credentials and returns a signed token. Missing user and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := user.CheckPassword(password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(user.ID, []byte(s.jwtSecret))
	if err != nil {
		s.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		return "", nil, errors.New("could not generate token")
	}

	return token, user, nil
}

// GetProfile returns the stored user record.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateEmergencyContact replaces the user's emergency contact. Both
// fields must be set together or cleared together.
func (s *UserService) UpdateEmergencyContact(ctx context.Context, userID uint, name, phone string) error {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if (name == "") != (phone == "") {
		return errors.New("emergency contact name and phone must be provided together")
	}
	return s.userRepo.UpdateEmergencyContact(ctx, userID, name, phone)
}
