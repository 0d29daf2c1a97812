// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/repository"
	chatrepo "github.com/calmly-app/go-calmly/internal/repository/chat"
	messagerepo "github.com/calmly-app/go-calmly/internal/repository/message"
	chatservice "github.com/calmly-app/go-calmly/internal/services/chat"
	"github.com/calmly-app/go-calmly/internal/services/safety"
)

const notifyTimeout = 15 * time.Second

// ChatService orchestrates one conversation turn: authorize, persist the
// user message, classify it, either short-circuit to the crisis flow or
// generate a reply, persist the assistant message and bump the chat's
// last-activity timestamp. Every completed turn yields assistant-role
// text; only authorization can reject a turn outright.
type ChatService struct {
	config      *chatservice.Config
	chatRepo    chatrepo.ChatRepository
	messageRepo messagerepo.MessageRepository
	tx          repository.TxManager
	generator   *chatservice.Generator
	classifier  *safety.Classifier
	notifier    safety.Notifier
	logger      Logger
}

func NewChatService(
	config *chatservice.Config,
	chatRepo chatrepo.ChatRepository,
	messageRepo messagerepo.MessageRepository,
	tx repository.TxManager,
	generator *chatservice.Generator,
	classifier *safety.Classifier,
	notifier safety.Notifier,
	logger Logger,
) (*ChatService, error) {
	// Validate dependencies
	if chatRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "chat repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if tx == nil {
		return nil, chatservice.NewValidationError("constructor", "transaction manager is required")
	}
	if generator == nil {
		return nil, chatservice.NewValidationError("constructor", "response generator is required")
	}
	if classifier == nil {
		return nil, chatservice.NewValidationError("constructor", "distress classifier is required")
	}
	if notifier == nil {
		return nil, chatservice.NewValidationError("constructor", "emergency notifier is required")
	}

	if config == nil {
		config = chatservice.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}

	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		config:      config,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		tx:          tx,
		generator:   generator,
		classifier:  classifier,
		notifier:    notifier,
		logger:      logger,
	}, nil
}

// SendMessage runs one turn against an existing chat and returns the
// assistant reply. The user message is persisted before generation and
// before the assistant message, so reading history back in timestamp
// order always reconstructs true conversational order.
//
// This path is deliberately non-transactional, matching the create path's
// looser sibling: a crash between the two inserts leaves a dangling user
// turn, which reads back as an unanswered message. Only StartChat gets
// the all-or-nothing guarantee.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID uint, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", chatservice.NewValidationError("send_message", "message cannot be empty")
	}

	// AUTHORIZE: a missing chat and a foreign chat are rejected alike,
	// with nothing persisted.
	chatRecord, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil || chatRecord.UserID != userID {
		return "", chatservice.NewUnauthorizedError(userID, chatID)
	}

	// PERSIST_USER_MSG: always recorded verbatim, even a crisis message.
	userMsg := &domain.Message{ChatID: chatID, Role: domain.RoleUser, Content: content}
	if _, err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return "", chatservice.NewPersistenceError("send_message", "could not save user message", err)
	}

	reply := s.resolveReply(ctx, s.messageRepo, userID, chatID, content)

	// PERSIST_ASSISTANT_MSG: whichever flow produced the text.
	assistantMsg := &domain.Message{ChatID: chatID, Role: domain.RoleAssistant, Content: reply}
	if _, err := s.messageRepo.Create(ctx, assistantMsg); err != nil {
		return "", chatservice.NewPersistenceError("send_message", "could not save assistant message", err)
	}

	// UPDATE_CHAT_META: the reply is already durable, so a failed touch
	// is logged rather than surfaced.
	if err := s.chatRepo.TouchUpdatedAt(ctx, chatID); err != nil {
		s.logger.Warn("could not update chat timestamp", "chat_id", chatID, "error", err)
	}

	return reply, nil
}

// StartChat creates a chat from its first message. Chat creation and both
// message inserts run in a single transaction: a failure anywhere rolls
// everything back, so a chat never exists with zero messages or a
// dangling title.
func (s *ChatService) StartChat(ctx context.Context, userID uint, content string) (*domain.Chat, string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, "", chatservice.NewValidationError("start_chat", "message cannot be empty")
	}

	var (
		created  *domain.Chat
		reply    string
		distress bool
	)

	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		chats := s.chatRepo.WithTx(tx)
		messages := s.messageRepo.WithTx(tx)

		newChat, err := chats.Create(ctx, &domain.Chat{
			UserID: userID,
			Title:  chatservice.DeriveTitle(content),
		})
		if err != nil {
			return err
		}

		userMsg := &domain.Message{ChatID: newChat.ID, Role: domain.RoleUser, Content: content}
		if _, err := messages.Create(ctx, userMsg); err != nil {
			return err
		}

		distress = s.classifier.Classify(content)
		if distress {
			reply = s.config.CrisisSafetyMessage
		} else {
			reply = s.generator.Generate(ctx, messages, newChat.ID, content)
		}

		assistantMsg := &domain.Message{ChatID: newChat.ID, Role: domain.RoleAssistant, Content: reply}
		if _, err := messages.Create(ctx, assistantMsg); err != nil {
			return err
		}

		created = newChat
		return nil
	})
	if err != nil {
		return nil, "", chatservice.NewPersistenceError("start_chat", "could not start chat", err)
	}

	// Notify only after the turn is durable; a rolled-back chat must not
	// page anyone's emergency contact.
	if distress {
		s.notifyCrisis(userID, content)
	}

	return created, reply, nil
}

// resolveReply runs CLASSIFY and the branch it selects. The generator is
// never invoked for a distress turn, so crisis handling cannot be delayed
// or bypassed by a slow or failing model.
func (s *ChatService) resolveReply(ctx context.Context, history chatservice.HistoryProvider, userID, chatID uint, content string) string {
	if s.classifier.Classify(content) {
		s.logger.Warn("distress signal detected", "user_id", userID, "chat_id", chatID)
		s.notifyCrisis(userID, content)
		return s.config.CrisisSafetyMessage
	}

	return s.generator.Generate(ctx, history, chatID, content)
}

// notifyCrisis invokes the emergency notifier without blocking the turn.
// The notifier's own failures are logged and never reach the user.
func (s *ChatService) notifyCrisis(userID uint, content string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyCrisis(ctx, userID, content); err != nil {
			s.logger.Error("emergency notification failed", "user_id", userID, "error", err)
		}
	}()
}

// GetUserChats lists the user's chats, most recently active first.
func (s *ChatService) GetUserChats(ctx context.Context, userID uint) ([]domain.Chat, error) {
	return s.chatRepo.FindByUserID(ctx, userID)
}

// AuthorizeChatRead checks that the chat exists and belongs to the user.
// A foreign chat reads as missing. Exposed separately from the history
// fetch so the handler layer can authorize once and then answer from its
// cache without touching the message table.
func (s *ChatService) AuthorizeChatRead(ctx context.Context, userID, chatID uint) error {
	chatRecord, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil || chatRecord.UserID != userID {
		return chatservice.NewNotFoundError(userID, chatID)
	}
	return nil
}

// GetChatMessages returns the full history of a chat in chronological
// order. A chat that does not belong to the user reads as missing.
func (s *ChatService) GetChatMessages(ctx context.Context, userID, chatID uint) ([]domain.Message, error) {
	if err := s.AuthorizeChatRead(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByChatID(ctx, chatID)
}

// DeleteChat removes a chat and its messages in one transaction.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID uint) error {
	chatRecord, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil || chatRecord.UserID != userID {
		return chatservice.NewUnauthorizedError(userID, chatID)
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.messageRepo.WithTx(tx).DeleteByChatID(ctx, chatID); err != nil {
			return err
		}
		return s.chatRepo.WithTx(tx).Delete(ctx, chatID, userID)
	})
	if err != nil {
		if errors.Is(err, chatrepo.ErrUnauthorizedAccess) {
			return chatservice.NewUnauthorizedError(userID, chatID)
		}
		return chatservice.NewPersistenceError("delete_chat", "could not delete chat", err)
	}
	return nil
}
