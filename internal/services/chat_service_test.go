// File: internal/services/chat_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/repository"
	chatrepo "github.com/calmly-app/go-calmly/internal/repository/chat"
	messagerepo "github.com/calmly-app/go-calmly/internal/repository/message"
	"github.com/calmly-app/go-calmly/internal/services/ai"
	chatservice "github.com/calmly-app/go-calmly/internal/services/chat"
	"github.com/calmly-app/go-calmly/internal/services/safety"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// scriptedProvider returns canned completions and records invocations.
type scriptedProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) Complete(ctx context.Context, model, systemInstruction string, history []ai.Turn, input string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *scriptedProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// recordingNotifier records crisis notifications and signals each one.
type recordingNotifier struct {
	mu      sync.Mutex
	userIDs []uint
	done    chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) NotifyCrisis(ctx context.Context, userID uint, messageText string) error {
	n.mu.Lock()
	n.userIDs = append(n.userIDs, userID)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func (n *recordingNotifier) waitForNotification(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for crisis notification")
	}
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.userIDs)
}

type serviceFixture struct {
	db       *gorm.DB
	service  *ChatService
	provider *scriptedProvider
	notifier *recordingNotifier
	msgs     messagerepo.MessageRepository
	chats    chatrepo.ChatRepository
}

func newServiceFixture(t *testing.T, wrapMessages func(messagerepo.MessageRepository) messagerepo.MessageRepository) *serviceFixture {
	t.Helper()

	db := openTestDB(t)
	chats := chatrepo.NewChatRepository(db)
	msgs := messagerepo.NewMessageRepository(db)
	if wrapMessages != nil {
		msgs = wrapMessages(msgs)
	}

	provider := &scriptedProvider{reply: "I'm here with you."}
	notifier := newRecordingNotifier()

	cfg := chatservice.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	generator := chatservice.NewGenerator(cfg, provider, &NoOpLogger{})

	service, err := NewChatService(
		cfg, chats, msgs, repository.NewTxManager(db),
		generator, safety.NewClassifier(nil), notifier, &NoOpLogger{},
	)
	if err != nil {
		t.Fatalf("building chat service: %v", err)
	}

	return &serviceFixture{
		db:       db,
		service:  service,
		provider: provider,
		notifier: notifier,
		msgs:     msgs,
		chats:    chats,
	}
}

func (f *serviceFixture) createChat(t *testing.T, userID uint, title string) *domain.Chat {
	t.Helper()
	chat, err := f.chats.Create(context.Background(), &domain.Chat{UserID: userID, Title: title})
	if err != nil {
		t.Fatalf("creating chat fixture: %v", err)
	}
	return chat
}

func TestSendMessagePersistsTurnInOrder(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "fixture")

	reply, err := f.service.SendMessage(context.Background(), 1, chat.ID, "I had a calm day today")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply != "I'm here with you." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if f.provider.callCount() != 1 {
		t.Fatalf("expected exactly one completion call, got %d", f.provider.callCount())
	}

	messages, err := f.msgs.FindByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleUser || messages[0].Content != "I had a calm day today" {
		t.Errorf("first message should be the user turn, got %+v", messages[0])
	}
	if messages[1].Role != domain.RoleAssistant || messages[1].Content != reply {
		t.Errorf("second message should be the assistant turn, got %+v", messages[1])
	}
}

func TestSendMessageAlternatingOrderOverManyTurns(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "fixture")

	const turns = 5
	for i := 0; i < turns; i++ {
		if _, err := f.service.SendMessage(context.Background(), 1, chat.ID, fmt.Sprintf("turn %d", i)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	messages, err := f.msgs.FindByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(messages) != 2*turns {
		t.Fatalf("expected %d messages, got %d", 2*turns, len(messages))
	}
	for i, m := range messages {
		want := domain.RoleUser
		if i%2 == 1 {
			want = domain.RoleAssistant
		}
		if m.Role != want {
			t.Errorf("message %d: expected role %q, got %q", i, want, m.Role)
		}
	}
}

func TestSendMessageAdvancesUpdatedAtAndReordersChats(t *testing.T) {
	f := newServiceFixture(t, nil)
	older := f.createChat(t, 1, "older chat")
	newer := f.createChat(t, 1, "newer chat")

	before, err := f.chats.FindByID(context.Background(), older.ID)
	if err != nil {
		t.Fatalf("reading chat before the turn: %v", err)
	}

	if _, err := f.service.SendMessage(context.Background(), 1, older.ID, "checking in again"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	after, err := f.chats.FindByID(context.Background(), older.ID)
	if err != nil {
		t.Fatalf("reading chat after the turn: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}

	// The turn makes the older chat the most recently active one.
	chats, err := f.service.GetUserChats(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserChats: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
	if chats[0].ID != older.ID || chats[1].ID != newer.ID {
		t.Fatalf("expected the touched chat first, got order [%d, %d]", chats[0].ID, chats[1].ID)
	}
}

func TestSendMessageCrisisShortCircuitsGeneration(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "fixture")

	reply, err := f.service.SendMessage(context.Background(), 1, chat.ID, "I want to end it all")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	f.notifier.waitForNotification(t)

	if reply != chatservice.DefaultCrisisSafetyMessage {
		t.Fatalf("expected crisis safety message, got %q", reply)
	}
	if f.provider.callCount() != 0 {
		t.Fatalf("generator must not run for a crisis turn, got %d calls", f.provider.callCount())
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected 1 crisis notification, got %d", f.notifier.count())
	}

	// The crisis turn is persisted verbatim with the fixed response.
	messages, err := f.msgs.FindByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages))
	}
	if messages[1].Content != chatservice.DefaultCrisisSafetyMessage {
		t.Errorf("assistant turn should carry the safety message, got %q", messages[1].Content)
	}
}

func TestSendMessageRejectsForeignChat(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "someone else's chat")

	_, err := f.service.SendMessage(context.Background(), 2, chat.ID, "hello")
	if !chatservice.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	// Nothing persisted for the rejected turn.
	count, err := f.msgs.CountByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected turn must not persist messages, found %d", count)
	}
}

func TestSendMessageRejectsMissingChat(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.SendMessage(context.Background(), 1, 9999, "hello")
	if !chatservice.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestStartChatCreatesChatWithBothMessages(t *testing.T) {
	f := newServiceFixture(t, nil)

	first := "I have been feeling overwhelmed lately and cannot sleep"
	chat, reply, err := f.service.StartChat(context.Background(), 1, first)
	if err != nil {
		t.Fatalf("StartChat: %v", err)
	}
	if reply != "I'm here with you." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if chat.Title != chatservice.DeriveTitle(first) {
		t.Errorf("expected derived title %q, got %q", chatservice.DeriveTitle(first), chat.Title)
	}

	messages, err := f.msgs.FindByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages in the new chat, got %d", len(messages))
	}
}

func TestStartChatCrisisParity(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, reply, err := f.service.StartChat(context.Background(), 1, "i want to end this")
	if err != nil {
		t.Fatalf("StartChat: %v", err)
	}
	f.notifier.waitForNotification(t)

	if reply != chatservice.DefaultCrisisSafetyMessage {
		t.Fatalf("expected crisis safety message, got %q", reply)
	}
	if f.provider.callCount() != 0 {
		t.Fatalf("generator must not run for a crisis first message, got %d calls", f.provider.callCount())
	}
}

// failingMessageRepo fails assistant inserts to force a rollback.
type failingMessageRepo struct {
	messagerepo.MessageRepository
}

func (f *failingMessageRepo) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.Role == domain.RoleAssistant {
		return nil, errors.New("simulated insert failure")
	}
	return f.MessageRepository.Create(ctx, message)
}

func (f *failingMessageRepo) WithTx(tx *gorm.DB) messagerepo.MessageRepository {
	return &failingMessageRepo{MessageRepository: f.MessageRepository.WithTx(tx)}
}

func TestStartChatRollsBackOnFailure(t *testing.T) {
	f := newServiceFixture(t, func(inner messagerepo.MessageRepository) messagerepo.MessageRepository {
		return &failingMessageRepo{MessageRepository: inner}
	})

	_, _, err := f.service.StartChat(context.Background(), 1, "hello there")
	if err == nil {
		t.Fatal("expected StartChat to fail")
	}

	var chatCount, messageCount int64
	if err := f.db.Model(&domain.Chat{}).Count(&chatCount).Error; err != nil {
		t.Fatalf("counting chats: %v", err)
	}
	if err := f.db.Model(&domain.Message{}).Count(&messageCount).Error; err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if chatCount != 0 || messageCount != 0 {
		t.Fatalf("expected full rollback, found %d chats and %d messages", chatCount, messageCount)
	}
}

func TestGetChatMessagesHidesForeignChat(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "private")

	_, err := f.service.GetChatMessages(context.Background(), 2, chat.ID)
	if !chatservice.IsNotFound(err) {
		t.Fatalf("expected not-found error for a foreign chat, got %v", err)
	}
}

func TestDeleteChatRemovesMessages(t *testing.T) {
	f := newServiceFixture(t, nil)
	chat := f.createChat(t, 1, "fixture")

	if _, err := f.service.SendMessage(context.Background(), 1, chat.ID, "a message"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if err := f.service.DeleteChat(context.Background(), 1, chat.ID); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}

	count, err := f.msgs.CountByChatID(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected message cascade on delete, found %d", count)
	}

	chats, err := f.service.GetUserChats(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserChats: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no chats after delete, found %d", len(chats))
	}
}
