// File: internal/services/safety/notifier.go
package safety

import (
	"context"
	"fmt"

	"github.com/calmly-app/go-calmly/internal/repository/user"
	"github.com/calmly-app/go-calmly/internal/services/sms"
)

// Logger defines the logging interface used by the safety services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Notifier is invoked when a message classifies as a distress signal.
// Callers treat it as fire-and-forget: its failures are logged and never
// block or fail the conversation turn.
type Notifier interface {
	NotifyCrisis(ctx context.Context, userID uint, messageText string) error
}

// SMSNotifier alerts the user's registered emergency contact by SMS.
type SMSNotifier struct {
	userRepo user.UserRepository
	provider sms.Provider
	retry    *sms.RetryConfig
	logger   Logger
}

func NewSMSNotifier(userRepo user.UserRepository, provider sms.Provider, logger Logger) *SMSNotifier {
	return &SMSNotifier{
		userRepo: userRepo,
		provider: provider,
		retry:    sms.DefaultRetryConfig(),
		logger:   logger,
	}
}

func (n *SMSNotifier) NotifyCrisis(ctx context.Context, userID uint, messageText string) error {
	account, err := n.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolving user %d for crisis alert: %w", userID, err)
	}

	if !account.HasEmergencyContact() {
		n.logger.Warn("crisis detected but no emergency contact on file", "user_id", userID)
		return nil
	}

	alert := fmt.Sprintf("Calmly safety alert: %s may need support right now. Please check in with them.", account.Username)

	err = sms.RetryWithBackoff(ctx, n.retry, func(ctx context.Context) error {
		return n.provider.SendAlert(ctx, account.EmergencyContactPhone, alert)
	})
	if err != nil {
		return fmt.Errorf("sending crisis alert for user %d: %w", userID, err)
	}

	n.logger.Info("crisis alert delivered", "user_id", userID, "contact", account.EmergencyContactName)
	return nil
}

// NoopNotifier stands in when no SMS provider is configured; it records
// the event in the log so operators can still see the signal.
type NoopNotifier struct {
	logger Logger
}

func NewNoopNotifier(logger Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyCrisis(ctx context.Context, userID uint, messageText string) error {
	n.logger.Warn("crisis detected; emergency notifier not configured", "user_id", userID)
	return nil
}
