// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeNetwork     ErrorType = "NETWORK"
	ErrTypeProvider    ErrorType = "PROVIDER"
	ErrTypeRateLimit   ErrorType = "RATE_LIMIT"
	ErrTypeModel       ErrorType = "MODEL"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeValidation  ErrorType = "VALIDATION"
)

// Classification is the retry class of a generation failure. The adapter
// assigns it from the transport-level status code, never by inspecting
// human-readable error text.
type Classification string

const (
	ClassRetryable Classification = "RETRYABLE"
	ClassPermanent Classification = "PERMANENT"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// Classify returns the retry class of an error from the provider.
// Model-not-found, rate-limit and service-unavailable conditions warrant
// the single backup-model attempt; network failures are indistinguishable
// from "unavailable" and are classed the same way. Everything else is
// permanent.
func Classify(err error) Classification {
	if err == nil {
		return ClassPermanent
	}

	var aiErr *AIError
	if errors.As(err, &aiErr) {
		switch aiErr.Type {
		case ErrTypeModel, ErrTypeRateLimit, ErrTypeUnavailable, ErrTypeNetwork:
			return ClassRetryable
		}
	}

	return ClassPermanent
}
