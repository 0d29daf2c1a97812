// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

// Strategy selects how much prior conversation is sent as model context.
type Strategy string

const (
	// StrategyStateless sends only the system instruction and the
	// current message.
	StrategyStateless Strategy = "stateless"
	// StrategyWindowed sends a small chronological window of recent
	// persisted messages as well.
	StrategyWindowed Strategy = "windowed"
)

// DefaultSystemInstruction is the persona, safety and scope policy sent
// with every model invocation.
const DefaultSystemInstruction = `You are Calmly, a supportive mental health AI companion.
1. Tone: Warm, empathetic, and gentle.
2. Safety: If a user mentions self-harm or suicide, kindly suggest seeking professional help immediately.
3. Length: Keep responses concise (2-4 sentences) to encourage conversation.
4. Scope: Stay on emotional wellbeing; decline unrelated requests kindly.
5. Formatting: Do not use bullet points or bold text unless absolutely necessary. Write like a caring human friend.`

// DefaultApologyMessage is returned when both the primary and the backup
// model attempt fail, or the failure is permanent. The caller of Generate
// never sees an error.
const DefaultApologyMessage = "I'm having a little trouble connecting right now. Please give me a moment and try again."

// DefaultCrisisSafetyMessage is the fixed assistant response for a turn
// that classified as a distress signal. The generator is never invoked
// for such turns.
const DefaultCrisisSafetyMessage = "It sounds like you are carrying something very heavy right now, and I'm glad you told me. You deserve support from a real person immediately. Please call your local emergency number or a crisis helpline right away, or reach out to someone you trust. You don't have to face this alone."

type Config struct {
	// Model Configuration
	PrimaryModel string // model used for the first attempt of every turn
	BackupModel  string // model used for the single stateless retry

	// Context Configuration
	HistoryWindow   int // window size K for the windowed strategy
	ContextStrategy Strategy

	// Fixed responses
	SystemInstruction   string
	ApologyMessage      string
	CrisisSafetyMessage string

	// Performance Configuration
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.PrimaryModel == "" {
		return fmt.Errorf("primary_model is required")
	}
	if c.BackupModel == "" {
		return fmt.Errorf("backup_model is required")
	}
	if c.ContextStrategy != StrategyStateless && c.ContextStrategy != StrategyWindowed {
		return fmt.Errorf("context_strategy must be %q or %q", StrategyStateless, StrategyWindowed)
	}
	if c.ContextStrategy == StrategyWindowed && c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive for the windowed strategy")
	}
	if c.HistoryWindow > 20 {
		return fmt.Errorf("history_window cannot exceed 20")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		PrimaryModel:        "gemini-2.5-flash-lite",
		BackupModel:         "gemini-2.0-flash",
		HistoryWindow:       3,
		ContextStrategy:     StrategyWindowed,
		SystemInstruction:   DefaultSystemInstruction,
		ApologyMessage:      DefaultApologyMessage,
		CrisisSafetyMessage: DefaultCrisisSafetyMessage,
		Timeout:             60 * time.Second,
	}
}
