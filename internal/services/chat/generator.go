// File: internal/services/chat/generator.go
package chat

import (
	"context"

	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/services/ai"
)

// HistoryProvider supplies the recent persisted messages of a chat,
// newest first. The message repository satisfies it directly; the atomic
// create-chat path passes a transaction-bound view instead.
type HistoryProvider interface {
	FindRecentByChatID(ctx context.Context, chatID uint, limit int) ([]domain.Message, error)
}

// Generator produces the assistant reply for one turn. Generate never
// returns an error: every failure path degrades to a displayable string,
// so a turn is never left without a visible response.
type Generator struct {
	config   *Config
	provider ai.CompletionProvider
	logger   Logger
}

func NewGenerator(config *Config, provider ai.CompletionProvider, logger Logger) *Generator {
	return &Generator{
		config:   config,
		provider: provider,
		logger:   logger,
	}
}

// Generate builds the context window per the configured strategy, invokes
// the primary model, and on a retryable failure makes exactly one
// stateless attempt against the backup model. If both fail, or the
// primary failure is permanent, it returns the fixed apology.
func (g *Generator) Generate(ctx context.Context, history HistoryProvider, chatID uint, current string) string {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	window := g.buildContext(ctx, history, chatID, current)

	reply, err := g.provider.Complete(ctx, g.config.PrimaryModel, g.config.SystemInstruction, window, current)
	if err == nil {
		return reply
	}

	g.logger.Error("primary completion failed",
		"chat_id", chatID,
		"model", g.config.PrimaryModel,
		"classification", string(ai.Classify(err)),
		"error", err,
	)

	if ai.Classify(err) != ai.ClassRetryable {
		return g.config.ApologyMessage
	}

	// Single backup attempt with an empty window: resetting the history
	// keeps the retry from tripping over whatever broke the primary call.
	reply, err = g.provider.Complete(ctx, g.config.BackupModel, g.config.SystemInstruction, nil, current)
	if err != nil {
		g.logger.Error("backup completion failed",
			"chat_id", chatID,
			"model", g.config.BackupModel,
			"error", err,
		)
		return g.config.ApologyMessage
	}

	return reply
}

// buildContext returns the window for the configured strategy. A history
// read failure degrades to stateless generation rather than failing the
// turn.
func (g *Generator) buildContext(ctx context.Context, history HistoryProvider, chatID uint, current string) []ai.Turn {
	if g.config.ContextStrategy != StrategyWindowed || history == nil {
		return nil
	}

	recent, err := history.FindRecentByChatID(ctx, chatID, g.config.HistoryWindow)
	if err != nil {
		g.logger.Warn("history fetch failed; generating stateless", "chat_id", chatID, "error", err)
		return nil
	}

	return BuildWindow(reverseChronological(recent), current, g.config.HistoryWindow)
}
