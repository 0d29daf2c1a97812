// File: internal/services/ai/interface.go
package ai

import "context"

// Wire roles of the generation API. The persistence layer maps its own
// role variants onto these exactly once, at the boundary.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// Turn is one prior conversation entry supplied as model context.
type Turn struct {
	Role string
	Text string
}

// CompletionProvider is the outbound contract to the generation service:
// a system instruction sent with every invocation, an ordered (possibly
// empty) history window, and the current user input.
type CompletionProvider interface {
	Complete(ctx context.Context, model, systemInstruction string, history []Turn, input string) (string, error)
	HealthCheck(ctx context.Context) error
}
