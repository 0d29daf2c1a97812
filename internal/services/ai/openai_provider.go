// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible completion endpoint
// (the Gemini compatibility surface in the default deployment). It is
// stateless and safe for concurrent use; construct it once at process
// start and inject it wherever completions are needed.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, model, systemInstruction string, history []Turn, input string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == TurnRoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
		},
	)

	if err != nil {
		return "", p.wrapProviderError("completion", model, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Operation: "completion",
			Model:     model,
			Message:   "empty completion response",
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// wrapProviderError maps the transport-level status to a typed error.
// The status code is the sole source of the retry class: 404 means the
// model is unknown or withdrawn, 429 is a rate limit, 500/503 mean the
// service is down. Errors without an HTTP response are network failures.
func (p *OpenAIProvider) wrapProviderError(operation, model string, err error) *AIError {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}

	errType := ErrTypeProvider
	switch status {
	case 0:
		errType = ErrTypeNetwork
	case http.StatusNotFound:
		errType = ErrTypeModel
	case http.StatusTooManyRequests:
		errType = ErrTypeRateLimit
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		errType = ErrTypeUnavailable
	}

	return &AIError{
		Type:      errType,
		Code:      status,
		Operation: operation,
		Model:     model,
		Message:   operation + " request failed",
		Cause:     err,
	}
}

// HealthCheck verifies the endpoint is reachable and the credentials are
// accepted, via the cheapest call the API offers.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if _, err := p.client.ListModels(ctx); err != nil {
		return p.wrapProviderError("health_check", "", err)
	}
	return nil
}
