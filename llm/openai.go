package llm

import (
	"context"
	"errors"

	"github.com/meghashyamc/toolshelf/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const providerOpenAI = "openai"

// OpenAICompleter talks to OpenAI or any OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	model  llms.Model
	logger logger.Logger
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewOpenAI(logger logger.Logger, cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		logger.Error("could not create openai client", "err", err.Error())
		return nil, err
	}

	return newOpenAIWithModel(logger, client), nil
}

func newOpenAIWithModel(logger logger.Logger, model llms.Model) *OpenAICompleter {
	return &OpenAICompleter{model: model, logger: logger}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(req.User)},
		},
	}

	response, err := c.model.GenerateContent(ctx, content,
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	)
	if err != nil {
		c.logger.Warn("openai completion failed", "err", err.Error())
		return "", toOpenAIError(err)
	}

	if len(response.Choices) == 0 {
		c.logger.Debug("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}

func toOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &APIError{Provider: providerOpenAI, Status: statusFromMessage(err), Err: err}
}
