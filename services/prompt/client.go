// Package prompt turns structured video descriptions into prompts for video generation models.
package prompt

import (
	"context"
	"net/http"
	"strings"

	"github.com/meghashyamc/toolshelf/llm"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/retry"
)

const (
	temperature = 0.7
	maxTokens   = 500
)

type Validator interface {
	Validate(i any) error
}

type Client struct {
	completer llm.Completer
	validator Validator
	logger    logger.Logger
	policy    retry.Policy
}

func NewClient(logger logger.Logger, completer llm.Completer, validator Validator, policy retry.Policy) *Client {
	return &Client{
		completer: completer,
		validator: validator,
		logger:    logger,
		policy:    policy,
	}
}

// GenerateVideoPrompt returns a non-empty trimmed prompt or one of ValidationError,
// GenerationError, RateLimitError, ServerError or UnknownError.
func (c *Client) GenerateVideoPrompt(ctx context.Context, req Request) (string, error) {
	if err := c.validator.Validate(req); err != nil {
		return "", &ValidationError{Err: err}
	}

	completionRequest := llm.Request{
		System:      BuildSystemPrompt(req.OutputLanguage),
		User:        BuildUserPrompt(req),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	text, err := retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.completer.Complete(ctx, completionRequest)
	})
	if err != nil {
		c.logger.Error("could not generate video prompt", "language", req.OutputLanguage.String(), "err", err.Error())
		return "", classify(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.logger.Warn("completion api returned an empty prompt", "language", req.OutputLanguage.String())
		return "", &GenerationError{Err: ErrEmptyResult}
	}

	c.logger.Info("generated video prompt", "language", req.OutputLanguage.String(), "length", len(text))
	return text, nil
}

func classify(err error) error {
	status, ok := retry.StatusOf(err)
	switch {
	case !ok || status == 0:
		return &UnknownError{Err: err}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Status: status, Err: err}
	case retry.IsRetryableStatus(status):
		return &ServerError{Status: status, Err: err}
	default:
		return &GenerationError{Status: status, Err: err}
	}
}
