package llm

import (
	"context"
	"errors"

	"github.com/meghashyamc/toolshelf/logger"
	"google.golang.org/genai"
)

const (
	providerGemini     = "gemini"
	defaultGeminiModel = "gemini-2.5-flash"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCompleter talks to the Gemini API through the genai SDK.
type GeminiCompleter struct {
	models contentGenerator
	model  string
	logger logger.Logger
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

func NewGemini(ctx context.Context, logger logger.Logger, cfg GeminiConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("could not create gemini client", "err", err.Error())
		return nil, err
	}

	return newGeminiWithModels(logger, client.Models, cfg.Model), nil
}

func newGeminiWithModels(logger logger.Logger, models contentGenerator, model string) *GeminiCompleter {
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiCompleter{models: models, model: model, logger: logger}
}

func (c *GeminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:   int32(req.MaxTokens),
	}

	response, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.User), config)
	if err != nil {
		c.logger.Warn("gemini completion failed", "model", c.model, "err", err.Error())
		return "", toGeminiError(err)
	}

	if response == nil || len(response.Candidates) == 0 {
		c.logger.Debug("no candidates returned from model", "model", c.model)
		return "", nil
	}

	return response.Text(), nil
}

func toGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := statusFromMessage(err)

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		status = apiErrPtr.Code
	}

	return &APIError{Provider: providerGemini, Status: status, Err: err}
}
