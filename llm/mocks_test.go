package llm

import (
	"context"
	"log/slog"
	"os"

	"github.com/meghashyamc/toolshelf/logger"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mockModel struct {
	lastMessages []llms.MessageContent
	lastOptions  llms.CallOptions
	response     *llms.ContentResponse
	err          error
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.lastMessages = messages
	m.lastOptions = llms.CallOptions{}
	for _, option := range options {
		option(&m.lastOptions)
	}
	return m.response, m.err
}

func (m *mockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

type mockGenerator struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	response     *genai.GenerateContentResponse
	err          error
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	return m.response, m.err
}
