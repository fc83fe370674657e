package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/meghashyamc/toolshelf/retry"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestOpenAICompleteSendsSystemAndUserMessages(t *testing.T) {
	assert := require.New(t)
	model := &mockModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "a cinematic shot"}},
	}}
	completer := newOpenAIWithModel(newTestLogger(), model)

	text, err := completer.Complete(context.Background(), Request{
		System:      "system text",
		User:        "user text",
		Temperature: 0.7,
		MaxTokens:   500,
	})

	assert.NoError(err)
	assert.Equal("a cinematic shot", text)
	assert.Len(model.lastMessages, 2)
	assert.Equal(llms.ChatMessageTypeSystem, model.lastMessages[0].Role)
	assert.Equal(llms.TextPart("system text"), model.lastMessages[0].Parts[0])
	assert.Equal(llms.ChatMessageTypeHuman, model.lastMessages[1].Role)
	assert.Equal(llms.TextPart("user text"), model.lastMessages[1].Parts[0])
	assert.Equal(0.7, model.lastOptions.Temperature)
	assert.Equal(500, model.lastOptions.MaxTokens)
}

func TestOpenAICompleteWithoutChoicesReturnsEmptyText(t *testing.T) {
	completer := newOpenAIWithModel(newTestLogger(), &mockModel{response: &llms.ContentResponse{}})

	text, err := completer.Complete(context.Background(), Request{})

	require.NoError(t, err)
	require.Empty(t, text)
}

var openAIErrorTestCases = []struct {
	name           string
	err            error
	expectedStatus int
	retryable      bool
}{
	{
		name:           "RateLimited",
		err:            errors.New("API returned unexpected status code: 429: Rate limit reached"),
		expectedStatus: 429,
		retryable:      true,
	},
	{
		name:           "ServiceUnavailable",
		err:            fmt.Errorf("openai: %w", errors.New("API returned unexpected status code: 503")),
		expectedStatus: 503,
		retryable:      true,
	},
	{
		name:           "Unauthorized",
		err:            errors.New("API returned unexpected status code: 401: Incorrect API key provided"),
		expectedStatus: 401,
		retryable:      false,
	},
	{
		name:           "NetworkFailure",
		err:            errors.New("dial tcp: connection refused"),
		expectedStatus: 0,
		retryable:      false,
	},
}

func TestOpenAICompleteMapsErrorsToAPIError(t *testing.T) {
	for _, testCase := range openAIErrorTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			completer := newOpenAIWithModel(newTestLogger(), &mockModel{err: testCase.err})

			_, err := completer.Complete(context.Background(), Request{})

			var apiErr *APIError
			assert.ErrorAs(err, &apiErr)
			assert.Equal(testCase.expectedStatus, apiErr.StatusCode())
			assert.ErrorIs(err, testCase.err)
			assert.Equal(testCase.retryable, retry.IsRetryable(err))
		})
	}
}

func TestOpenAICompletePassesContextErrorsThrough(t *testing.T) {
	completer := newOpenAIWithModel(newTestLogger(), &mockModel{err: context.DeadlineExceeded})

	_, err := completer.Complete(context.Background(), Request{})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI(newTestLogger(), OpenAIConfig{Model: "gpt-4o-mini"})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
