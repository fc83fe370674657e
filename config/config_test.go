package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadTestConfig(t *testing.T) {
	assert := require.New(t)

	cfg, err := Load("test")
	assert.NoError(err, "could not load config")

	assert.Equal("8081", cfg.GetPort())
	assert.Equal("test-key", cfg.GetLLMAPIKey(), "api key should be whitespace-stripped")
	assert.Equal(LLMProviderOpenAI, cfg.GetLLMProvider())
	assert.Equal(3, cfg.GetRetryMaxRetries())
	assert.Equal(time.Millisecond, cfg.GetRetryInitialDelay())
}

func TestEnvOverridesFile(t *testing.T) {
	assert := require.New(t)
	t.Setenv("PORT", "9999")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_API_KEY", "\tenv-key\n")
	t.Setenv("RETRY_MAX_RETRIES", "5")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")

	cfg, err := Load("test")
	assert.NoError(err)

	assert.Equal("9999", cfg.GetPort())
	assert.Equal(LLMProviderGemini, cfg.GetLLMProvider())
	assert.Equal("env-key", cfg.GetLLMAPIKey())
	assert.Equal(5, cfg.GetRetryMaxRetries())
	assert.Equal(250*time.Millisecond, cfg.GetRetryInitialDelay())
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	assert := require.New(t)

	cfg, err := Load("missing-env")
	assert.NoError(err, "a missing config file is not an error")

	assert.Equal(defaultPort, cfg.GetPort())
	assert.Equal(LLMProviderOpenAI, cfg.GetLLMProvider())
	assert.Equal(defaultRetryMaxRetries, cfg.GetRetryMaxRetries())
	assert.Equal(defaultRetryInitialDelay, cfg.GetRetryInitialDelay())
	assert.Equal(defaultPromptRateBurst, cfg.GetPromptRateBurst())
}
