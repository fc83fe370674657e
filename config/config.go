package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

const (
	defaultPort              = "8080"
	defaultRetryMaxRetries   = 3
	defaultRetryInitialDelay = time.Second
	defaultPromptRateLimit   = 2.0
	defaultPromptRateBurst   = 5
)

type Config struct {
	config *viper.Viper
}

// Load reads config/config.<env>.yaml (if it can be found) and lets environment variables
// override it. An empty env falls back to $ENV and then to "local".
func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.getString("PORT", "server.port")
	if len(port) == 0 {
		port = defaultPort
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	return c.getString("KVDB_PATH", "database.kvdb_path")
}

func (c *Config) GetIndexPath() string {
	return c.getString("INDEX_PATH", "database.index_path")
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path")
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level")
}

func (c *Config) GetLLMProvider() string {
	provider := strings.ToLower(c.getString("LLM_PROVIDER", "llm.provider"))
	if len(provider) == 0 {
		provider = LLMProviderOpenAI
	}

	return provider
}

// GetLLMAPIKey returns the completion API credential with surrounding whitespace removed.
func (c *Config) GetLLMAPIKey() string {
	return strings.TrimSpace(c.getString("LLM_API_KEY", "llm.api_key"))
}

func (c *Config) GetLLMModel() string {
	return c.getString("LLM_MODEL", "llm.model")
}

func (c *Config) GetLLMBaseURL() string {
	return c.getString("LLM_BASE_URL", "llm.base_url")
}

func (c *Config) GetRetryMaxRetries() int {
	maxRetries := c.getInt("RETRY_MAX_RETRIES", "retry.max_retries")
	if maxRetries < 1 {
		maxRetries = defaultRetryMaxRetries
	}

	return maxRetries
}

func (c *Config) GetRetryInitialDelay() time.Duration {
	delay := c.config.GetDuration("RETRY_INITIAL_DELAY")
	if delay <= 0 {
		delay = c.config.GetDuration("retry.initial_delay")
	}
	if delay <= 0 {
		delay = defaultRetryInitialDelay
	}

	return delay
}

// GetPromptRateLimit is the number of prompt generations per second allowed at the HTTP edge.
func (c *Config) GetPromptRateLimit() float64 {
	limit := c.config.GetFloat64("PROMPT_RATE_LIMIT")
	if limit <= 0 {
		limit = c.config.GetFloat64("prompt.rate_limit")
	}
	if limit <= 0 {
		limit = defaultPromptRateLimit
	}

	return limit
}

func (c *Config) GetPromptRateBurst() int {
	burst := c.getInt("PROMPT_RATE_BURST", "prompt.rate_burst")
	if burst < 1 {
		burst = defaultPromptRateBurst
	}

	return burst
}

func (c *Config) getString(envKey string, fileKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}

	return value
}

func (c *Config) getInt(envKey string, fileKey string) int {
	value := c.config.GetInt(envKey)
	if value == 0 {
		value = c.config.GetInt(fileKey)
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
