package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Debug   bool
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
	}

	// LLM provider configuration
	LLM struct {
		Provider        string
		OpenAIKey       string
		AnthropicKey    string
		OpenAIModel     string
		AnthropicModel  string
		Timeout         time.Duration
		MaxPromptChars  int
		MaxOutputTokens int
	}

	// Chat behavior configuration
	Chat struct {
		HistoryWindow    int
		MaxMessageLength int
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

// Provider names recognized by the LLM configuration
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Debug = getEnvBool("DEBUG", false)
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "techpal")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)

		// LLM config
		instance.LLM.Provider = getEnvString("LLM_PROVIDER", ProviderOpenAI)
		instance.LLM.OpenAIKey = getEnvString("OPENAI_API_KEY", "")
		instance.LLM.AnthropicKey = getEnvString("ANTHROPIC_API_KEY", "")
		instance.LLM.OpenAIModel = getEnvString("OPENAI_MODEL", "gpt-3.5-turbo")
		instance.LLM.AnthropicModel = getEnvString("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
		instance.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", 30*time.Second)
		instance.LLM.MaxPromptChars = getEnvInt("LLM_MAX_PROMPT_CHARS", 24000)
		instance.LLM.MaxOutputTokens = getEnvInt("LLM_MAX_OUTPUT_TOKENS", 500)

		// Chat config
		instance.Chat.HistoryWindow = getEnvInt("HISTORY_WINDOW", 20)
		instance.Chat.MaxMessageLength = getEnvInt("MAX_MESSAGE_LENGTH", 1000)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
