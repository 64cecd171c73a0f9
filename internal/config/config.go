package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the book archive settings.
// An empty URL selects the in-memory archive.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains all Gemini integration settings.
type LLMConfig struct {
	// GeminiAPIKey is optional here; a missing key surfaces as an
	// authentication failure on the first backend call.
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	TextModel    string        `mapstructure:"text_model" validate:"required"`
	ImageModel   string        `mapstructure:"image_model" validate:"required"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gte=1"`
	BaseDelay    time.Duration `mapstructure:"base_delay" validate:"gt=0"`
}

// SessionConfig contains reading-session settings.
type SessionConfig struct {
	QuizAdvanceDelay      time.Duration `mapstructure:"quiz_advance_delay" validate:"gt=0"`
	IllustrationWorkers   int           `mapstructure:"illustration_workers" validate:"gte=1"`
	IllustrationQueueSize int           `mapstructure:"illustration_queue_size" validate:"gte=1"`
	IdleTTL               time.Duration `mapstructure:"idle_ttl" validate:"gt=0"`
}
