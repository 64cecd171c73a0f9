package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "PICTUREBOOK"

// LegacyAPIKeyEnv is the bare credential variable the browser build used.
// It is honoured when the prefixed key is absent.
const LegacyAPIKeyEnv = "API_KEY"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("picturebook")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", LegacyAPIKeyEnv); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a populated Config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Default returns a Config holding every default value. It is used by the
// CLI commands that run without a config file and by tests.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		LLM: LLMConfig{
			TextModel:   "gemini-2.5-flash",
			ImageModel:  "gemini-2.5-flash-image",
			MaxAttempts: 2,
			BaseDelay:   time.Second,
		},
		Session: SessionConfig{
			QuizAdvanceDelay:      2 * time.Second,
			IllustrationWorkers:   4,
			IllustrationQueueSize: 64,
			IdleTTL:               2 * time.Hour,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.log_level", d.Server.LogLevel)

	v.SetDefault("database.url", "")

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.text_model", d.LLM.TextModel)
	v.SetDefault("llm.image_model", d.LLM.ImageModel)
	v.SetDefault("llm.max_attempts", d.LLM.MaxAttempts)
	v.SetDefault("llm.base_delay", d.LLM.BaseDelay)

	v.SetDefault("session.quiz_advance_delay", d.Session.QuizAdvanceDelay)
	v.SetDefault("session.illustration_workers", d.Session.IllustrationWorkers)
	v.SetDefault("session.illustration_queue_size", d.Session.IllustrationQueueSize)
	v.SetDefault("session.idle_ttl", d.Session.IdleTTL)
}
