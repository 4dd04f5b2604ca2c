package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	OpenAIAPIKey      string
	GradingModel      string
	GradingTimeout    time.Duration
	GradingMaxRetries int
	GradingBackoff    time.Duration
	ExamCacheTTL      time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXAMIND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Examind API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grading.model", "gpt-4o")
	v.SetDefault("grading.timeout", "60s")
	v.SetDefault("grading.max_retries", 3)
	v.SetDefault("grading.backoff", "800ms")
	v.SetDefault("exam.cache_ttl", "1m")

	gradingTimeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	gradingBackoff, err := time.ParseDuration(v.GetString("grading.backoff"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading backoff: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("exam.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid exam cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		GradingModel:      v.GetString("grading.model"),
		GradingTimeout:    gradingTimeout,
		GradingMaxRetries: v.GetInt("grading.max_retries"),
		GradingBackoff:    gradingBackoff,
		ExamCacheTTL:      cacheTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradingMaxRetries < 0 {
		cfg.GradingMaxRetries = 0
	}

	return cfg, nil
}
