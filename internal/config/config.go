package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nfrund/pairchat/internal/pubsub"
)

// Config holds all configuration for the application.
type Config struct {
	ServerAddr      string        `validate:"required"`
	LogFormat       string        `validate:"oneof=text json"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	WSAllowedOrigins []string      `validate:"min=1,dive,required"`
	WSSendBuffer     int           `validate:"gt=0"`
	WSWriteTimeout   time.Duration `validate:"gt=0"`
	WSReadLimit      int64         `validate:"gt=0"`

	Tracing pubsub.TracingConfig
}

var configValidator = validator.New()

// New loads configuration from a .env file, when present, and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		ServerAddr:       getString("SERVER_ADDR", ":8080"),
		LogFormat:        strings.ToLower(getString("LOG_FORMAT", "text")),
		LogLevel:         strings.ToLower(getString("LOG_LEVEL", "info")),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		WSAllowedOrigins: getList("WS_ALLOWED_ORIGINS", []string{"*"}),
		WSSendBuffer:     getInt("WS_SEND_BUFFER", 256, &errs),
		WSWriteTimeout:   getDuration("WS_WRITE_TIMEOUT", 10*time.Second, &errs),
		WSReadLimit:      int64(getInt("WS_READ_LIMIT", 4096, &errs)),
		Tracing:          pubsub.LoadTracingConfigFromEnv(),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

// getList splits a comma separated value, dropping empty items.
func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
