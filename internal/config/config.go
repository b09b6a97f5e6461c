// Package config centralises configuration parsing for the dashboard.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// allTypes in RECORD_TYPES is the explicit form of the empty default.
const allTypes = "*"

// Config captures runtime configuration values for the dashboard.
type Config struct {
	HTTPAddress     string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	MaxUploadBytes  int64    `env:"MAX_UPLOAD_BYTES" envDefault:"536870912"`
	MaxEntryBytes   int64    `env:"MAX_ENTRY_BYTES" envDefault:"2147483648"`
	ExportEntryName string   `env:"EXPORT_ENTRY_NAME" envDefault:"export.xml"`
	RecordTypes     []string `env:"RECORD_TYPES" envSeparator:","`

	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string        `env:"KAFKA_TOPIC" envDefault:"health_uploads"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`
}

// Load reads environment variables into Config, applying defaults for local use.
// An empty RECORD_TYPES or "*" keeps every record type.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)
	cfg.RecordTypes = trimAll(cfg.RecordTypes)
	if slices.Contains(cfg.RecordTypes, allTypes) || len(cfg.RecordTypes) == 0 {
		cfg.RecordTypes = nil
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PublishingEnabled reports whether upload summaries go to Kafka.
func (c Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) validate() error {
	var errs []error
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be > 0"))
	}
	if c.MaxEntryBytes <= 0 {
		errs = append(errs, errors.New("MAX_ENTRY_BYTES must be > 0"))
	}
	if strings.TrimSpace(c.ExportEntryName) == "" {
		errs = append(errs, errors.New("EXPORT_ENTRY_NAME is required"))
	}
	if c.PublishingEnabled() && strings.TrimSpace(c.KafkaTopic) == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
