// Package config centralises configuration parsing for the wellness service.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config captures runtime configuration values for the wellness processes.
type Config struct {
	HTTPAddress       string     `envconfig:"HTTP_ADDRESS" default:":8080" validate:"required"`
	MetricsAddress    string     `envconfig:"METRICS_ADDRESS" default:":9195" validate:"required"`
	LogLevel          slog.Level `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowedOrigin string     `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:5173"`
	MaxUploadBytes    int64      `envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
	HeaderAliasesPath string     `envconfig:"HEADER_ALIASES_PATH"`

	// PostgresURL is optional for the API; without it snapshots live in memory only.
	PostgresURL        string        `envconfig:"POSTGRES_URL"`
	KafkaBrokers       []string      `envconfig:"KAFKA_BROKERS" default:"kafka:9092"`
	SchemaRegistryURL  string        `envconfig:"SCHEMA_REGISTRY_URL" default:"http://schema-registry:8081" validate:"omitempty,url"`
	SummaryTopic       string        `envconfig:"SUMMARY_TOPIC" default:"wellness_summary_events" validate:"required"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s" validate:"gt=0"`
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"25" validate:"gt=0"`
	DLQPollInterval    time.Duration `envconfig:"DLQ_POLL_INTERVAL" default:"30s" validate:"gt=0"`
	DLQMaxRetries      int           `envconfig:"DLQ_MAX_RETRIES" default:"5" validate:"gte=0"`
	DLQBaseDelay       time.Duration `envconfig:"DLQ_BASE_DELAY" default:"1m" validate:"gt=0"`
	ConsumerGroupID    string        `envconfig:"CONSUMER_GROUP_ID" default:"wellness-summary-log" validate:"required"`
	ConsumerTopics     []string      `envconfig:"CONSUMER_TOPICS" default:"wellness_summary_events" validate:"min=1"`

	InsightsAPIKey        string        `envconfig:"INSIGHTS_API_KEY"`
	InsightsModel         string        `envconfig:"INSIGHTS_MODEL" default:"llama-3.3-70b"`
	InsightsBaseURL       string        `envconfig:"INSIGHTS_BASE_URL" default:"https://api.cerebras.ai/v1" validate:"required,url"`
	InsightsTimeout       time.Duration `envconfig:"INSIGHTS_TIMEOUT" default:"30s" validate:"gt=0"`
	InsightsMaxRetries    int           `envconfig:"INSIGHTS_MAX_RETRIES" default:"2" validate:"gte=0"`
	InsightsRatePerMinute int           `envconfig:"INSIGHTS_RATE_PER_MINUTE" default:"30" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads environment variables into Config and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.KafkaBrokers = splitAndTrim(cfg.KafkaBrokers)
	cfg.ConsumerTopics = splitAndTrim(cfg.ConsumerTopics)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DurableStorage reports whether a Postgres connection is configured.
func (c Config) DurableStorage() bool {
	return c.PostgresURL != ""
}

func splitAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
