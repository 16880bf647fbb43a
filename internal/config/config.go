package config

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration of the API server.
type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Metrics MetricsConfig
	Kafka   KafkaConfig
}

type AppConfig struct {
	Name string `env:"APP_NAME" envDefault:"qa-metrics"`
	// Region is reported by /health.
	Region string `env:"REGION" envDefault:"default"`
}

type LogConfig struct {
	Level    string `env:"APP_LOG_LEVEL" envDefault:"info"`
	Dir      string `env:"LOG_DIR" envDefault:"../log"`
	FileName string `env:"LOG_FILE" envDefault:"webService.log"`
	Console  bool   `env:"LOG_CONSOLE" envDefault:"false"`
}

type HTTPConfig struct {
	Port            string        `env:"PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"25s"`
	// MaxBodyBytes caps request bodies; 0 disables the limit.
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"10485760"`
}

type StorageConfig struct {
	QADBPath string `env:"QA_DB_PATH" envDefault:"../db/qa.db"`
}

type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	// Addr of the Prometheus listener, kept apart from the /metrics/* API routes.
	Addr string `env:"METRICS_ADDR" envDefault:":9102"`
}

type KafkaConfig struct {
	// Brokers to forward ingested logs to; empty disables forwarding.
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"request-logs"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

// Addr is the listen address derived from PORT.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort("", h.Port)
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// GeneratorConfig drives cmd/ingest.
type GeneratorConfig struct {
	TargetURL string        `env:"TARGET_URL" envDefault:"http://localhost:5000"`
	Count     int           `env:"GEN_COUNT" envDefault:"300"`
	BatchSize int           `env:"GEN_BATCH_SIZE" envDefault:"50"`
	Window    time.Duration `env:"GEN_WINDOW" envDefault:"6h"`
	Timeout   time.Duration `env:"GEN_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel  string        `env:"APP_LOG_LEVEL" envDefault:"info"`
}

func LoadGenerator() (*GeneratorConfig, error) {
	cfg := &GeneratorConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse generator config: %w", err)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("GEN_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}
