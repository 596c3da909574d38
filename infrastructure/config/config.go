package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	domaincfg "inklings-backend/domain/config"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/utils"
)

// Config is the process configuration, loaded from an optional YAML file
// with environment variable overrides on top
type Config struct {
	Environment string `yaml:"environment" validate:"required,oneof=development staging production"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	Storage   StorageConfig   `yaml:"storage"`
	Events    EventsConfig    `yaml:"events"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// StorageConfig selects and parameterizes the persistence backend
type StorageConfig struct {
	Backend   string `yaml:"backend" validate:"required,oneof=memory dynamodb"`
	TableName string `yaml:"table_name" validate:"required_if=Backend dynamodb"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
}

// EventsConfig parameterizes the event bus; an empty bus name means events
// are logged instead of published
type EventsConfig struct {
	BusName string `yaml:"bus_name"`
}

// EmbeddingConfig parameterizes the external vector provider
type EmbeddingConfig struct {
	Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
}

// SearchConfig is the hot-reloadable similarity tuning
type SearchConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gt=0,lte=2"`
	DefaultLimit        int     `yaml:"default_limit" validate:"min=1"`
	MaxLimit            int     `yaml:"max_limit" validate:"min=1"`
}

// MetricsConfig parameterizes the Prometheus endpoint
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads configuration from the YAML file at path (skipped when empty),
// applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	defaults := domaincfg.DefaultDomainConfig()
	cfg := &Config{
		Environment: "development",
		LogLevel:    "info",
		Storage: StorageConfig{
			Backend: "memory",
			Region:  "us-east-1",
		},
		Embedding: EmbeddingConfig{
			Timeout: 10 * time.Second,
		},
		Search: SearchConfig{
			SimilarityThreshold: defaults.SimilarityThreshold,
			DefaultLimit:        defaults.DefaultSearchLimit,
			MaxLimit:            defaults.MaxSearchLimit,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to parse config file")
		}
	}

	applyEnvOverrides(cfg)

	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Domain converts the search tuning into the domain's configuration shape
func (c *Config) Domain() domaincfg.DomainConfig {
	out := *domaincfg.DefaultDomainConfig()
	out.SimilarityThreshold = c.Search.SimilarityThreshold
	out.DefaultSearchLimit = c.Search.DefaultLimit
	out.MaxSearchLimit = c.Search.MaxLimit
	return out
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Environment, "INKLINGS_ENVIRONMENT")
	setString(&cfg.LogLevel, "INKLINGS_LOG_LEVEL")
	setString(&cfg.Storage.Backend, "INKLINGS_STORAGE_BACKEND")
	setString(&cfg.Storage.TableName, "INKLINGS_TABLE_NAME")
	setString(&cfg.Storage.Region, "AWS_REGION")
	setString(&cfg.Storage.Endpoint, "INKLINGS_DYNAMODB_ENDPOINT")
	setString(&cfg.Events.BusName, "INKLINGS_EVENT_BUS")
	setString(&cfg.Embedding.Endpoint, "INKLINGS_EMBEDDING_ENDPOINT")
	setString(&cfg.Metrics.ListenAddr, "INKLINGS_METRICS_ADDR")
	setFloat(&cfg.Search.SimilarityThreshold, "INKLINGS_SIMILARITY_THRESHOLD")
	setInt(&cfg.Search.DefaultLimit, "INKLINGS_SEARCH_DEFAULT_LIMIT")
	setInt(&cfg.Search.MaxLimit, "INKLINGS_SEARCH_MAX_LIMIT")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setFloat(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*target = parsed
		}
	}
}

func setInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}
