package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML
// configuration file
const ConfigFileEnv = "ALLOT_CONFIG_FILE"

// Config holds all application configuration
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" yaml:"environment"`
	LogLevel    string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	ServiceName string `envconfig:"SERVICE_NAME" yaml:"service_name"`

	// Store
	AWSRegion          string `envconfig:"AWS_REGION" yaml:"aws_region"`
	DynamoDBEndpoint   string `envconfig:"DYNAMODB_ENDPOINT" yaml:"dynamodb_endpoint"`
	TableName          string `envconfig:"TABLE_NAME" yaml:"table_name"`
	ReadCapacityUnits  int64  `envconfig:"READ_CAPACITY_UNITS" yaml:"read_capacity_units"`
	WriteCapacityUnits int64  `envconfig:"WRITE_CAPACITY_UNITS" yaml:"write_capacity_units"`
	ReturnValues       string `envconfig:"RETURN_VALUES" yaml:"return_values"`
	OptimisticLocking  bool   `envconfig:"OPTIMISTIC_LOCKING" yaml:"optimistic_locking"`
	CreateTable        bool   `envconfig:"CREATE_TABLE" yaml:"create_table"`

	// Ingest
	ClusterFiles      []string `envconfig:"CLUSTER_FILES" yaml:"cluster_files"`
	IngestConcurrency int      `envconfig:"INGEST_CONCURRENCY" yaml:"ingest_concurrency"`

	// Observability
	EventBusName     string `envconfig:"EVENT_BUS_NAME" yaml:"event_bus_name"`
	EnableMetrics    bool   `envconfig:"ENABLE_METRICS" yaml:"enable_metrics"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" yaml:"metrics_namespace"`
	EnableTracing    bool   `envconfig:"ENABLE_TRACING" yaml:"enable_tracing"`
}

// Default returns the built-in configuration: a local DynamoDB-compatible
// endpoint and the servers table with 10 read / 5 write units.
func Default() *Config {
	return &Config{
		Environment:        "development",
		LogLevel:           "info",
		ServiceName:        "allot",
		AWSRegion:          "us-east-1",
		DynamoDBEndpoint:   "http://localhost:4566",
		TableName:          "servers",
		ReadCapacityUnits:  10,
		WriteCapacityUnits: 5,
		ReturnValues:       "NONE",
		IngestConcurrency:  1,
		MetricsNamespace:   "Allot",
	}
}

// LoadConfig loads configuration from defaults, the optional file named by
// ALLOT_CONFIG_FILE and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv(ConfigFileEnv))
}

// LoadConfigFrom is LoadConfig with an explicit file path; an empty path
// skips the file layer.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	cfg.ReturnValues = strings.ToUpper(cfg.ReturnValues)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.ReadCapacityUnits < 1 || c.WriteCapacityUnits < 1 {
		return fmt.Errorf("capacity units must be positive, got read=%d write=%d",
			c.ReadCapacityUnits, c.WriteCapacityUnits)
	}
	switch c.ReturnValues {
	case "NONE", "ALL_OLD":
	default:
		return fmt.Errorf("RETURN_VALUES must be NONE or ALL_OLD, got %q", c.ReturnValues)
	}
	if c.IngestConcurrency < 1 {
		return fmt.Errorf("INGEST_CONCURRENCY must be at least 1, got %d", c.IngestConcurrency)
	}
	if c.EnableMetrics && c.MetricsNamespace == "" {
		return fmt.Errorf("METRICS_NAMESPACE is required when metrics are enabled")
	}
	return nil
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
