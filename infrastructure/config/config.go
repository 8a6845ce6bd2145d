package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Persistence drivers for the user-data snapshot.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Upstream PMWiki backend API
	UpstreamBaseURL string        `yaml:"upstream_base_url"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	// User-data persistence
	PersistenceDriver string `yaml:"persistence_driver"` // memory | file | dynamodb
	DataDir           string `yaml:"data_dir"`           // file driver
	AWSRegion         string `yaml:"aws_region"`         // dynamodb driver
	DynamoDBTable     string `yaml:"dynamodb_table"`     // dynamodb driver
	UserDataKey       string `yaml:"user_data_key"`

	// Upstream response caching
	GraphCacheTTL   time.Duration `yaml:"graph_cache_ttl"`
	SectionCacheTTL time.Duration `yaml:"section_cache_ttl"`

	// Logging and features
	LogLevel      string `yaml:"log_level"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableCORS    bool   `yaml:"enable_cors"`

	// Optional YAML overlay file (also watched for changes in development)
	ConfigFile string `yaml:"-"`
}

// LoadConfig loads configuration from environment variables, then applies
// the optional YAML overlay file named by CONFIG_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		PersistenceDriver: getEnv("PERSISTENCE_DRIVER", DriverFile),
		DataDir:           getEnv("DATA_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:     getEnv("DYNAMODB_TABLE", "pmwiki-userdata"),
		UserDataKey:       getEnv("USER_DATA_KEY", ""),

		GraphCacheTTL:   getEnvDuration("GRAPH_CACHE_TTL", 5*time.Minute),
		SectionCacheTTL: getEnvDuration("SECTION_CACHE_TTL", 15*time.Minute),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		ConfigFile: getEnv("CONFIG_FILE", ""),
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyOverlay(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyOverlay merges settings from a YAML file over the env-derived
// values. Fields absent from the file keep their current values.
func (c *Config) applyOverlay(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(blob, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.PersistenceDriver {
	case DriverMemory, DriverFile, DriverDynamoDB:
	default:
		return fmt.Errorf("unknown persistence driver %q", c.PersistenceDriver)
	}

	if c.PersistenceDriver == DriverDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb driver")
	}

	if c.Environment == "production" {
		if c.UpstreamBaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable with a default value.
// Plain integers are interpreted as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
