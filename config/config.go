package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Registry   RegistryConfig
	Classifier ClassifierConfig
	Matching   MatchingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig points at the product catalog CSV
type CatalogConfig struct {
	Path              string `mapstructure:"path"`
	IngredientsColumn string `mapstructure:"ingredients_column"`
}

// RegistryConfig optionally overrides the built-in category table with a YAML file
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// ClassifierConfig selects and configures the ingredient classifier
type ClassifierConfig struct {
	Type             string        `mapstructure:"type"` // "local" or "remote"
	ModelPath        string        `mapstructure:"model_path"`
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Rate             float64       `mapstructure:"rate"` // requests per second to the remote classifier
	Burst            int           `mapstructure:"burst"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	BreakerOpenDelay time.Duration `mapstructure:"breaker_open_delay"`
}

// MatchingConfig holds product matching configuration
type MatchingConfig struct {
	Strategy           string `mapstructure:"strategy"` // "scan" or "index"
	EnableDebugLogging bool   `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory"
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per second per client IP; 0 disables
	Burst int `mapstructure:"burst"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/skinmatch/")

	// Environment variable settings: SKINMATCH_CLASSIFIER_MODEL_PATH -> classifier.model_path
	v.SetEnvPrefix("SKINMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "15s")

	// Data defaults
	v.SetDefault("catalog.path", "data/products.csv")
	v.SetDefault("catalog.ingredients_column", "ingridients")
	v.SetDefault("registry.path", "")

	// Classifier defaults
	v.SetDefault("classifier.type", "local")
	v.SetDefault("classifier.model_path", "models/skin_model.json")
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.timeout", "5s")
	v.SetDefault("classifier.rate", 20.0)
	v.SetDefault("classifier.burst", 5)
	v.SetDefault("classifier.breaker_failures", 5)
	v.SetDefault("classifier.breaker_open_delay", "30s")

	// Matching defaults
	v.SetDefault("matching.strategy", "scan")
	v.SetDefault("matching.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 20)
	v.SetDefault("ratelimit.burst", 40)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set SKINMATCH_CATALOG_PATH)")
	}

	switch config.Classifier.Type {
	case "local":
		if config.Classifier.ModelPath == "" {
			return fmt.Errorf("model path is required when classifier type is 'local'")
		}
	case "remote":
		if config.Classifier.BaseURL == "" {
			return fmt.Errorf("base URL is required when classifier type is 'remote'")
		}
		if config.Classifier.Timeout <= 0 {
			return fmt.Errorf("classifier timeout must be positive, got: %s", config.Classifier.Timeout)
		}
	default:
		return fmt.Errorf("classifier type must be 'local' or 'remote', got: %s", config.Classifier.Type)
	}

	if config.Matching.Strategy != "scan" && config.Matching.Strategy != "index" {
		return fmt.Errorf("matching strategy must be 'scan' or 'index', got: %s", config.Matching.Strategy)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
