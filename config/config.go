package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Catalog   CatalogConfig
	Resolver  ResolverConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds generative AI configuration
type GeminiConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	FastModel string `mapstructure:"fast_model"`
}

// CatalogConfig holds product catalog API configuration
type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ResolverConfig holds resolution pipeline tuning
type ResolverConfig struct {
	AITimeout      time.Duration `mapstructure:"ai_timeout"`
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`
	MinConfidence  float64       `mapstructure:"min_confidence"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip"`
	Catalog int `mapstructure:"catalog"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ecolens/")

	// Environment variable settings
	v.SetEnvPrefix("ECOLENS")
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.fast_model", "gemini-2.5-flash-lite")

	// Catalog defaults
	v.SetDefault("catalog.base_url", "https://world.openfoodfacts.org")

	// Resolver defaults
	v.SetDefault("resolver.ai_timeout", "6s")
	v.SetDefault("resolver.catalog_timeout", "3s")
	v.SetDefault("resolver.min_confidence", 0.0)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.catalog", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set ECOLENS_GEMINI_API_KEY)")
	}

	if config.Resolver.AITimeout <= 0 {
		return fmt.Errorf("resolver AI timeout must be positive, got: %s", config.Resolver.AITimeout)
	}

	if config.Resolver.CatalogTimeout <= 0 {
		return fmt.Errorf("resolver catalog timeout must be positive, got: %s", config.Resolver.CatalogTimeout)
	}

	if config.Resolver.MinConfidence < 0 || config.Resolver.MinConfidence > 1 {
		return fmt.Errorf("resolver min confidence must be in [0,1], got: %f", config.Resolver.MinConfidence)
	}

	return nil
}
