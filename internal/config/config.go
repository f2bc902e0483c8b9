// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Catalog sources.
const (
	CatalogImgflip = "imgflip"
	CatalogFile    = "file"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	StoreDriver           string `mapstructure:"STORE_DRIVER"`
	StorePath             string `mapstructure:"STORE_PATH"`
	StoreMaxWriteAttempts int    `mapstructure:"STORE_MAX_WRITE_ATTEMPTS"`
	DBHost                string `mapstructure:"DB_HOST"`
	DBPort                string `mapstructure:"DB_PORT"`
	DBUser                string `mapstructure:"DB_USER"`
	DBPassword            string `mapstructure:"DB_PASSWORD"`
	DBName                string `mapstructure:"DB_NAME"`
	DBSSLMode             string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`
	NATSURL  string `mapstructure:"NATS_URL"`

	CatalogSource          string `mapstructure:"CATALOG_SOURCE"`
	CatalogURL             string `mapstructure:"CATALOG_URL"`
	CatalogFile            string `mapstructure:"CATALOG_FILE"`
	CatalogTimeoutSeconds  int    `mapstructure:"CATALOG_TIMEOUT_SECONDS"`
	CatalogCacheTTLSeconds int    `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
	CatalogDemoFields      bool   `mapstructure:"CATALOG_DEMO_FIELDS"`
	CatalogDemoSeed        int64  `mapstructure:"CATALOG_DEMO_SEED"`

	CloudinaryCloudName    string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey       string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret    string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryUploadPreset string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`
	CloudinaryFolder       string `mapstructure:"CLOUDINARY_FOLDER"`
	UploadMaxSizeMB        int    `mapstructure:"UPLOAD_MAX_SIZE_MB"`

	LeaderboardSize int `mapstructure:"LEADERBOARD_SIZE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("unable to read profile-specific config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("STORE_PATH", "data/memeverse.db")
	viper.SetDefault("STORE_MAX_WRITE_ATTEMPTS", 3)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "memeverse")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("CATALOG_SOURCE", CatalogImgflip)
	viper.SetDefault("CATALOG_URL", "https://api.imgflip.com")
	viper.SetDefault("CATALOG_FILE", "")
	viper.SetDefault("CATALOG_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("CATALOG_DEMO_FIELDS", false)
	viper.SetDefault("CATALOG_DEMO_SEED", 42)
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("CLOUDINARY_UPLOAD_PRESET", "")
	viper.SetDefault("CLOUDINARY_FOLDER", "memeverse")
	viper.SetDefault("UPLOAD_MAX_SIZE_MB", 10)
	viper.SetDefault("LEADERBOARD_SIZE", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.StoreDriver = strings.ToLower(strings.TrimSpace(config.StoreDriver))
	config.CatalogSource = strings.ToLower(strings.TrimSpace(config.CatalogSource))
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.StoreMaxWriteAttempts < 1 {
		return errors.New("STORE_MAX_WRITE_ATTEMPTS must be at least 1")
	}
	if c.LeaderboardSize < 1 {
		return errors.New("LEADERBOARD_SIZE must be at least 1")
	}
	if c.UploadMaxSizeMB < 1 {
		return errors.New("UPLOAD_MAX_SIZE_MB must be at least 1")
	}

	switch c.StoreDriver {
	case DriverSQLite:
		if c.StorePath == "" {
			return errors.New("STORE_PATH is required for the sqlite store")
		}
		if c.IsProduction() && c.StorePath == ":memory:" {
			return errors.New("an in-memory store is not durable and cannot be used in production")
		}
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres store")
		}
		if c.IsProduction() && (c.DBSSLMode == "disable" || c.DBSSLMode == "") {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.CatalogSource {
	case CatalogImgflip:
		if c.CatalogURL == "" {
			return errors.New("CATALOG_URL is required for the imgflip catalog")
		}
	case CatalogFile:
		if c.CatalogFile == "" {
			return errors.New("CATALOG_FILE is required for the file catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	if c.TracingEnabled && (c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1) {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	if c.AllowedOrigins == "*" && c.IsProduction() {
		log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// UploadsEnabled reports whether an asset store is configured.
func (c *Config) UploadsEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// CatalogTimeout returns the catalog fetch timeout.
func (c *Config) CatalogTimeout() time.Duration {
	if c.CatalogTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

// CatalogCacheTTL returns how long a fetched catalog stays cached.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

// UploadMaxBytes returns the upload size limit in bytes.
func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxSizeMB) * 1024 * 1024
}
