package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                  "8375",
		Env:                   "development",
		StoreDriver:           DriverSQLite,
		StorePath:             "data/memeverse.db",
		StoreMaxWriteAttempts: 3,
		CatalogSource:         CatalogImgflip,
		CatalogURL:            "https://api.imgflip.com",
		UploadMaxSizeMB:       10,
		LeaderboardSize:       10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"zero write attempts", func(c *Config) { c.StoreMaxWriteAttempts = 0 }, true},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"sqlite without path", func(c *Config) { c.StorePath = "" }, true},
		{"memory store in development", func(c *Config) { c.StorePath = ":memory:" }, false},
		{"memory store in production", func(c *Config) { c.StorePath = ":memory:"; c.Env = "production" }, true},
		{"redis without url", func(c *Config) { c.StoreDriver = DriverRedis }, true},
		{"redis with url", func(c *Config) { c.StoreDriver = DriverRedis; c.RedisURL = "redis://localhost:6379" }, false},
		{"postgres prod without ssl", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.DBHost = "db"
			c.DBName = "memeverse"
			c.DBSSLMode = "disable"
			c.Env = "prod"
		}, true},
		{"postgres prod with ssl", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.DBHost = "db"
			c.DBName = "memeverse"
			c.DBSSLMode = "require"
			c.Env = "prod"
		}, false},
		{"file catalog without file", func(c *Config) { c.CatalogSource = CatalogFile }, true},
		{"unknown catalog", func(c *Config) { c.CatalogSource = "reddit" }, true},
		{"bad sampler ratio", func(c *Config) { c.TracingEnabled = true; c.TracingSamplerRatio = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "  SQLite ")
	t.Setenv("STORE_PATH", ":memory:")
	t.Setenv("LEADERBOARD_SIZE", "5")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, ":memory:", c.StorePath)
	assert.Equal(t, 5, c.LeaderboardSize)
	assert.Equal(t, 3, c.StoreMaxWriteAttempts)
	assert.False(t, c.UploadsEnabled())
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	assert.Equal(t, int64(10*1024*1024), c.UploadMaxBytes())

	c.CatalogTimeoutSeconds = 0
	assert.Equal(t, "10s", c.CatalogTimeout().String())

	c.CatalogCacheTTLSeconds = 60
	assert.Equal(t, "1m0s", c.CatalogCacheTTL().String())
}
