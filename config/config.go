// Package config provides configuration management for the application.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Amadeus AmadeusConfig `mapstructure:"amadeus"`
	Store   StoreConfig   `mapstructure:"store"`
	Quota   QuotaConfig   `mapstructure:"quota"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string `mapstructure:"port"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// AmadeusConfig holds live-API credentials and connection settings.
type AmadeusConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	BaseURL      string        `mapstructure:"base_url"`
	Offline      bool          `mapstructure:"offline"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend  string `mapstructure:"backend"` // memory, file, redis, sqlite
	Path     string `mapstructure:"path"`    // file and sqlite backends
	RedisURL string `mapstructure:"redis_url"`
}

// QuotaConfig holds the local call-budget ceilings.
type QuotaConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerDay    int `mapstructure:"per_day"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // json or pretty
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	// Load .env file using Viper (optional, won't fail if not found)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if .env file doesn't exist

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("FAREFINDER_BASE_URL", "https://test.api.amadeus.com")
	viper.SetDefault("FAREFINDER_OFFLINE", false)
	viper.SetDefault("HTTP_TIMEOUT", "8s")
	viper.SetDefault("STORE_BACKEND", "memory")
	viper.SetDefault("STORE_PATH", "farefinder.db")
	viper.SetDefault("QUOTA_PER_MINUTE", 10)
	viper.SetDefault("QUOTA_PER_DAY", 39)
	viper.SetDefault("LOG_FORMAT", "json")

	// Enable automatic environment variable reading
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetString("PORT"),
			MetricsEnabled: viper.GetBool("METRICS_ENABLED"),
		},
		Amadeus: AmadeusConfig{
			ClientID:     viper.GetString("FAREFINDER_CLIENT_ID"),
			ClientSecret: viper.GetString("FAREFINDER_CLIENT_SECRET"),
			BaseURL:      viper.GetString("FAREFINDER_BASE_URL"),
			Offline:      viper.GetBool("FAREFINDER_OFFLINE"),
			HTTPTimeout:  viper.GetDuration("HTTP_TIMEOUT"),
		},
		Store: StoreConfig{
			Backend:  viper.GetString("STORE_BACKEND"),
			Path:     viper.GetString("STORE_PATH"),
			RedisURL: viper.GetString("REDIS_URL"),
		},
		Quota: QuotaConfig{
			PerMinute: viper.GetInt("QUOTA_PER_MINUTE"),
			PerDay:    viper.GetInt("QUOTA_PER_DAY"),
		},
		Log: LogConfig{
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

// EffectiveOffline reports whether the mediator must run offline. Missing
// credentials imply offline mode regardless of the explicit flag.
func (c *Config) EffectiveOffline() bool {
	if c.Amadeus.Offline {
		return true
	}
	return c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == ""
}
