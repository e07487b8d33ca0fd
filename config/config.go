// Package config loads tenantkit configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the settings used by the test harness and the CLI.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Debug    bool           `mapstructure:"debug"`
}

// DatabaseConfig contains PostgreSQL connection settings.
//
// URL is the only externally required value; everything else has a
// working default and exists so CI environments can tune pool sizing.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// Load reads configuration from the environment (and an optional .env
// file for local development). The returned config is validated.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("TENANTKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind explicitly: AutomaticEnv alone does not populate Unmarshal
	// for keys that never appear in a config file.
	for _, key := range []string{
		"database.url",
		"database.max_connections",
		"database.min_connections",
		"database.max_conn_lifetime",
		"database.connect_timeout",
		"debug",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads environment variables from a .env file if one exists.
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
		"../.env", // for test binaries running from package directories
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Debug().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 0)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("debug", false)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1, got %d", c.Database.MaxConnections)
	}
	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database.min_connections (%d) cannot exceed database.max_connections (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}
	return nil
}
