// Package config loads runtime settings from LINGUO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Prefix is the environment variable prefix for every setting.
const Prefix = "linguo"

// Config holds all runtime configuration.
type Config struct {
	// DBDriver selects the datastore: "sqlite" or "postgres".
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	// DBPath is the SQLite file. Empty resolves to the XDG data dir.
	DBPath string `envconfig:"DB"`
	// DatabaseURL is the PostgreSQL DSN, required for the postgres driver.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Timezone is the location used for calendar-day and ISO-week math.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// HeartsEnabled turns heart deduction on wrong answers on or off.
	HeartsEnabled bool `envconfig:"HEARTS_ENABLED" default:"true"`

	// RandomSeed makes question and challenge selection reproducible when non-zero.
	RandomSeed uint64 `envconfig:"RANDOM_SEED" default:"0"`

	// WeeklySchedule is the cron spec for weekly challenge generation.
	WeeklySchedule string `envconfig:"WEEKLY_SCHEDULE" default:"0 0 * * 1"`
}

// EnvFile is read by Load when present. Variables already set in the
// environment win over the file.
const EnvFile = ".env"

// Load reads EnvFile and the environment and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the driver selection, timezone, log level and cron spec.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("LINGUO_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := cron.ParseStandard(c.WeeklySchedule); err != nil {
		return fmt.Errorf("weekly schedule %q: %w", c.WeeklySchedule, err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
