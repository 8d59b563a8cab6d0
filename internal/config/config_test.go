package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.HeartsEnabled)
	assert.Equal(t, "0 0 * * 1", cfg.WeeklySchedule)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LINGUO_DB", "/tmp/linguo-test.db")
	t.Setenv("LINGUO_TIMEZONE", "Europe/Madrid")
	t.Setenv("LINGUO_HEARTS_ENABLED", "false")
	t.Setenv("LINGUO_RANDOM_SEED", "1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/linguo-test.db", cfg.DBPath)
	assert.False(t, cfg.HeartsEnabled)
	assert.Equal(t, uint64(1234), cfg.RandomSeed)

	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("LINGUO_LOG_LEVEL=debug\nLINGUO_HEARTS_ENABLED=false\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("LINGUO_HEARTS_ENABLED", "true")
	t.Cleanup(func() { os.Unsetenv("LINGUO_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	// The process environment wins over the file.
	assert.True(t, cfg.HeartsEnabled)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DBDriver:       "sqlite",
			Timezone:       "UTC",
			LogLevel:       "debug",
			WeeklySchedule: "0 0 * * 1",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite", func(*Config) {}, false},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, true},
		{"postgres with url", func(c *Config) {
			c.DBDriver = "postgres"
			c.DatabaseURL = "postgres://localhost/linguo"
		}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"bad schedule", func(c *Config) { c.WeeklySchedule = "every monday" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
