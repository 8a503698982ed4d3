package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config."+env+".yaml"), []byte(body), 0o644))
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", env)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, time.Duration(0), cfg.ReconnectGrace)
	assert.Equal(t, "votes-revealed", cfg.RevealEvent)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	writeConfig(t, "test", `
mode: debug
port: 9000
reconnect_grace: 10s
reveal_event: room-updated
log_level: debug
`)

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ReconnectGrace)
	assert.Equal(t, "room-updated", cfg.RevealEvent)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())

	t.Setenv("ESTIMATE_PORT", "9100")
	t.Setenv("ESTIMATE_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg, err = Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	v := New()
	fs := pflag.NewFlagSet("estimate", pflag.ContinueOnError)
	BindFlags(v, fs)
	require.NoError(t, fs.Parse([]string{"--port", "9200", "--reconnect-grace", "1m"}))
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port, "flags win over env and file")
	assert.Equal(t, time.Minute, cfg.ReconnectGrace)
	assert.Equal(t, "debug", cfg.Mode, "unset flags do not shadow the file")
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	writeConfig(t, "broken", "port: 70000\n")
	_, err := Load(New())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func validConfig() Config {
	return Config{
		Mode:         "release",
		Port:         8080,
		ReadLimit:    4096,
		PingPeriod:   time.Second,
		WriteWait:    time.Second,
		SendBuffer:   8,
		RevealEvent:  "votes-revealed",
		RateLimit:    10,
		RateInterval: time.Second,
		LogLevel:     "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"rate limit off", func(c *Config) { c.RateLimit = 0; c.RateInterval = 0 }, true},
		{"bad mode", func(c *Config) { c.Mode = "prod" }, false},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port too big", func(c *Config) { c.Port = 65536 }, false},
		{"read limit", func(c *Config) { c.ReadLimit = 0 }, false},
		{"ping period", func(c *Config) { c.PingPeriod = 0 }, false},
		{"send buffer", func(c *Config) { c.SendBuffer = 0 }, false},
		{"negative grace", func(c *Config) { c.ReconnectGrace = -time.Second }, false},
		{"reveal event", func(c *Config) { c.RevealEvent = "revealed" }, false},
		{"rate interval", func(c *Config) { c.RateInterval = 0 }, false},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestShippedDevConfigKeepsGraceOff(t *testing.T) {
	t.Chdir(filepath.Join("..", ".."))
	t.Setenv("CONFIG_ENV", "")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode, "dev profile must be the file that was loaded")
	assert.Zero(t, cfg.ReconnectGrace, "leavers are removed immediately unless grace is configured")
}
