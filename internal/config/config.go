package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "ESTIMATE"

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Bind           string        `mapstructure:"bind"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	Secret         string        `mapstructure:"secret"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace"`
	RevealEvent    string        `mapstructure:"reveal_event"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateInterval   time.Duration `mapstructure:"rate_interval"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	LogLevel       string        `mapstructure:"log_level"`

	// Version is stamped by the binary, never read from configuration.
	Version string `mapstructure:"-"`
}

var defaults = map[string]any{
	"mode":            "release",
	"bind":            "0.0.0.0",
	"port":            8080,
	"static_path":     "./web",
	"secret":          "change-me",
	"read_limit":      4096,
	"ping_period":     "54s",
	"write_wait":      "5s",
	"send_buffer":     32,
	"reconnect_grace": "0s",
	"reveal_event":    "votes-revealed",
	"rate_limit":      20,
	"rate_interval":   "1s",
	"allowed_origins": []string{"*"},
	"log_level":       "info",
}

// New returns a viper instance with defaults and ESTIMATE_* environment lookup.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// BindFlags registers command-line flags and binds them into v. Flags use
// dashes, configuration keys use underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String("mode", "release", "gin mode: release or debug (env: ESTIMATE_MODE)")
	fs.StringP("bind", "b", "0.0.0.0", "address to bind to (env: ESTIMATE_BIND)")
	fs.IntP("port", "p", 8080, "port to listen on (env: ESTIMATE_PORT)")
	fs.String("static-path", "./web", "directory with the web UI (env: ESTIMATE_STATIC_PATH)")
	fs.String("secret", "change-me", "session cookie signing key (env: ESTIMATE_SECRET)")
	fs.Int64("read-limit", 4096, "max inbound websocket message size in bytes (env: ESTIMATE_READ_LIMIT)")
	fs.Duration("ping-period", 54*time.Second, "websocket keepalive interval (env: ESTIMATE_PING_PERIOD)")
	fs.Duration("write-wait", 5*time.Second, "websocket write deadline (env: ESTIMATE_WRITE_WAIT)")
	fs.Int("send-buffer", 32, "outbound frames queued per connection (env: ESTIMATE_SEND_BUFFER)")
	fs.Duration("reconnect-grace", 0, "keep disconnected users listed this long, 0 disables (env: ESTIMATE_RECONNECT_GRACE)")
	fs.String("reveal-event", "votes-revealed", "event sent on reveal: votes-revealed or room-updated (env: ESTIMATE_REVEAL_EVENT)")
	fs.Int("rate-limit", 20, "inbound events allowed per rate interval, 0 disables (env: ESTIMATE_RATE_LIMIT)")
	fs.Duration("rate-interval", time.Second, "rate limit window (env: ESTIMATE_RATE_INTERVAL)")
	fs.StringSlice("allowed-origins", []string{"*"}, "websocket origins allowed to connect (env: ESTIMATE_ALLOWED_ORIGINS)")
	fs.String("log-level", "info", "debug, info, warn or error (env: ESTIMATE_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of v. A missing file is
// not an error, defaults and environment still apply.
func Load(v *viper.Viper) (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Dur("reconnect_grace", cfg.ReconnectGrace).
		Msg("config ready")
	return &cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	var errs []error
	if c.Mode != "release" && c.Mode != "debug" {
		errs = append(errs, fmt.Errorf("mode must be release or debug: %q", c.Mode))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, fmt.Errorf("read_limit must be positive: %d", c.ReadLimit))
	}
	if c.PingPeriod <= 0 || c.WriteWait <= 0 {
		errs = append(errs, errors.New("ping_period and write_wait must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("send_buffer must be positive: %d", c.SendBuffer))
	}
	if c.ReconnectGrace < 0 {
		errs = append(errs, fmt.Errorf("reconnect_grace must not be negative: %s", c.ReconnectGrace))
	}
	if c.RevealEvent != "votes-revealed" && c.RevealEvent != "room-updated" {
		errs = append(errs, fmt.Errorf("reveal_event must be votes-revealed or room-updated: %q", c.RevealEvent))
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateInterval <= 0) {
		errs = append(errs, errors.New("rate_limit must not be negative and needs a positive rate_interval"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level is the parsed log_level, info when unset.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
