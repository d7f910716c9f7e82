// Package config loads ftality settings from defaults, an optional YAML
// file, FTALITY_* environment variables and bound command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
)

// EnvPrefix prefixes every environment override, e.g. FTALITY_ENGINE_TIMEOUT_MS.
const EnvPrefix = "FTALITY"

// Config represents the complete ftality configuration
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`

	// Bindings maps key tokens to symbols and overrides inferred bindings.
	// Keys pass through viper, which lowercases them.
	Bindings map[string]string `mapstructure:"bindings" validate:"dive,keys,notblank,endkeys,notblank"`

	// BindingsFile is an optional YAML key-to-symbol map applied before
	// Bindings.
	BindingsFile string `mapstructure:"bindings_file"`

	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// EngineConfig controls matching
type EngineConfig struct {
	// TimeoutMS is the inactivity gap, in milliseconds, after which combo
	// progress is discarded.
	TimeoutMS int `mapstructure:"timeout_ms" validate:"gte=1,lte=60000"`
}

// LoggingConfig controls the slog handler the CLI installs
type LoggingConfig struct {
	// Level options: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// Format options: "text", "json"
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// UIConfig controls the interactive front ends
type UIConfig struct {
	// RecentLimit is how many fired moves the recent panel keeps.
	RecentLimit int `mapstructure:"recent_limit" validate:"gte=1,lte=100"`
	// MaxAltsPerStep is how many keys are listed per symbol before eliding.
	MaxAltsPerStep int `mapstructure:"max_alts_per_step" validate:"gte=1,lte=10"`
	// Debug prints per-key automaton state in line mode.
	Debug bool `mapstructure:"debug"`
}

// WatchConfig controls rule-file hot reload
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMS int  `mapstructure:"debounce_ms" validate:"gte=0,lte=10000"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TimeoutMS: int(engine.DefaultTimeout / time.Millisecond),
		},
		Bindings: map[string]string{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			RecentLimit:    8,
			MaxAltsPerStep: engine.DefaultMaxAltsPerStep,
		},
		Watch: WatchConfig{
			DebounceMS: 100,
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("engine.timeout_ms", defaults.Engine.TimeoutMS)

	v.SetDefault("bindings", defaults.Bindings)
	v.SetDefault("bindings_file", defaults.BindingsFile)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("ui.recent_limit", defaults.UI.RecentLimit)
	v.SetDefault("ui.max_alts_per_step", defaults.UI.MaxAltsPerStep)
	v.SetDefault("ui.debug", defaults.UI.Debug)

	v.SetDefault("watch.enabled", defaults.Watch.Enabled)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// New creates a viper instance with defaults and environment overrides.
// When configFile is empty, ftality.yaml is looked up in the working
// directory and then ConfigDir(); a missing file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("ftality")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(ConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Bindings == nil {
		cfg.Bindings = map[string]string{}
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ftality")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ftality"
	}
	return filepath.Join(home, ".config", "ftality")
}

// Timeout returns the engine timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Engine.TimeoutMS) * time.Millisecond
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// SlogLevel maps Logging.Level to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineOptions translates the engine-facing settings.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTimeout(c.Timeout()),
		engine.WithMaxAltsPerStep(c.UI.MaxAltsPerStep),
	}
}

// ExplicitBindings returns the bindings file entries followed by the
// inline Bindings map, so inline entries win.
func (c *Config) ExplicitBindings() ([]grammar.Binding, error) {
	var out []grammar.Binding
	if c.BindingsFile != "" {
		fromFile, err := grammar.LoadBindingsFile(c.BindingsFile)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}
	out = append(out, grammar.BindingsFromMap(c.Bindings)...)
	return out, nil
}
