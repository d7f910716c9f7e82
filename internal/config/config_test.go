package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ftality/internal/grammar"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500, cfg.Engine.TimeoutMS)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.UI.RecentLimit)
	assert.Equal(t, 2, cfg.UI.MaxAltsPerStep)
	assert.False(t, cfg.UI.Debug)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce())
	assert.Empty(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ftality.yaml", `
engine:
  timeout_ms: 250
bindings:
  j: "[BP]"
  ctrl-d: Down
logging:
  level: debug
ui:
  recent_limit: 4
watch:
  enabled: true
`)

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Timeout())
	assert.Equal(t, map[string]string{"j": "[BP]", "ctrl-d": "Down"}, cfg.Bindings)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 4, cfg.UI.RecentLimit)
	assert.Equal(t, 2, cfg.UI.MaxAltsPerStep, "unset keys keep defaults")
	assert.True(t, cfg.Watch.Enabled)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNew_NoFileIsFine(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Engine.TimeoutMS)
}

func TestNew_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FTALITY_ENGINE_TIMEOUT_MS", "900")
	t.Setenv("FTALITY_LOGGING_FORMAT", "json")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.Engine.TimeoutMS)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ValidationErrors(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("engine.timeout_ms", 0)
	v.Set("logging.format", "xml")
	v.Set("ui.recent_limit", 1000)

	_, err := Load(v)
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 3)

	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.ElementsMatch(t, []string{"engine.timeout_ms", "logging.format", "ui.recent_limit"}, fields)
	assert.Contains(t, err.Error(), "3 validation errors")
	assert.Contains(t, err.Error(), "must be one of: text, json")
}

func TestValidate_EmptyBinding(t *testing.T) {
	tests := map[string]map[string]string{
		"blank symbol": {"q": " "},
		"blank key":    {"  ": "[BP]"},
	}
	for name, bindings := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Bindings = bindings

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.True(t, strings.HasPrefix(errs[0].Field, "bindings["), errs[0].Field)
			assert.Equal(t, "must be non-empty", errs[0].Message)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"other": slog.LevelInfo,
	}
	for level, want := range tests {
		cfg := Default()
		cfg.Logging.Level = level
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}

func TestExplicitBindings(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.BindingsFile = writeFile(t, dir, "keys.yaml", "j: \"[BP]\"\nk: \"[FP]\"\n")
	cfg.Bindings = map[string]string{"k": "Down"}

	bs, err := cfg.ExplicitBindings()
	require.NoError(t, err)
	assert.Equal(t, []grammar.Binding{
		{Key: "j", Symbol: "[BP]"},
		{Key: "k", Symbol: "[FP]"},
		{Key: "k", Symbol: "Down"},
	}, bs, "inline bindings come last so they win")

	cfg.BindingsFile = filepath.Join(dir, "missing.yaml")
	_, err = cfg.ExplicitBindings()
	assert.ErrorIs(t, err, grammar.ErrIO)
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.TimeoutMS = 750
	assert.Len(t, cfg.EngineOptions(), 2)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "ftality"), ConfigDir())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
