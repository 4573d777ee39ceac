package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// loadConfigFromYAML reads yaml the way the root command does, with "::" as
// the key delimiter so dotted color tokens stay single keys.
func loadConfigFromYAML(t *testing.T, yaml string) Config {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	d := Defaults()
	v.SetDefault("table::max_undo_history", d.Table.MaxUndoHistory)
	v.SetDefault("table::default_column_width", d.Table.DefaultColumnWidth)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestDefaults_AreValid(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	require.Equal(t, 100, d.Table.MaxUndoHistory)
	require.Equal(t, 500*time.Millisecond, d.WatchDebounce)
	require.True(t, d.Table.PersistViewState)
}

func TestDefaultConfigTemplate_Loads(t *testing.T) {
	cfg := loadConfigFromYAML(t, DefaultConfigTemplate())
	want := Defaults()
	require.Equal(t, want.Table, cfg.Table)
	require.Equal(t, want.WatchDebounce, cfg.WatchDebounce)
	require.True(t, cfg.Watch)
	require.Equal(t, "system", cfg.Clipboard)
	require.NoError(t, cfg.Validate())
}

func TestLoad_KeysAndTheme(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
table:
  max_undo_history: 5
watch_debounce: 2s
theme:
  preset: nord
  colors:
    focus.stroke: "#FF0000"
    selection:
      background: "#00FF00"
keys:
  paste-insert: ["ctrl+o"]
  save: ["ctrl+w"]
`)
	require.Equal(t, 5, cfg.Table.MaxUndoHistory)
	require.Equal(t, 2*time.Second, cfg.WatchDebounce)
	require.Equal(t, []string{"ctrl+o"}, cfg.Keys["paste-insert"])
	require.Equal(t, map[string]string{
		"focus.stroke":         "#FF0000",
		"selection.background": "#00FF00",
	}, cfg.Theme.FlattenedColors())
	require.Equal(t, "nord", cfg.Theme.Styles().Preset)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero history", func(c *Config) { c.Table.MaxUndoHistory = 0 }, "max_undo_history"},
		{"narrow columns", func(c *Config) { c.Table.DefaultColumnWidth = 2 }, "default_column_width"},
		{"bad stroke", func(c *Config) { c.Table.FocusStrokeColor = "blue" }, "focus_stroke_color"},
		{"negative debounce", func(c *Config) { c.WatchDebounce = -time.Second }, "watch_debounce"},
		{"clipboard", func(c *Config) { c.Clipboard = "x11" }, "clipboard"},
		{"preset", func(c *Config) { c.Theme.Preset = "solarized-neon" }, "theme"},
		{"token", func(c *Config) { c.Theme.Colors = map[string]any{"nope.token": "#FFFFFF"} }, "theme"},
		{"key action", func(c *Config) { c.Keys = map[string][]string{"fly": {"f"}} }, "keys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			require.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetValue(path, "table.max_undo_history", 250))
	require.NoError(t, SetValue(path, "theme.preset", "dracula"))
	require.NoError(t, SetValue(path, "keys.save", []string{"ctrl+w"}))

	cfg := loadConfigFromYAML(t, mustRead(t, path))
	require.Equal(t, 250, cfg.Table.MaxUndoHistory)
	require.Equal(t, "dracula", cfg.Theme.Preset)
	require.Equal(t, []string{"ctrl+w"}, cfg.Keys["save"])

	data := mustRead(t, path)
	require.Contains(t, data, "# Tabula Configuration", "comments are preserved")
	require.Contains(t, data, "# Undo entries kept per open file")
}

func TestSetValue_NewFileAndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SetValue(path, "watch", false))
	require.Equal(t, "watch: false\n", mustRead(t, path))

	require.ErrorContains(t, SetValue(path, "watch.deep", 1), "not a section")
	require.ErrorContains(t, SetValue(path, "table..x", 1), "invalid key")
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
