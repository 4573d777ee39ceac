// Package config provides configuration types and defaults for tabula.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/tabula/internal/keys"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/paths"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// Config holds all configuration options for tabula.
type Config struct {
	Table         TableConfig         `mapstructure:"table"`
	Watch         bool                `mapstructure:"watch"`
	WatchDebounce time.Duration       `mapstructure:"watch_debounce"`
	StateDB       string              `mapstructure:"state_db"`
	Clipboard     string              `mapstructure:"clipboard"` // "system" (default) or "memory"
	Theme         ThemeConfig         `mapstructure:"theme"`
	Keys          map[string][]string `mapstructure:"keys"`
}

// TableConfig holds grid behaviour options.
type TableConfig struct {
	MaxUndoHistory      int    `mapstructure:"max_undo_history"`
	SingleClickEditMode bool   `mapstructure:"single_click_edit_mode"`
	FocusStrokeColor    string `mapstructure:"focus_stroke_color"`
	PersistViewState    bool   `mapstructure:"persist_view_state"`
	DefaultColumnWidth  int    `mapstructure:"default_column_width"`
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	Preset string `mapstructure:"preset"`

	// Colors allows overriding individual color tokens.
	// Supports both nested YAML structure and dot notation.
	// Example YAML:
	//   colors:
	//     focus:
	//       stroke: "#FF0000"
	// Or quoted dot notation:
	//   colors:
	//     "focus.stroke": "#FF0000"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
// This handles both nested YAML structures and already-flat keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// Styles converts the theme section for styles.ApplyTheme.
func (t ThemeConfig) Styles() styles.ThemeConfig {
	return styles.ThemeConfig{Preset: t.Preset, Colors: t.FlattenedColors()}
}

// DefaultStateDB returns ~/.config/tabula/state.db, or "" when the home
// directory is unknown.
func DefaultStateDB() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Table: TableConfig{
			MaxUndoHistory:      100,
			SingleClickEditMode: false,
			FocusStrokeColor:    "#54A0FF",
			PersistViewState:    true,
			DefaultColumnWidth:  14,
		},
		Watch:         true,
		WatchDebounce: 500 * time.Millisecond,
		StateDB:       DefaultStateDB(),
		Clipboard:     "system",
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Table.MaxUndoHistory <= 0 {
		return fmt.Errorf("table.max_undo_history must be positive, got %d", c.Table.MaxUndoHistory)
	}
	if c.Table.DefaultColumnWidth < 3 {
		return fmt.Errorf("table.default_column_width must be at least 3, got %d", c.Table.DefaultColumnWidth)
	}
	if c.Table.FocusStrokeColor != "" && !styles.IsValidHexColor(c.Table.FocusStrokeColor) {
		return fmt.Errorf("table.focus_stroke_color must be a hex color, got %q", c.Table.FocusStrokeColor)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	switch c.Clipboard {
	case "", "system", "memory":
	default:
		return fmt.Errorf("clipboard must be \"system\" or \"memory\", got %q", c.Clipboard)
	}
	if _, err := styles.ResolveTheme(c.Theme.Styles()); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	if err := keys.ValidateOverrides(c.Keys); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Tabula Configuration

# Grid behaviour
table:
  max_undo_history: 100        # Undo entries kept per open file
  single_click_edit_mode: false  # Edit a cell on single click instead of double click
  focus_stroke_color: "#54A0FF"  # Outline of the focused cell
  persist_view_state: true     # Remember visible columns and sort per file
  default_column_width: 14     # Width of columns without a saved width

# Reload prompt when the open file changes on disk
watch: true
watch_debounce: 500ms

# View state database (default: ~/.config/tabula/state.db)
# state_db: ~/.config/tabula/state.db

# Clipboard backend: "system" (default) or "memory" (copy/paste inside tabula only)
clipboard: system

# Theme configuration
theme:
  # preset: dracula
  #
  # Available presets:
  #   default           - Default tabula theme
  #   catppuccin-mocha  - Warm, cozy dark theme
  #   dracula           - Dark theme with vibrant colors
  #   nord              - Arctic, north-bluish palette
  #   high-contrast     - High contrast for accessibility
  #
  # Override specific colors (works with or without preset):
  # colors:
  #   focus.stroke: "#FF0000"
  #   selection.background: "#334455"

# Key bindings. Each entry replaces the default keys of one action.
# keys:
#   paste-insert: ["ctrl+shift+v", "alt+v"]
#   save: ["ctrl+s"]
#   toggle-lock: ["ctrl+l"]
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
