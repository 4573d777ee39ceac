package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/keys"
	"github.com/zjrosen/tabula/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change tabula settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

var configInitLocal bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Write the commented default configuration to ~/.config/tabula/config.yaml,
or to .tabula/config.yaml in the current directory with --local. An existing
file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := filepath.Join(paths.ConfigDir(), "config.yaml")
		if configInitLocal {
			path = localConfig
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE...",
	Short: "Change one setting, keeping the file's comments",
	Long: `Change one setting in the config file in use. KEY is a dotted path.
Several values for a keys.* entry become a list.

Examples:
  tabula config set table.max_undo_history 500
  tabula config set watch false
  tabula config set keys.save ctrl+s ctrl+w`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1:]
		value, err := parseSetting(key, raw)
		if err != nil {
			return err
		}
		path := configPath()
		if err := config.SetValue(path, key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", key, value, path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitLocal, "local", false, "write .tabula/config.yaml in the current directory")
	configCmd.AddCommand(configPathCmd, configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// parseSetting converts the command line value to the type the key holds and
// checks it the way loading the config would.
func parseSetting(key string, raw []string) (any, error) {
	if name, ok := strings.CutPrefix(key, "keys."); ok {
		if err := keys.ValidateOverrides(map[string][]string{name: raw}); err != nil {
			return nil, err
		}
		return raw, nil
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%s takes one value", key)
	}
	s := raw[0]

	c := config.Defaults()
	switch key {
	case "table.max_undo_history", "table.default_column_width":
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		if key == "table.max_undo_history" {
			c.Table.MaxUndoHistory = n
		} else {
			c.Table.DefaultColumnWidth = n
		}
		return n, c.Validate()
	case "table.single_click_edit_mode", "table.persist_view_state", "watch":
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, err)
		}
		return b, nil
	case "table.focus_stroke_color":
		c.Table.FocusStrokeColor = s
		return s, c.Validate()
	case "watch_debounce":
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be a duration such as 500ms: %w", key, err)
		}
		c.WatchDebounce = d
		return s, c.Validate()
	case "clipboard":
		c.Clipboard = s
		return s, c.Validate()
	}
	return s, nil
}
