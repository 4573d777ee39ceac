package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tabula/internal/app"
	"github.com/zjrosen/tabula/internal/clipboard"
	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/paths"
	"github.com/zjrosen/tabula/internal/ui/styles"
	"github.com/zjrosen/tabula/internal/viewstore"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfig = ".tabula/config.yaml"
	// viewStateTTL is how long a file's saved layout survives without the
	// file being opened.
	viewStateTTL = 90 * 24 * time.Hour
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config

	// Theme color tokens contain dots, so nested keys use "::".
	vp = viper.NewWithOptions(viper.KeyDelimiter("::"))
)

var rootCmd = &cobra.Command{
	Use:   "tabula FILE",
	Short: "A terminal editor for CSV and TSV tables",
	Long: `tabula opens a CSV or TSV file as an editable grid with typed columns,
multi-range selection, clipboard interchange and undo/redo. Column types,
locked rows and virtual columns are kept next to the file in FILE.tabula.yaml.`,
	Version:       version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .tabula/config.yaml, then ~/.config/tabula/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write a debug log to tabula.log and enable the log panel (ctrl+o)")
	rootCmd.Flags().Bool("no-watch", false,
		"do not watch the file for changes made by other programs")
	rootCmd.Flags().String("clipboard", "",
		`clipboard backend: "system" or "memory"`)

	_ = vp.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("table::max_undo_history", d.Table.MaxUndoHistory)
	v.SetDefault("table::single_click_edit_mode", d.Table.SingleClickEditMode)
	v.SetDefault("table::focus_stroke_color", d.Table.FocusStrokeColor)
	v.SetDefault("table::persist_view_state", d.Table.PersistViewState)
	v.SetDefault("table::default_column_width", d.Table.DefaultColumnWidth)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	v.SetDefault("state_db", d.StateDB)
	v.SetDefault("clipboard", d.Clipboard)
}

func initConfig() {
	setDefaults(vp)

	if cfgFile != "" {
		vp.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .tabula/config.yaml (current directory)
		// 2. ~/.config/tabula/config.yaml (user config)
		if _, err := os.Stat(localConfig); err == nil {
			vp.SetConfigFile(localConfig)
		} else {
			vp.AddConfigPath(paths.ConfigDir())
			vp.SetConfigName("config")
			vp.SetConfigType("yaml")
		}
	}

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file anywhere: create the user one.
			defaultPath := filepath.Join(paths.ConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				vp.SetConfigFile(defaultPath)
				_ = vp.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		} else {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = vp.Unmarshal(&cfg)
}

// configPath is the file `config set` edits.
func configPath() string {
	if p := vp.ConfigFileUsed(); p != "" {
		return p
	}
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// loadSettings validates the configuration and applies the theme.
func loadSettings() error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", configPath(), err)
	}
	if err := styles.ApplyTheme(cfg.Theme.Styles()); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}
	cfg.StateDB = paths.ExpandHome(cfg.StateDB)
	return nil
}

func startLogging() (func(), error) {
	if !debug && !log.DebugRequested() {
		return func() {}, nil
	}
	closeLog, err := log.Init("tabula.log")
	if err != nil {
		return nil, err
	}
	debug = true
	log.Info(log.CatConfig, "starting", "version", version, "config", vp.ConfigFileUsed())
	return closeLog, nil
}

func newClipboard() datatable.Clipboard {
	if cfg.Clipboard == "memory" {
		return &clipboard.Memory{}
	}
	sys := clipboard.NewSystem()
	if !sys.Supported() {
		log.Warn(log.CatClipboard, "no system clipboard tool found; using terminal clipboard")
	}
	return sys
}

// openViewStore opens the state database. Failure only disables view state
// persistence.
func openViewStore() *viewstore.Store {
	if !cfg.Table.PersistViewState || cfg.StateDB == "" {
		return nil
	}
	store, err := viewstore.Open(cfg.StateDB)
	if err != nil {
		log.ErrorErr(log.CatViewStore, "open state db", err, "path", cfg.StateDB)
		return nil
	}
	pruneViewStore(store, time.Now())
	return store
}

// pruneViewStore drops layouts of files not opened within viewStateTTL.
func pruneViewStore(store *viewstore.Store, now time.Time) int64 {
	n, err := store.Prune(context.Background(), now.Add(-viewStateTTL))
	if err != nil {
		log.ErrorErr(log.CatViewStore, "prune state db", err)
		return 0
	}
	if n > 0 {
		log.Info(log.CatViewStore, "pruned stale view state", "records", n)
	}
	return n
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := loadSettings(); err != nil {
		return err
	}
	closeLog, err := startLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	path, err := paths.ResolveDataFile(args[0])
	if err != nil {
		return err
	}

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Watch = false
	}

	store := openViewStore()
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	zone.NewGlobal()
	model, err := app.New(app.Options{
		Config:    cfg,
		Path:      path,
		Debug:     debug,
		Clipboard: newClipboard(),
		ViewStore: store,
	})
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
