// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/document"
	"github.com/zjrosen/tabula/internal/keys"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/pubsub"
	"github.com/zjrosen/tabula/internal/sheet"
	"github.com/zjrosen/tabula/internal/ui/logpanel"
	"github.com/zjrosen/tabula/internal/ui/styles"
	"github.com/zjrosen/tabula/internal/ui/toaster"
	"github.com/zjrosen/tabula/internal/viewstore"
	"github.com/zjrosen/tabula/internal/watcher"
)

const (
	gridZone = "tabula-grid"
	// saveQuiet is how long watcher events are ignored after our own save.
	saveQuiet = 2 * time.Second
)

// Options configures the application model.
type Options struct {
	Config config.Config
	// Path is the data file to edit.
	Path  string
	Debug bool
	// Clipboard backs copy and paste. Nil disables the system clipboard.
	Clipboard datatable.Clipboard
	// ViewStore persists the view state across sessions when set.
	ViewStore *viewstore.Store
	Now       func() time.Time
}

// Model is the root application state.
type Model struct {
	opts Options
	keys keys.KeyMap

	doc   *document.Document
	table *datatable.Table[sheet.Row]
	grid  *datatable.Model[sheet.Row]

	width  int
	height int

	filter    textinput.Model
	filtering bool
	prompt    *prompt
	help      help.Model

	// Centralized toaster
	toaster toaster.Model

	logPanel    logpanel.Model
	logListener *log.LogListener

	rowEvents   *pubsub.Broker[sheet.RowEvent]
	rowListener *pubsub.ContinuousListener[sheet.RowEvent]
	lastEvent   string

	watcher *watcher.Watcher
	changes <-chan watcher.Change
	// stale is set when the data file changed on disk since it was read.
	stale bool

	confirmQuit   bool
	confirmReload bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New opens opts.Path and builds the model around it.
func New(opts Options) (Model, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	km, err := keys.DefaultKeyMap().WithOverrides(opts.Config.Keys)
	if err != nil {
		return Model{}, err
	}
	for _, c := range km.Conflicts() {
		log.Warn(log.CatConfig, "key bound twice", "binding", c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		opts:      opts,
		keys:      km,
		help:      help.New(),
		toaster:   toaster.New(),
		logPanel:  logpanel.New(),
		rowEvents: pubsub.NewBroker[sheet.RowEvent](),
		ctx:       ctx,
		cancel:    cancel,
	}
	m.rowListener = pubsub.NewContinuousListener(ctx, m.rowEvents)
	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}

	m.help.Styles.ShortKey = styles.HelpKeyStyle
	m.help.Styles.ShortDesc = styles.HelpDescStyle
	m.help.Styles.FullKey = styles.HelpKeyStyle
	m.help.Styles.FullDesc = styles.HelpDescStyle

	m.filter = textinput.New()
	m.filter.Prompt = "/ "
	m.filter.Placeholder = "filter rows"

	doc, err := document.Open(opts.Path, m.sheetOptions())
	if err != nil {
		cancel()
		return Model{}, err
	}
	m.install(doc, m.loadViewState())

	if opts.Config.Watch {
		m.startWatcher()
	}
	return m, nil
}

func (m Model) sheetOptions() sheet.Options {
	return sheet.Options{
		Events:           m.rowEvents,
		PersistViewState: m.opts.Config.Table.PersistViewState,
		Hotkeys:          m.keys.Hotkeys,
	}
}

// install builds the table and grid for doc. persisted, when non-nil, restores
// the visible columns and sort order.
func (m *Model) install(doc *document.Document, persisted *datatable.PersistedState) {
	cfg := m.opts.Config.Table
	m.doc = doc
	m.table = datatable.New[sheet.Row](doc.Sheet, doc.Rows, datatable.Options{
		MaxUndoHistory: cfg.MaxUndoHistory,
		Clipboard:      m.opts.Clipboard,
		InitialVisible: doc.Sheet.InitialVisible(),
		Persisted:      persisted,
	})
	doc.Rows = nil
	m.grid = datatable.NewModel(m.table, datatable.Config{
		ZoneID:              gridZone,
		SingleClickEditMode: cfg.SingleClickEditMode,
		FocusStrokeColor:    lipgloss.Color(cfg.FocusStrokeColor),
		DefaultColumnWidth:  cfg.DefaultColumnWidth,
		Now:                 m.opts.Now,
	})
	m.table.Select(datatable.VisCell{}, false)
	m.layout()
}

func (m *Model) startWatcher() {
	w, err := watcher.New(watcher.Config{Files: []string{m.opts.Path}, DebounceDur: m.opts.Config.WatchDebounce})
	if err != nil {
		log.Warn(log.CatWatcher, "watcher unavailable", "error", err)
		return
	}
	ch, err := w.Start()
	if err != nil {
		// The editor works without change notifications.
		log.Warn(log.CatWatcher, "watcher failed to start", "error", err)
		_ = w.Stop()
		return
	}
	m.watcher = w
	m.changes = ch
}

// Init implements tea.Model interface.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rowListener.Listen()}
	if m.changes != nil {
		cmds = append(cmds, watcher.WaitCmd(m.changes))
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if len(m.doc.Demoted) > 0 || m.doc.DroppedVirtual > 0 {
		cmds = append(cmds, func() tea.Msg { return loadNoticeMsg{} })
	}
	return tea.Batch(cmds...)
}

type loadNoticeMsg struct{}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logPanel.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case log.LogEvent:
		m.logPanel.Append(msg.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case pubsub.Event[sheet.RowEvent]:
		m.lastEvent = describeRowEvent(msg)
		return m, m.rowListener.Listen()

	case watcher.ChangedMsg:
		return m.handleFileChanged(msg)

	case loadNoticeMsg:
		return m.showLoadNotice()

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case datatable.CopyReportMsg:
		return m.handleCopyReport(msg.Report)

	case datatable.PasteReportMsg:
		return m.handlePasteReport(msg.Report)

	case datatable.HistoryMsg:
		return m.handleHistory(msg)

	case datatable.ColumnRequestMsg:
		return m.handleColumnRequest(msg)

	case tea.MouseMsg:
		if m.logPanel.Visible() || m.prompt != nil {
			return m, nil
		}
		return m, m.grid.Update(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.grid.Update(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.opts.Debug && msg.String() == "ctrl+o" {
		m.logPanel.Toggle()
		return m, nil
	}
	if m.logPanel.Visible() {
		var cmd tea.Cmd
		m.logPanel, cmd = m.logPanel.Update(msg)
		return m, cmd
	}
	if m.prompt != nil {
		return m.updatePrompt(msg)
	}
	if m.filtering {
		return m.updateFilter(msg)
	}
	if m.grid.Capturing() || msg.Paste {
		return m, m.grid.Update(msg)
	}

	quit, reload := m.confirmQuit, m.confirmReload
	m.confirmQuit, m.confirmReload = false, false

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.confirmQuit = quit
		return m.quit()
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Reload):
		m.confirmReload = reload
		return m.reload()
	case key.Matches(msg, m.keys.ToggleLock):
		return m.toggleLock()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.layout()
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.GoToColumn):
		return m.openGoToColumn(), nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	}
	return m, m.grid.Update(msg)
}

// updateFilter edits the filter query. Every change re-filters the rows.
func (m Model) updateFilter(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.SetValue("")
		m.applyFilter()
		fallthrough
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.layout()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) applyFilter() {
	if m.doc.Sheet.Query() == m.filter.Value() {
		return
	}
	m.doc.Sheet.SetQuery(m.filter.Value())
	m.table.Sync()
	if _, ok := m.table.Anchor(); !ok && m.table.NumVisibleRows() > 0 {
		m.table.Select(datatable.VisCell{}, false)
	}
	m.grid.ScrollToAnchor()
}

func (m *Model) showToast(text string, style toaster.Style) tea.Cmd {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, style, toaster.DefaultDuration)
	return cmd
}

// layout hands the grid whatever the chrome leaves over.
func (m *Model) layout() {
	if m.grid == nil || m.width == 0 {
		return
	}
	h := m.height - 1 - lipgloss.Height(m.helpView())
	if m.showFilterBar() {
		h--
	}
	m.filter.Width = max(m.width-4, 10)
	m.grid.SetSize(m.width, max(h, 1))
}

func (m Model) showFilterBar() bool { return m.filtering || m.filter.Value() != "" }

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	parts := []string{m.grid.View()}
	if m.showFilterBar() {
		parts = append(parts, m.filter.View())
	}
	parts = append(parts, m.statusView(), m.helpView())
	view := zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))

	if m.prompt != nil {
		view = m.prompt.overlay(view, m.width, m.height)
	}
	if m.logPanel.Visible() {
		view = m.logPanel.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	return view
}

// Close releases the watcher and listeners.
func (m Model) Close() error {
	m.cancel()
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}

// Table exposes the table for tests and the CLI.
func (m Model) Table() *datatable.Table[sheet.Row] { return m.table }

// Document returns the open document.
func (m Model) Document() *document.Document { return m.doc }

func (m Model) fileName() string { return filepath.Base(m.opts.Path) }

func (m Model) loadViewState() *datatable.PersistedState {
	if m.opts.ViewStore == nil || !m.opts.Config.Table.PersistViewState {
		return nil
	}
	ps, ok, err := m.opts.ViewStore.Load(m.ctx, m.opts.Path)
	if err != nil {
		log.ErrorErr(log.CatViewStore, "load view state", err, "path", m.opts.Path)
		return nil
	}
	if !ok {
		return nil
	}
	return ps
}

// saveViewState stores the layout for the next session. A layout equal to
// the file's default is forgotten instead.
func (m Model) saveViewState() {
	if m.opts.ViewStore == nil {
		return
	}
	ps, ok := m.table.PersistedState()
	if !ok {
		return
	}
	if len(ps.SortSpec) == 0 && slices.Equal(ps.VisibleColumns, m.doc.Sheet.InitialVisible()) {
		if err := m.opts.ViewStore.Delete(m.ctx, m.opts.Path); err != nil {
			log.ErrorErr(log.CatViewStore, "forget view state", err, "path", m.opts.Path)
		}
		return
	}
	if err := m.opts.ViewStore.Save(m.ctx, m.opts.Path, ps); err != nil {
		log.ErrorErr(log.CatViewStore, "save view state", err, "path", m.opts.Path)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
