package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/document"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/sheet"
	"github.com/zjrosen/tabula/internal/ui/toaster"
	"github.com/zjrosen/tabula/internal/watcher"
)

// quit exits, asking for a second press when there are unsaved changes.
func (m Model) quit() (Model, tea.Cmd) {
	if m.table.IsDirty() && !m.confirmQuit {
		m.confirmQuit = true
		return m, m.showToast("Unsaved changes. Press quit again to discard them", toaster.StyleWarn)
	}
	m.saveViewState()
	log.Info(log.CatUI, "quit", "dirty", m.table.IsDirty())
	return m, tea.Quit
}

func (m Model) save() (Model, tea.Cmd) {
	if m.table.IsEditing() {
		return m, nil
	}
	if m.watcher != nil {
		m.watcher.Suppress(saveQuiet)
	}
	rows := m.table.Store().Rows()
	if err := m.doc.Save(rows, m.table.VisibleColumns()); err != nil {
		log.ErrorErr(log.CatUI, "save failed", err, "path", m.opts.Path)
		return m, m.showToast("Save failed: "+err.Error(), toaster.StyleError)
	}
	m.table.ClearDirty()
	m.stale = false

	text := fmt.Sprintf("Saved %s (%s rows", m.fileName(), humanize.Comma(int64(len(rows))))
	if fi, err := os.Stat(m.opts.Path); err == nil {
		text += ", " + humanize.Bytes(uint64(fi.Size()))
	}
	log.Info(log.CatUI, "saved", "path", m.opts.Path, "rows", len(rows))
	return m, m.showToast(text+")", toaster.StyleSuccess)
}

// reload rereads the data file, asking for a second press when that would
// discard unsaved changes.
func (m Model) reload() (Model, tea.Cmd) {
	if m.table.IsDirty() && !m.confirmReload {
		m.confirmReload = true
		return m, m.showToast("Unsaved changes. Press reload again to discard them", toaster.StyleWarn)
	}
	doc, err := document.Open(m.opts.Path, m.sheetOptions())
	if err != nil {
		log.ErrorErr(log.CatUI, "reload failed", err, "path", m.opts.Path)
		return m, m.showToast("Reload failed: "+err.Error(), toaster.StyleError)
	}
	var persisted *datatable.PersistedState
	if ps, ok := m.table.PersistedState(); ok {
		persisted = &ps
	}
	doc.Sheet.SetQuery(m.doc.Sheet.Query())
	m.install(doc, persisted)
	m.stale = false
	m.lastEvent = ""
	log.Info(log.CatUI, "reloaded", "path", m.opts.Path, "rows", m.table.Store().Len())
	return m, m.showToast(fmt.Sprintf("Reloaded %s (%s rows)", m.fileName(),
		humanize.Comma(int64(m.table.Store().Len()))), toaster.StyleInfo)
}

// toggleLock locks every selected row, or unlocks them all when they are
// already locked.
func (m Model) toggleLock() (Model, tea.Cmd) {
	idx := m.table.SelectedRows()
	if len(idx) == 0 || m.table.IsEditing() {
		return m, nil
	}
	lock := false
	for _, i := range idx {
		if !m.table.Store().At(i).Locked {
			lock = true
			break
		}
	}
	rows := make([]sheet.Row, len(idx))
	for n, i := range idx {
		rows[n] = m.table.Store().At(i).Clone()
		rows[n].Locked = lock
	}
	m.table.Exec(datatable.ReplaceRows[sheet.Row]{Indices: idx, Rows: rows})

	verb := "Unlocked"
	if lock {
		verb = "Locked"
	}
	return m, m.showToast(fmt.Sprintf("%s %s", verb, plural(len(idx), "row")), toaster.StyleInfo)
}

func (m Model) handleFileChanged(msg watcher.ChangedMsg) (Model, tea.Cmd) {
	log.Info(log.CatWatcher, "file changed on disk", "path", msg.Path)
	m.stale = true
	cmds := []tea.Cmd{watcher.WaitCmd(m.changes)}
	hint := "press " + m.keys.Reload.Help().Key + " to reload"
	if m.table.IsDirty() {
		hint = "saving will overwrite it"
	}
	cmds = append(cmds, m.showToast(m.fileName()+" changed on disk; "+hint, toaster.StyleWarn))
	return m, tea.Batch(cmds...)
}

func (m Model) showLoadNotice() (Model, tea.Cmd) {
	var parts []string
	if n := len(m.doc.Demoted); n > 0 {
		parts = append(parts, fmt.Sprintf("read %s as text: %s", plural(n, "column"), strings.Join(m.doc.Demoted, ", ")))
	}
	if n := m.doc.DroppedVirtual; n > 0 {
		parts = append(parts, fmt.Sprintf("dropped %s of saved values", plural(n, "cell")))
	}
	if len(parts) == 0 {
		return m, nil
	}
	return m, m.showToast(strings.Join(parts, "; "), toaster.StyleWarn)
}

func (m Model) handleCopyReport(r datatable.CopyReport) (Model, tea.Cmd) {
	switch {
	case r.Cells == 0:
		return m, nil
	case r.Err != nil:
		return m, m.showToast("Copied inside tabula only: "+r.Err.Error(), toaster.StyleWarn)
	case !r.System:
		return m, m.showToast(fmt.Sprintf("Copied %s", plural(r.Cells, "cell")), toaster.StyleInfo)
	}
	return m, m.showToast(fmt.Sprintf("Copied %s from %s", plural(r.Cells, "cell"), plural(r.Rows, "row")),
		toaster.StyleSuccess)
}

// handlePasteReport reports what a paste did, including rows the codec
// rejected and cells a locked row refused.
func (m Model) handlePasteReport(r datatable.PasteReport) (Model, tea.Cmd) {
	if !r.Applied && r.SkippedRows == 0 && r.Vetoed == 0 {
		return m, nil
	}
	var parts []string
	if r.Cells > 0 {
		parts = append(parts, "pasted "+plural(r.Cells, "cell"))
	}
	if r.InsertedRows > 0 {
		parts = append(parts, "inserted "+plural(r.InsertedRows, "row"))
	}
	if r.SkippedRows > 0 {
		parts = append(parts, plural(r.SkippedRows, "row")+" skipped")
	}
	if r.Vetoed > 0 {
		parts = append(parts, plural(r.Vetoed, "locked cell")+" unchanged")
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing pasted")
	}
	text := strings.Join(parts, ", ")
	text = strings.ToUpper(text[:1]) + text[1:]

	style := toaster.StyleSuccess
	if r.SkippedRows > 0 || r.Vetoed > 0 {
		style = toaster.StyleWarn
	}
	return m, m.showToast(text, style)
}

func (m Model) handleHistory(msg datatable.HistoryMsg) (Model, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, datatable.ErrNothingToUndo):
		return m, m.showToast("Nothing to undo", toaster.StyleInfo)
	case errors.Is(msg.Err, datatable.ErrNothingToRedo):
		return m, m.showToast("Nothing to redo", toaster.StyleInfo)
	case msg.Err != nil:
		return m, m.showToast(msg.Err.Error(), toaster.StyleError)
	}
	return m, nil
}

// handleColumnRequest opens the prompt that completes a column menu entry.
func (m Model) handleColumnRequest(msg datatable.ColumnRequestMsg) (Model, tea.Cmd) {
	switch msg.Kind {
	case datatable.ColumnInsertLeft, datatable.ColumnInsertRight:
		at := msg.Col
		if msg.Kind == datatable.ColumnInsertRight {
			at++
		}
		m.prompt = newPrompt("New column", "name[:kind[:virtual]]  kinds: "+kindList(), "",
			func(m Model, value string) (Model, tea.Cmd) {
				return m.insertColumn(value, at, msg.VisPos)
			})
	case datatable.ColumnChangeType:
		current := m.doc.Sheet.Column(msg.Col)
		m.prompt = newPrompt("Change type of "+current.Name, "kinds: "+kindList(), current.Kind.String(),
			func(m Model, value string) (Model, tea.Cmd) {
				return m.convertColumn(msg.Col, value)
			})
	}
	return m, nil
}

func kindList() string {
	names := make([]string, 0, len(sheet.Kinds()))
	for _, k := range sheet.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

// parseColumnSpec reads "name", "name:kind" or "name:kind:virtual".
func parseColumnSpec(spec string) (name string, kind sheet.Kind, virtual bool, err error) {
	parts := strings.Split(spec, ":")
	name = strings.TrimSpace(parts[0])
	if name == "" {
		return "", 0, false, errors.New("column name is empty")
	}
	kind = sheet.KindText
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		if kind, err = sheet.ParseKind(parts[1]); err != nil {
			return "", 0, false, err
		}
	}
	if len(parts) > 2 {
		if strings.TrimSpace(parts[2]) != "virtual" {
			return "", 0, false, fmt.Errorf("unknown column flag %q", parts[2])
		}
		virtual = true
	}
	if len(parts) > 3 {
		return "", 0, false, fmt.Errorf("too many fields in %q", spec)
	}
	return name, kind, virtual, nil
}

func (m Model) insertColumn(spec string, at datatable.ColumnIdx, vis datatable.VisColumnPos) (Model, tea.Cmd) {
	if spec == "" {
		return m, nil
	}
	name, kind, virtual, err := parseColumnSpec(spec)
	if err != nil {
		return m, m.showToast(err.Error(), toaster.StyleError)
	}
	data := sheet.NewColumnData(name, kind)
	if virtual {
		data = sheet.NewVirtualColumnData(name, kind)
	}
	m.table.Exec(datatable.InsertColumn{At: at, VisPos: vis, Data: data})
	return m, nil
}

func (m Model) convertColumn(col datatable.ColumnIdx, value string) (Model, tea.Cmd) {
	kind, err := sheet.ParseKind(value)
	if err != nil {
		return m, m.showToast(err.Error(), toaster.StyleError)
	}
	if kind == m.doc.Sheet.Column(col).Kind {
		return m, nil
	}
	data, lost := m.doc.Sheet.ConvertColumn(m.table.Store().Rows(), col, kind)
	m.table.Exec(datatable.ReplaceColumn{At: col, Data: data})
	if lost > 0 {
		return m, m.showToast(fmt.Sprintf("Converted to %s; %s could not be read and were cleared",
			kind, plural(lost, "cell")), toaster.StyleWarn)
	}
	return m, m.showToast("Converted to "+kind.String(), toaster.StyleSuccess)
}

// columnNames lists every column name in logical order for fuzzy matching.
type columnNames []string

func (c columnNames) String(i int) string { return c[i] }
func (c columnNames) Len() int            { return len(c) }

func (m Model) matchColumns(query string) []fuzzy.Match {
	names := make(columnNames, m.table.NumColumns())
	for i := range names {
		names[i] = m.doc.Sheet.ColumnName(datatable.ColumnIdx(i))
	}
	if query == "" {
		out := make([]fuzzy.Match, len(names))
		for i, n := range names {
			out[i] = fuzzy.Match{Str: n, Index: i}
		}
		return out
	}
	return fuzzy.FindFrom(query, names)
}

func (m Model) openGoToColumn() Model {
	p := newPrompt("Go to column", "", "", func(m Model, value string) (Model, tea.Cmd) {
		matches := m.matchColumns(value)
		if len(matches) == 0 {
			return m, m.showToast(fmt.Sprintf("No column matches %q", value), toaster.StyleInfo)
		}
		return m.goToColumn(datatable.ColumnIdx(matches[0].Index)), nil
	})
	p.suggest = func(value string) []string {
		matches := m.matchColumns(value)
		out := make([]string, 0, maxSuggestions)
		for _, mt := range matches[:min(len(matches), maxSuggestions)] {
			out = append(out, mt.Str)
		}
		return out
	}
	m.prompt = p
	return m
}

// goToColumn moves the anchor to col on the current row, showing the column
// next to the anchor first when it is hidden.
func (m Model) goToColumn(col datatable.ColumnIdx) Model {
	anchor, ok := m.table.Anchor()
	if !ok {
		anchor = datatable.VisCell{}
	}
	pos := -1
	for i, c := range m.table.VisibleColumns() {
		if c == col {
			pos = i
			break
		}
	}
	if pos < 0 {
		at := min(int(anchor.Col)+1, m.table.NumVisibleColumns())
		m.table.ApplyCache(datatable.ShowColumn{Col: col, At: datatable.VisColumnPos(at)})
		pos = at
	}
	m.table.Select(datatable.VisCell{Row: anchor.Row, Col: datatable.VisColumnPos(pos)}, false)
	m.grid.ScrollToAnchor()
	return m
}
