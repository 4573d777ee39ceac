package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/clipboard"
	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/pubsub"
	"github.com/zjrosen/tabula/internal/sheet"
	"github.com/zjrosen/tabula/internal/viewstore"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

const peopleCSV = "name,age,city\nada,36,london\ngrace,45,arlington\nlinus,28,helsinki\n"

type fixture struct {
	path  string
	clip  *clipboard.Memory
	store *viewstore.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(peopleCSV), 0o644))
	store, err := viewstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return fixture{path: path, clip: &clipboard.Memory{}, store: store}
}

func (f fixture) model(t *testing.T) Model {
	t.Helper()
	cfg := config.Defaults()
	cfg.Watch = false
	m, err := New(Options{
		Config:    cfg,
		Path:      f.path,
		Clipboard: f.clip,
		ViewStore: f.store,
		Now:       func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return resize(m, 100, 20)
}

func resize(m Model, w, h int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func typed(s string) []tea.Msg {
	out := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		out = append(out, runes(string(r)))
	}
	return out
}

func cellText(m Model, row, col int) string {
	var b strings.Builder
	m.doc.Sheet.EncodeColumn(m.table.Store().At(datatable.RowIdx(row)), datatable.ColumnIdx(col), &b)
	return b.String()
}

func TestApp_OpensFileWithInferredKinds(t *testing.T) {
	m := newFixture(t).model(t)

	require.Equal(t, 3, m.table.Store().Len())
	require.Equal(t, sheet.KindInt, m.doc.Sheet.Column(1).Kind)
	require.Equal(t, sheet.KindText, m.doc.Sheet.Column(2).Kind)
	require.False(t, m.table.IsDirty())

	view := m.View()
	require.Contains(t, view, "people.csv")
	require.Contains(t, view, "3 rows")
	require.Contains(t, view, "NORMAL")
}

func TestApp_FilterNarrowsRows(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, append([]tea.Msg{runes("/")}, typed("hel")...)...)
	require.True(t, m.filtering)
	require.Equal(t, "FILTER", m.mode())
	require.Equal(t, 1, m.table.NumVisibleRows())
	require.Contains(t, m.View(), "1 of 3 rows")

	// Enter keeps the query; Esc clears it.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.filtering)
	require.Equal(t, 1, m.table.NumVisibleRows())

	m, _ = send(t, m, runes("/"), tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, 3, m.table.NumVisibleRows())
	require.Empty(t, m.doc.Sheet.Query())
}

func TestApp_EditAndSave(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	msgs := []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}
	msgs = append(msgs, typed("!")...)
	msgs = append(msgs, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, msgs...)
	require.Equal(t, "ada!", cellText(m, 0, 0))
	require.True(t, m.table.IsDirty())
	require.Contains(t, m.statusView(), "●")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.False(t, m.table.IsDirty())
	require.Contains(t, m.toaster.Message(), "Saved people.csv")

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "name,age,city\nada!,36,london\n"))
	require.FileExists(t, f.path+".tabula.yaml")
}

func TestApp_QuitAsksTwiceWhenDirty(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	require.True(t, m.table.IsDirty())

	m, cmd := send(t, m, runes("q"))
	require.True(t, m.confirmQuit)
	require.Contains(t, m.toaster.Message(), "Unsaved changes")
	require.NotNil(t, cmd)

	// Any other key cancels the pending confirmation.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.False(t, m.confirmQuit)

	m, _ = send(t, m, runes("q"))
	_, cmd = send(t, m, runes("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitSavesViewState(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	// Hide the first column, then quit a clean table.
	m, _ = send(t, m, runes("-"))
	require.Equal(t, []datatable.ColumnIdx{1, 2}, m.table.VisibleColumns())
	_, cmd := send(t, m, runes("q"))
	require.Equal(t, tea.QuitMsg{}, cmd())

	ps, ok, err := f.store.Load(context.Background(), f.path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []datatable.ColumnIdx{1, 2}, ps.VisibleColumns)

	// The next session starts from the saved state.
	again := f.model(t)
	require.Equal(t, []datatable.ColumnIdx{1, 2}, again.table.VisibleColumns())
}

func TestApp_QuitForgetsDefaultViewState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, f.path, datatable.PersistedState{
		NumColumns:     3,
		VisibleColumns: []datatable.ColumnIdx{2, 1},
	}))

	m := f.model(t)
	require.Equal(t, []datatable.ColumnIdx{2, 1}, m.table.VisibleColumns())

	m.table.ApplyCache(datatable.SetVisibleColumns{Cols: []datatable.ColumnIdx{0, 1, 2}})
	_, cmd := send(t, m, runes("q"))
	require.Equal(t, tea.QuitMsg{}, cmd())

	_, ok, err := f.store.Load(ctx, f.path)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApp_ToggleLock(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.table.Store().At(0).Locked)
	require.Contains(t, m.toaster.Message(), "Locked 1 row")

	// Locked rows refuse cell writes.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	require.Equal(t, "ada", cellText(m, 0, 0))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.False(t, m.table.Store().At(0).Locked)

	// Undo restores the lock.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.True(t, m.table.Store().At(0).Locked)
}

func TestApp_ReloadAsksTwiceWhenDirty(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDelete})

	require.NoError(t, os.WriteFile(f.path, []byte(peopleCSV+"ken,80,berkeley\n"), 0o644))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.True(t, m.confirmReload)
	require.Equal(t, 3, m.table.Store().Len())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, 4, m.table.Store().Len())
	require.False(t, m.table.IsDirty())
	require.Equal(t, "ada", cellText(m, 0, 0))
}

func TestApp_InsertVirtualColumn(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, datatable.ColumnRequestMsg{Kind: datatable.ColumnInsertRight, Col: 2, VisPos: 3})
	require.NotNil(t, m.prompt)
	require.Equal(t, "PROMPT", m.mode())

	msgs := append(typed("score:int:virtual"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, msgs...)
	require.Nil(t, m.prompt)
	require.Equal(t, 4, m.table.NumColumns())

	col := m.doc.Sheet.Column(3)
	require.Equal(t, "score", col.Name)
	require.Equal(t, sheet.KindInt, col.Kind)
	require.True(t, col.Virtual)
	require.Equal(t, []datatable.ColumnIdx{0, 1, 2, 3}, m.table.VisibleColumns())
}

func TestApp_InsertColumnRejectsBadSpec(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, datatable.ColumnRequestMsg{Kind: datatable.ColumnInsertLeft, Col: 0, VisPos: 0})
	msgs := append(typed("x:money"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, msgs...)
	require.Equal(t, 3, m.table.NumColumns())
	require.Contains(t, m.toaster.Message(), "unknown column kind")
}

func TestApp_ChangeColumnType(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, datatable.ColumnRequestMsg{Kind: datatable.ColumnChangeType, Col: 2, VisPos: 2})
	require.Equal(t, "text", m.prompt.input.Value())

	m.prompt.input.SetValue("int")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, sheet.KindInt, m.doc.Sheet.Column(2).Kind)
	require.Contains(t, m.toaster.Message(), "3 cells could not be read")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, sheet.KindText, m.doc.Sheet.Column(2).Kind)
	require.Equal(t, "london", cellText(m, 0, 2))
}

func TestApp_GoToColumn(t *testing.T) {
	m := newFixture(t).model(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, m.prompt)
	m, _ = send(t, m, typed("cty")...)
	require.Contains(t, m.prompt.view(), "→ city")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	a, ok := m.table.Anchor()
	require.True(t, ok)
	require.Equal(t, datatable.VisColumnPos(2), a.Col)
}

func TestApp_GoToHiddenColumnShowsIt(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight}, runes("-"))
	require.Equal(t, []datatable.ColumnIdx{0, 2}, m.table.VisibleColumns())

	m = m.goToColumn(1)
	require.Equal(t, []datatable.ColumnIdx{0, 2, 1}, m.table.VisibleColumns())
	a, _ := m.table.Anchor()
	require.Equal(t, datatable.VisColumnPos(2), a.Col)
}

func TestApp_CopyPasteThroughClipboard(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	m, _ = send(t, m, cmd())
	text, err := f.clip.ReadText()
	require.NoError(t, err)
	require.Equal(t, "ada", text)
	require.Contains(t, m.toaster.Message(), "Copied 1 cell")

	require.NoError(t, f.clip.WriteText("x\t1\ny\tnot a number\n"))
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlV})
	m, _ = send(t, m, cmd())
	require.Equal(t, "x", cellText(m, 0, 0))
	require.Equal(t, "1", cellText(m, 0, 1))
	require.Equal(t, "grace", cellText(m, 1, 0))
	require.Contains(t, m.toaster.Message(), "1 row skipped")
}

func TestApp_HistoryToasts(t *testing.T) {
	m := newFixture(t).model(t)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	m, _ = send(t, m, cmd())
	require.Equal(t, "Nothing to undo", m.toaster.Message())
}

func TestParseColumnSpec(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		kind    sheet.Kind
		virtual bool
		wantErr bool
	}{
		{spec: "notes", name: "notes", kind: sheet.KindText},
		{spec: "due:datetime", name: "due", kind: sheet.KindDateTime},
		{spec: "done:bool:virtual", name: "done", kind: sheet.KindBool, virtual: true},
		{spec: "tag::virtual", name: "tag", kind: sheet.KindText, virtual: true},
		{spec: ":int", wantErr: true},
		{spec: "x:int:hidden", wantErr: true},
		{spec: "x:int:virtual:more", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, kind, virtual, err := parseColumnSpec(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.name, name)
			require.Equal(t, tt.kind, kind)
			require.Equal(t, tt.virtual, virtual)
		})
	}
}

func TestDescribeRowEvent(t *testing.T) {
	ev := pubsub.Event[sheet.RowEvent]{Type: pubsub.RowRemovedEvent, Payload: sheet.RowEvent{Index: 4}}
	require.Equal(t, "row 5 removed", describeRowEvent(ev))
}

func TestApp_Program(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(90, 14))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("helsinki"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Type("!")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Saved people.csv"))
	}, teatest.WithDuration(3*time.Second))

	tm.Type("q")
	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	require.Equal(t, "grace!", cellText(final, 1, 0))
	require.False(t, final.table.IsDirty())

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	require.Contains(t, string(data), "grace!,45,arlington")
}
