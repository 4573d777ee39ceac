// Package keys contains keybinding definitions.
package keys

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/tabula/internal/datatable"
)

// App action names. Table actions use datatable's names.
const (
	ActionSave       = "save"
	ActionReload     = "reload"
	ActionToggleLock = "toggle-lock"
	ActionFilter     = "filter"
	ActionGoToColumn = "goto-column"
	ActionHelp       = "help"
	ActionQuit       = "quit"
)

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Application
	Save       key.Binding
	Reload     key.Binding
	ToggleLock key.Binding
	Filter     key.Binding
	GoToColumn key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Grid holds the table's bindings outside edit mode, Edit those while a
	// cell editor is open.
	Grid map[datatable.Action]key.Binding
	Edit map[datatable.Action]key.Binding
}

func bind(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Save:       bind("save", "ctrl+s"),
		Reload:     bind("reload file", "ctrl+r"),
		ToggleLock: bind("lock row", "ctrl+l"),
		Filter:     bind("filter rows", "/"),
		GoToColumn: bind("go to column", "ctrl+g"),
		Help:       bind("toggle help", "?"),
		Quit:       bind("quit", "q", "ctrl+q"),

		Grid: map[datatable.Action]key.Binding{
			datatable.ActionCopy:            bind("copy", "ctrl+c", "y"),
			datatable.ActionCut:             bind("cut", "ctrl+x"),
			datatable.ActionPaste:           bind("paste", "ctrl+v", "p"),
			datatable.ActionPasteInsert:     bind("paste as rows", "alt+v", "P"),
			datatable.ActionDelete:          bind("clear cells", "delete", "backspace"),
			datatable.ActionUndo:            bind("undo", "ctrl+z", "u"),
			datatable.ActionRedo:            bind("redo", "ctrl+y", "U"),
			datatable.ActionSelectAll:       bind("select all", "ctrl+a"),
			datatable.ActionEnterEdit:       bind("edit cell", "enter", " ", "f2", "i"),
			datatable.ActionMoveUp:          bind("up", "up", "k"),
			datatable.ActionMoveDown:        bind("down", "down", "j"),
			datatable.ActionMoveLeft:        bind("left", "left", "h", "shift+tab"),
			datatable.ActionMoveRight:       bind("right", "right", "l", "tab"),
			datatable.ActionExtendUp:        bind("extend up", "shift+up", "K"),
			datatable.ActionExtendDown:      bind("extend down", "shift+down", "J"),
			datatable.ActionExtendLeft:      bind("extend left", "shift+left", "H"),
			datatable.ActionExtendRight:     bind("extend right", "shift+right", "L"),
			datatable.ActionJumpEdgeUp:      bind("first row", "ctrl+up", "g"),
			datatable.ActionJumpEdgeDown:    bind("last row", "ctrl+down", "G"),
			datatable.ActionJumpEdgeLeft:    bind("first column", "ctrl+left", "home", "0"),
			datatable.ActionJumpEdgeRight:   bind("last column", "ctrl+right", "end", "$"),
			datatable.ActionPageUp:          bind("page up", "pgup", "ctrl+b"),
			datatable.ActionPageDown:        bind("page down", "pgdown", "ctrl+f"),
			datatable.ActionDuplicateRow:    bind("duplicate row", "ctrl+d"),
			datatable.ActionInsertRow:       bind("insert row", "o", "insert"),
			datatable.ActionDeleteRow:       bind("delete row", "D", "ctrl+k"),
			datatable.ActionSortCycle:       bind("sort", "s"),
			datatable.ActionSortAppend:      bind("add sort key", "S"),
			datatable.ActionHideColumn:      bind("hide column", "-"),
			datatable.ActionColumnMenu:      bind("column menu", "m"),
			datatable.ActionRenameColumn:    bind("rename column", "r"),
			datatable.ActionRenameRow:       bind("rename row", "R"),
			datatable.ActionMoveColumnLeft:  bind("move column left", "<"),
			datatable.ActionMoveColumnRight: bind("move column right", ">"),
			datatable.ActionGrowColumn:      bind("widen column", "+", "="),
			datatable.ActionShrinkColumn:    bind("narrow column", "_"),
		},
		Edit: map[datatable.Action]key.Binding{
			datatable.ActionCommitEdit: bind("commit", "enter"),
			datatable.ActionCommitFill: bind("commit to selection", "alt+enter", "ctrl+enter"),
			datatable.ActionCancelEdit: bind("cancel", "esc"),
			datatable.ActionMoveUp:     bind("commit and move up", "up"),
			datatable.ActionMoveDown:   bind("commit and move down", "down"),
			datatable.ActionMoveLeft:   bind("commit and move left", "shift+tab"),
			datatable.ActionMoveRight:  bind("commit and move right", "tab"),
			datatable.ActionUndo:       bind("undo", "ctrl+z"),
			datatable.ActionRedo:       bind("redo", "ctrl+y"),
		},
	}
}

func (k *KeyMap) app() map[string]*key.Binding {
	return map[string]*key.Binding{
		ActionSave:       &k.Save,
		ActionReload:     &k.Reload,
		ActionToggleLock: &k.ToggleLock,
		ActionFilter:     &k.Filter,
		ActionGoToColumn: &k.GoToColumn,
		ActionHelp:       &k.Help,
		ActionQuit:       &k.Quit,
	}
}

// ActionNames lists every name accepted under the keys config section.
func ActionNames() []string {
	k := DefaultKeyMap()
	names := make([]string, 0, len(k.app())+len(datatable.Actions()))
	for name := range k.app() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, a := range datatable.Actions() {
		names = append(names, a.String())
	}
	return names
}

// ValidateOverrides checks the keys config section.
func ValidateOverrides(overrides map[string][]string) error {
	_, err := DefaultKeyMap().WithOverrides(overrides)
	return err
}

// WithOverrides returns a copy of k where each named action is bound to the
// given keys instead of its defaults. A table action that also has an edit
// mode binding only changes the grid binding.
func (k KeyMap) WithOverrides(overrides map[string][]string) (KeyMap, error) {
	out := k
	out.Grid = cloneBindings(k.Grid)
	out.Edit = cloneBindings(k.Edit)
	app := out.app()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		keys := overrides[name]
		if len(keys) == 0 || slices.ContainsFunc(keys, blankKey) {
			return k, fmt.Errorf("%s: keys must be non-empty", name)
		}
		if b, ok := app[name]; ok {
			*b = rebind(*b, keys)
			continue
		}
		a, err := datatable.ParseAction(name)
		if err != nil {
			return k, err
		}
		if b, ok := out.Grid[a]; ok {
			out.Grid[a] = rebind(b, keys)
		} else if b, ok := out.Edit[a]; ok {
			out.Edit[a] = rebind(b, keys)
		} else {
			out.Grid[a] = bind(name, keys...)
		}
	}
	return out, nil
}

// blankKey reports an empty or whitespace key name. A single space is the
// space bar.
func blankKey(s string) bool { return s != " " && strings.TrimSpace(s) == "" }

func rebind(b key.Binding, keys []string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], b.Help().Desc))
}

func cloneBindings(m map[datatable.Action]key.Binding) map[datatable.Action]key.Binding {
	out := make(map[datatable.Action]key.Binding, len(m))
	for a, b := range m {
		out[a] = b
	}
	return out
}

// Hotkeys returns the table bindings for ctx in a stable order. It is the
// sheet's datatable.Viewer.Hotkeys.
func (k KeyMap) Hotkeys(ctx datatable.HotkeyContext) []datatable.Hotkey {
	m := k.Grid
	if ctx.InEditMode {
		m = k.Edit
	}
	out := make([]datatable.Hotkey, 0, len(m))
	for _, a := range datatable.Actions() {
		if b, ok := m[a]; ok {
			out = append(out, datatable.Hotkey{Binding: b, Action: a})
		}
	}
	return out
}

// Conflicts lists keys bound to more than one grid or application action.
func (k KeyMap) Conflicts() []string {
	owners := make(map[string][]string)
	for name, b := range k.app() {
		for _, s := range b.Keys() {
			owners[s] = append(owners[s], name)
		}
	}
	for a, b := range k.Grid {
		for _, s := range b.Keys() {
			owners[s] = append(owners[s], a.String())
		}
	}
	var out []string
	for s, names := range owners {
		if len(names) > 1 {
			sort.Strings(names)
			out = append(out, fmt.Sprintf("%s: %s", s, strings.Join(names, ", ")))
		}
	}
	sort.Strings(out)
	return out
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Grid[datatable.ActionEnterEdit], k.Filter, k.Save,
		k.Grid[datatable.ActionColumnMenu], k.Help, k.Quit,
	}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	g := func(actions ...datatable.Action) []key.Binding {
		out := make([]key.Binding, len(actions))
		for i, a := range actions {
			out[i] = k.Grid[a]
		}
		return out
	}
	return [][]key.Binding{
		g(datatable.ActionMoveUp, datatable.ActionMoveDown, datatable.ActionMoveLeft, datatable.ActionMoveRight,
			datatable.ActionPageUp, datatable.ActionPageDown, datatable.ActionSelectAll), // Navigation
		g(datatable.ActionEnterEdit, datatable.ActionCopy, datatable.ActionCut, datatable.ActionPaste,
			datatable.ActionPasteInsert, datatable.ActionDelete, datatable.ActionUndo, datatable.ActionRedo), // Editing
		g(datatable.ActionInsertRow, datatable.ActionDuplicateRow, datatable.ActionDeleteRow,
			datatable.ActionRenameRow, datatable.ActionSortCycle, datatable.ActionColumnMenu), // Rows and columns
		{k.Filter, k.GoToColumn, k.ToggleLock, k.Save, k.Reload, k.Help, k.Quit}, // General
	}
}
