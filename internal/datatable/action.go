package datatable

import "fmt"

// Action is a table operation a hotkey can trigger.
type Action int

const (
	ActionNone Action = iota
	ActionCopy
	ActionCut
	ActionPaste
	ActionPasteInsert
	ActionDelete
	ActionUndo
	ActionRedo
	ActionSelectAll
	ActionEnterEdit
	ActionCommitEdit
	ActionCommitFill
	ActionCancelEdit
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionExtendUp
	ActionExtendDown
	ActionExtendLeft
	ActionExtendRight
	ActionJumpEdgeUp
	ActionJumpEdgeDown
	ActionJumpEdgeLeft
	ActionJumpEdgeRight
	ActionPageUp
	ActionPageDown
	ActionDuplicateRow
	ActionInsertRow
	ActionDeleteRow
	ActionSortCycle
	ActionSortAppend
	ActionHideColumn
	ActionColumnMenu
	ActionRenameColumn
	ActionRenameRow
	ActionMoveColumnLeft
	ActionMoveColumnRight
	ActionGrowColumn
	ActionShrinkColumn
)

var actionNames = map[Action]string{
	ActionCopy:            "copy",
	ActionCut:             "cut",
	ActionPaste:           "paste",
	ActionPasteInsert:     "paste-insert",
	ActionDelete:          "delete",
	ActionUndo:            "undo",
	ActionRedo:            "redo",
	ActionSelectAll:       "select-all",
	ActionEnterEdit:       "enter-edit",
	ActionCommitEdit:      "commit-edit",
	ActionCommitFill:      "commit-fill",
	ActionCancelEdit:      "cancel-edit",
	ActionMoveUp:          "move-up",
	ActionMoveDown:        "move-down",
	ActionMoveLeft:        "move-left",
	ActionMoveRight:       "move-right",
	ActionExtendUp:        "extend-up",
	ActionExtendDown:      "extend-down",
	ActionExtendLeft:      "extend-left",
	ActionExtendRight:     "extend-right",
	ActionJumpEdgeUp:      "jump-edge-up",
	ActionJumpEdgeDown:    "jump-edge-down",
	ActionJumpEdgeLeft:    "jump-edge-left",
	ActionJumpEdgeRight:   "jump-edge-right",
	ActionPageUp:          "page-up",
	ActionPageDown:        "page-down",
	ActionDuplicateRow:    "duplicate-row",
	ActionInsertRow:       "insert-row",
	ActionDeleteRow:       "delete-row",
	ActionSortCycle:       "sort-cycle",
	ActionSortAppend:      "sort-append",
	ActionHideColumn:      "hide-column",
	ActionColumnMenu:      "column-menu",
	ActionRenameColumn:    "rename-column",
	ActionRenameRow:       "rename-row",
	ActionMoveColumnLeft:  "move-column-left",
	ActionMoveColumnRight: "move-column-right",
	ActionGrowColumn:      "grow-column",
	ActionShrinkColumn:    "shrink-column",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction resolves a configuration name such as "paste-insert".
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown table action %q", name)
}

// Actions lists every named action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for a := ActionCopy; a <= ActionShrinkColumn; a++ {
		out = append(out, a)
	}
	return out
}

// editModeAction reports whether a is meaningful while editing a cell.
func editModeAction(a Action) bool {
	switch a {
	case ActionCommitEdit, ActionCommitFill, ActionCancelEdit,
		ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight:
		return true
	}
	return false
}
