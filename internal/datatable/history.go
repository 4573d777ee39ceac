package datatable

import "errors"

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxUndoHistory bounds history when no limit is configured.
const DefaultMaxUndoHistory = 100

// entry pairs the forward commands of one user action with the commands that
// revert it, in the order they must be applied.
type entry struct {
	apply   []HistoryCommand
	restore []HistoryCommand
}

// History is a bounded undo/redo stack. It also tracks the depth at which the
// store was last clean so undo can return the dirty flag to false.
type History struct {
	undo []entry
	redo []entry
	max  int

	// cleanDepth is the undo depth matching the last clean state, or -1 when
	// that state is no longer reachable.
	cleanDepth int
}

// NewHistory creates a history bounded to maxEntries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxUndoHistory
	}
	return &History{max: maxEntries}
}

// push records a new entry, clears redo and evicts the oldest entry on
// overflow. It reports whether an entry was evicted.
func (h *History) push(e entry) bool {
	if h.cleanDepth > len(h.undo) {
		h.cleanDepth = -1
	}
	h.undo = append(h.undo, e)
	h.redo = nil

	if len(h.undo) <= h.max {
		return false
	}
	excess := len(h.undo) - h.max
	clear(h.undo[:excess])
	h.undo = h.undo[excess:]
	if h.cleanDepth >= 0 {
		h.cleanDepth -= excess
		if h.cleanDepth < 0 {
			h.cleanDepth = -1
		}
	}
	return true
}

func (h *History) popUndo() (entry, bool) {
	if len(h.undo) == 0 {
		return entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

func (h *History) popRedo() (entry, bool) {
	if len(h.redo) == 0 {
		return entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

func (h *History) pushRedo(e entry) { h.redo = append(h.redo, e) }

// pushUndoKeepRedo is used by redo, which must not clear the redo stack.
func (h *History) pushUndoKeepRedo(e entry) { h.undo = append(h.undo, e) }

// MarkClean records the current depth as the clean state.
func (h *History) MarkClean() { h.cleanDepth = len(h.undo) }

// AtCleanPoint reports whether the applied entries match the clean state.
func (h *History) AtCleanPoint() bool { return h.cleanDepth == len(h.undo) }

// Reset drops both stacks and marks the empty history clean.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.cleanDepth = 0
}

func (h *History) CanUndo() bool  { return len(h.undo) > 0 }
func (h *History) CanRedo() bool  { return len(h.redo) > 0 }
func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }
func (h *History) Max() int       { return h.max }
