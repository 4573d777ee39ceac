package datatable

import (
	"fmt"
	"slices"

	"github.com/zjrosen/tabula/internal/log"
)

// Exec applies cmds as one undoable step. Sub-commands that end up changing
// nothing are dropped; if none remain, history is untouched and Exec returns
// false. A failing sub-command rolls the whole step back.
func (t *Table[R]) Exec(cmds ...HistoryCommand) bool {
	ok, _ := t.exec(cmds)
	return ok
}

func (t *Table[R]) exec(cmds []HistoryCommand) (applied bool, vetoed int) {
	var e entry
	for _, cmd := range cmds {
		fwd, restore, v, err := t.apply(cmd, true)
		vetoed += v
		if err != nil {
			log.ErrorErr(log.CatHistory, "command failed, rolling back", err, "command", fmt.Sprintf("%T", cmd))
			for i := len(e.restore) - 1; i >= 0; i-- {
				if _, _, _, rerr := t.apply(e.restore[i], false); rerr != nil {
					log.ErrorErr(log.CatHistory, "rollback failed", rerr)
				}
			}
			t.version++
			t.syncDirty()
			t.Sync()
			return false, vetoed
		}
		if fwd == nil {
			continue
		}
		e.apply = append(e.apply, fwd)
		e.restore = append(e.restore, restore)
	}
	if len(e.apply) == 0 {
		return false, vetoed
	}

	slices.Reverse(e.restore)
	if t.history.push(e) {
		log.Debug(log.CatHistory, "evicted oldest history entry", "max", t.history.Max())
	}
	t.version++
	t.store.MarkDirty()
	t.Sync()
	return true, vetoed
}

// Undo reverts the newest history entry. Edit mode is cancelled first.
func (t *Table[R]) Undo() error {
	t.edit = nil
	e, ok := t.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	for _, cmd := range e.restore {
		if _, _, _, err := t.apply(cmd, false); err != nil {
			log.ErrorErr(log.CatHistory, "undo step failed", err, "command", fmt.Sprintf("%T", cmd))
		}
	}
	t.history.pushRedo(e)
	t.version++
	t.syncDirty()
	t.Sync()
	return nil
}

// Redo reapplies the newest undone entry without consulting the viewer's
// confirm hooks again.
func (t *Table[R]) Redo() error {
	t.edit = nil
	e, ok := t.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	for _, cmd := range e.apply {
		if _, _, _, err := t.apply(cmd, false); err != nil {
			log.ErrorErr(log.CatHistory, "redo step failed", err, "command", fmt.Sprintf("%T", cmd))
		}
	}
	t.history.pushUndoKeepRedo(e)
	t.version++
	t.syncDirty()
	t.Sync()
	return nil
}

func (t *Table[R]) syncDirty() {
	if t.history.AtCleanPoint() {
		t.store.ClearDirty()
	} else {
		t.store.MarkDirty()
	}
}

// apply performs one history command and returns the effective forward
// command with its restore. A nil fwd means nothing changed. Restore state is
// captured before the mutation.
func (t *Table[R]) apply(cmd HistoryCommand, confirm bool) (fwd, restore HistoryCommand, vetoed int, err error) {
	switch c := cmd.(type) {
	case SetCell[R]:
		return t.applySetCells(SetCells[R]{
			Slab:    []R{c.Value},
			Targets: []CellTarget{{Row: c.Row, Col: c.Col}},
			Ctx:     c.Ctx,
		}, confirm)
	case SetCells[R]:
		return t.applySetCells(c, confirm)
	case InsertRows[R]:
		fwd, restore, err = t.applyInsertRows(c)
	case RemoveRows:
		return t.applyRemoveRows(c, confirm)
	case ReplaceRows[R]:
		fwd, restore, err = t.applyReplaceRows(c)
	case InsertColumn:
		fwd, restore, err = t.applyInsertColumn(c)
	case RemoveColumn:
		fwd, restore, err = t.applyRemoveColumn(c)
	case ReplaceColumn:
		fwd, restore, err = t.applyReplaceColumn(c)
	case MoveColumn:
		fwd, restore, err = t.applyMoveColumn(c)
	case RenameColumn:
		fwd, restore, err = t.applyRenameColumn(c)
	case RenameRow:
		fwd, restore, err = t.applyRenameRow(c)
	default:
		err = fmt.Errorf("unsupported history command %T", cmd)
	}
	return fwd, restore, 0, err
}

func (t *Table[R]) applySetCells(c SetCells[R], confirm bool) (HistoryCommand, HistoryCommand, int, error) {
	vetoed := 0
	kept := make([]CellTarget, 0, len(c.Targets))
	for _, tg := range c.Targets {
		if !t.store.Valid(tg.Row) || tg.Col < 0 || int(tg.Col) >= t.numColumns || tg.Slab < 0 || tg.Slab >= len(c.Slab) {
			continue
		}
		if confirm {
			cur := t.store.At(tg.Row)
			next := t.viewer.CloneRow(cur)
			t.viewer.SetCell(&c.Slab[tg.Slab], &next, tg.Col)
			if !t.viewer.ConfirmCellWrite(cur, &next, tg.Col, c.Ctx) {
				vetoed++
				continue
			}
		}
		kept = append(kept, tg)
	}
	if len(kept) == 0 {
		return nil, nil, vetoed, nil
	}

	slot := make(map[RowIdx]int)
	var prev []R
	var touched []RowIdx
	restoreTargets := make([]CellTarget, 0, len(kept))
	for _, tg := range kept {
		i, ok := slot[tg.Row]
		if !ok {
			i = len(prev)
			prev = append(prev, t.viewer.CloneRow(t.store.At(tg.Row)))
			slot[tg.Row] = i
			touched = append(touched, tg.Row)
		}
		restoreTargets = append(restoreTargets, CellTarget{Row: tg.Row, Col: tg.Col, Slab: i})
	}

	for _, tg := range kept {
		t.viewer.SetCell(&c.Slab[tg.Slab], t.store.At(tg.Row), tg.Col)
	}
	t.store.MarkDirty()
	for _, row := range touched {
		t.viewer.OnRowUpdated(row, t.store.At(row))
	}

	fwd := SetCells[R]{Slab: c.Slab, Targets: kept, Ctx: c.Ctx}
	restore := SetCells[R]{Slab: prev, Targets: restoreTargets, Ctx: c.Ctx}
	return fwd, restore, vetoed, nil
}

func (t *Table[R]) applyInsertRows(c InsertRows[R]) (HistoryCommand, HistoryCommand, error) {
	if len(c.Indices) != len(c.Rows) {
		return nil, nil, fmt.Errorf("insert rows: %d indices for %d rows", len(c.Indices), len(c.Rows))
	}
	if len(c.Indices) == 0 {
		return nil, nil, nil
	}
	n := t.store.Len()
	for i, idx := range c.Indices {
		if idx < 0 || int(idx) > n+i || (i > 0 && idx <= c.Indices[i-1]) {
			return nil, nil, fmt.Errorf("insert rows: invalid index %d at position %d", idx, i)
		}
	}
	for i, idx := range c.Indices {
		t.store.InsertAt(idx, t.viewer.CloneRow(&c.Rows[i]))
		t.shiftEditRow(idx, 1)
		t.viewer.OnRowInserted(idx, t.store.At(idx))
	}
	return c, RemoveRows{Indices: slices.Clone(c.Indices)}, nil
}

func (t *Table[R]) applyRemoveRows(c RemoveRows, confirm bool) (HistoryCommand, HistoryCommand, int, error) {
	idx := slices.Clone(c.Indices)
	slices.Sort(idx)
	idx = slices.Compact(idx)
	vetoed := 0
	kept := idx[:0]
	for _, i := range idx {
		if !t.store.Valid(i) {
			continue
		}
		if confirm && !t.viewer.ConfirmRowDeletion(t.store.At(i)) {
			vetoed++
			continue
		}
		kept = append(kept, i)
	}
	if len(kept) == 0 {
		return nil, nil, vetoed, nil
	}

	captured := make([]R, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		captured[i] = t.store.RemoveAt(kept[i])
		t.dropEditRow(kept[i])
		t.viewer.OnRowRemoved(kept[i], &captured[i])
	}
	return RemoveRows{Indices: kept}, InsertRows[R]{Indices: slices.Clone(kept), Rows: captured}, vetoed, nil
}

func (t *Table[R]) applyReplaceRows(c ReplaceRows[R]) (HistoryCommand, HistoryCommand, error) {
	if len(c.Indices) != len(c.Rows) {
		return nil, nil, fmt.Errorf("replace rows: %d indices for %d rows", len(c.Indices), len(c.Rows))
	}
	for _, idx := range c.Indices {
		if !t.store.Valid(idx) {
			return nil, nil, fmt.Errorf("replace rows: invalid index %d", idx)
		}
	}
	if len(c.Indices) == 0 {
		return nil, nil, nil
	}
	prev := make([]R, len(c.Indices))
	for i, idx := range c.Indices {
		prev[i] = t.store.Replace(idx, t.viewer.CloneRow(&c.Rows[i]))
		t.viewer.OnRowUpdated(idx, t.store.At(idx))
	}
	return c, ReplaceRows[R]{Indices: slices.Clone(c.Indices), Rows: prev}, nil
}

func (t *Table[R]) mutator() (ColumnMutator[R], error) {
	m, ok := t.viewer.(ColumnMutator[R])
	if !ok {
		return nil, ErrColumnsImmutable
	}
	return m, nil
}

func (t *Table[R]) applyInsertColumn(c InsertColumn) (HistoryCommand, HistoryCommand, error) {
	m, err := t.mutator()
	if err != nil {
		return nil, nil, err
	}
	if c.At < 0 || int(c.At) > t.numColumns {
		return nil, nil, fmt.Errorf("insert column: index %d out of range", c.At)
	}
	t.edit = nil
	m.InsertColumn(t.store.Rows(), c.At, c.Data)
	t.numColumns++

	for i, v := range t.visible {
		if v >= c.At {
			t.visible[i] = v + 1
		}
	}
	for i, k := range t.sort {
		if k.Column >= c.At {
			t.sort[i].Column = k.Column + 1
		}
	}
	if c.VisPos >= 0 {
		pos := min(int(c.VisPos), len(t.visible))
		t.visible = slices.Insert(t.visible, pos, c.At)
	}
	if c.Sort != nil {
		t.sort = t.sanitizeSort(c.Sort)
	}
	t.store.MarkDirty()
	return c, RemoveColumn{At: c.At}, nil
}

func (t *Table[R]) applyRemoveColumn(c RemoveColumn) (HistoryCommand, HistoryCommand, error) {
	m, err := t.mutator()
	if err != nil {
		return nil, nil, err
	}
	if c.At < 0 || int(c.At) >= t.numColumns {
		return nil, nil, fmt.Errorf("remove column: index %d out of range", c.At)
	}
	t.edit = nil
	visPos := t.visColOf(c.At)
	prevSort := slices.Clone(t.sort)
	data := m.RemoveColumn(t.store.Rows(), c.At)
	t.numColumns--

	visible := t.visible[:0]
	for _, v := range t.visible {
		switch {
		case v == c.At:
		case v > c.At:
			visible = append(visible, v-1)
		default:
			visible = append(visible, v)
		}
	}
	t.visible = visible
	sort := t.sort[:0]
	for _, k := range t.sort {
		switch {
		case k.Column == c.At:
		case k.Column > c.At:
			sort = append(sort, SortKey{Column: k.Column - 1, Ascending: k.Ascending})
		default:
			sort = append(sort, k)
		}
	}
	t.sort = sort
	t.store.MarkDirty()

	if prevSort == nil {
		prevSort = []SortKey{}
	}
	return c, InsertColumn{At: c.At, VisPos: visPos, Data: data, Sort: prevSort}, nil
}

func (t *Table[R]) applyReplaceColumn(c ReplaceColumn) (HistoryCommand, HistoryCommand, error) {
	m, err := t.mutator()
	if err != nil {
		return nil, nil, err
	}
	if c.At < 0 || int(c.At) >= t.numColumns {
		return nil, nil, fmt.Errorf("replace column: index %d out of range", c.At)
	}
	if t.edit != nil && t.edit.col == c.At {
		t.edit = nil
	}
	prev := m.ReplaceColumn(t.store.Rows(), c.At, c.Data)
	t.store.MarkDirty()
	return c, ReplaceColumn{At: c.At, Data: prev}, nil
}

func (t *Table[R]) applyMoveColumn(c MoveColumn) (HistoryCommand, HistoryCommand, error) {
	from := slices.Index(t.visible, c.Col)
	if from < 0 {
		return nil, nil, nil
	}
	before := t.flankOf(from)
	to := t.moveTarget(c, from)
	if !t.moveVisible(VisColumnPos(from), to) {
		return nil, nil, nil
	}
	fwd := MoveColumn{Col: c.Col, To: to, flank: t.flankOf(int(to))}
	return fwd, MoveColumn{Col: c.Col, To: VisColumnPos(from), flank: before}, nil
}

func (t *Table[R]) flankOf(pos int) *neighbours {
	n := &neighbours{left: -1, right: -1}
	if pos > 0 {
		n.left = t.visible[pos-1]
	}
	if pos+1 < len(t.visible) {
		n.right = t.visible[pos+1]
	}
	return n
}

// moveTarget is the position Col must move to so it lands between its
// recorded neighbours. A command without neighbours, or whose neighbours are
// all hidden now, uses To clamped to the visible range.
func (t *Table[R]) moveTarget(c MoveColumn, from int) VisColumnPos {
	rest := slices.Delete(slices.Clone(t.visible), from, from+1)
	if f := c.flank; f != nil {
		switch {
		case f.right >= 0 && slices.Contains(rest, f.right):
			return VisColumnPos(slices.Index(rest, f.right))
		case f.left >= 0 && slices.Contains(rest, f.left):
			return VisColumnPos(slices.Index(rest, f.left) + 1)
		case f.left < 0:
			return 0
		case f.right < 0:
			return VisColumnPos(len(rest))
		}
	}
	return min(max(c.To, 0), VisColumnPos(len(rest)))
}

func (t *Table[R]) applyRenameColumn(c RenameColumn) (HistoryCommand, HistoryCommand, error) {
	m, err := t.mutator()
	if err != nil {
		return nil, nil, err
	}
	if c.Col < 0 || int(c.Col) >= t.numColumns {
		return nil, nil, fmt.Errorf("rename column: index %d out of range", c.Col)
	}
	if t.viewer.ColumnName(c.Col) == c.Name {
		return nil, nil, nil
	}
	prev := m.RenameColumn(c.Col, c.Name)
	t.store.MarkDirty()
	return c, RenameColumn{Col: c.Col, Name: prev}, nil
}

func (t *Table[R]) applyRenameRow(c RenameRow) (HistoryCommand, HistoryCommand, error) {
	namer, ok := t.viewer.(RowNamer[R])
	if !ok {
		return nil, nil, fmt.Errorf("rename row: viewer has no row names")
	}
	if !t.store.Valid(c.Row) {
		return nil, nil, fmt.Errorf("rename row: invalid index %d", c.Row)
	}
	row := t.store.At(c.Row)
	prev, ok := namer.RowName(row)
	if !ok || prev == c.Name || !namer.SetRowName(row, c.Name) {
		return nil, nil, nil
	}
	t.store.MarkDirty()
	t.viewer.OnRowUpdated(c.Row, row)
	return c, RenameRow{Row: c.Row, Name: prev}, nil
}

// shiftEditRow keeps the edited row index pointing at the same row after an
// insertion at idx.
func (t *Table[R]) shiftEditRow(idx RowIdx, delta int) {
	if t.edit != nil && t.edit.row >= idx {
		t.edit.row += RowIdx(delta)
	}
}

// dropEditRow adjusts the edited row index for the removal of idx. Removing
// the edited row itself ends editing.
func (t *Table[R]) dropEditRow(idx RowIdx) {
	if t.edit == nil {
		return
	}
	switch {
	case t.edit.row == idx:
		t.edit = nil
	case t.edit.row > idx:
		t.edit.row--
	}
}
