package datatable

import (
	"errors"
	"slices"
	"strings"

	"github.com/zjrosen/tabula/internal/log"
)

// ErrNoCodec is reported when text conversion is needed but the viewer has no
// codec.
var ErrNoCodec = errors.New("viewer has no row codec")

// errUnsafeText marks cells whose text would break the TSV layout.
var errUnsafeText = errors.New("cell text contains a tab or newline")

type clipEntry struct {
	rowOff, colOff int
	col            ColumnIdx
	slab           int
}

// clipBuffer is a copied cell region: row clones plus the offset of every
// copied cell relative to the region's top-left corner.
type clipBuffer[R any] struct {
	slab          []R
	entries       []clipEntry
	height, width int
}

// CopyReport describes the outcome of a copy.
type CopyReport struct {
	Cells int
	Rows  int
	// System is true when the region was also exported as TSV.
	System bool
	Err    error
}

// PasteReport describes the outcome of a paste.
type PasteReport struct {
	Applied      bool
	Cells        int
	InsertedRows int
	SkippedRows  int
	Vetoed       int
	FromSystem   bool
}

// Copy stores the selected cells in the internal buffer and exports them to
// the system clipboard as TSV.
func (t *Table[R]) Copy() CopyReport {
	cells := uniqueCells(t.selCols, t.selections)
	if t.edit != nil || len(cells) == 0 {
		return CopyReport{}
	}

	top, left := int(cells[0].Row), int(cells[0].Col)
	for _, c := range cells {
		left = min(left, int(c.Col))
	}

	buf := &clipBuffer[R]{}
	slabOf := make(map[VisRowPos]int)
	for _, c := range cells {
		if !t.inGrid(c) {
			continue
		}
		i, ok := slabOf[c.Row]
		if !ok {
			i = len(buf.slab)
			buf.slab = append(buf.slab, t.viewer.CloneRow(t.store.At(t.filtered[c.Row])))
			slabOf[c.Row] = i
		}
		e := clipEntry{rowOff: int(c.Row) - top, colOff: int(c.Col) - left, col: t.visible[c.Col], slab: i}
		buf.entries = append(buf.entries, e)
		buf.height = max(buf.height, e.rowOff+1)
		buf.width = max(buf.width, e.colOff+1)
	}
	t.clip = buf

	report := CopyReport{Cells: len(buf.entries), Rows: len(buf.slab)}
	text, err := t.encodeClip(buf)
	if err != nil {
		report.Err = err
		log.Info(log.CatClipboard, "copied internally only", "cells", report.Cells, "reason", err)
		return report
	}
	t.lastExport = text
	report.System = t.writeSystemClipboard(text)
	log.Debug(log.CatClipboard, "copied", "cells", report.Cells, "system", report.System)
	return report
}

// Cut copies the selection and then clears it as one step.
func (t *Table[R]) Cut() CopyReport {
	r := t.Copy()
	if r.Cells > 0 {
		t.ClearSelection()
	}
	return r
}

func (t *Table[R]) encodeClip(buf *clipBuffer[R]) (string, error) {
	codec := t.viewer.Codec()
	if codec == nil {
		return "", ErrNoCodec
	}
	grid := make([][]string, buf.height)
	for i := range grid {
		grid[i] = make([]string, buf.width)
	}
	var sb strings.Builder
	for _, e := range buf.entries {
		sb.Reset()
		codec.EncodeColumn(&buf.slab[e.slab], e.col, &sb)
		s := sb.String()
		if strings.ContainsAny(s, "\t\n\r") {
			return "", errUnsafeText
		}
		grid[e.rowOff][e.colOff] = s
	}
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Table[R]) writeSystemClipboard(text string) bool {
	if t.clipboard == nil {
		return false
	}
	if err := t.clipboard.WriteText(text); err != nil {
		log.ErrorErr(log.CatClipboard, "system clipboard write failed", err)
		return false
	}
	return true
}

// Paste writes the clipboard at the anchor. System clipboard text is
// preferred unless it is the table's own last export, in which case the
// internal buffer is used so cells keep their full values. With insert, the
// pasted rows are inserted after the anchor row instead of overwriting.
func (t *Table[R]) Paste(insert bool) PasteReport {
	if t.clipboard != nil {
		text, err := t.clipboard.ReadText()
		if err != nil {
			log.Debug(log.CatClipboard, "system clipboard read failed", "error", err)
		} else if text != "" {
			return t.PasteText(text, insert)
		}
	}
	if t.clip == nil {
		return PasteReport{}
	}
	return t.pasteBuffer(t.clip, insert)
}

// PasteText pastes TSV text, as delivered by the system clipboard or a
// terminal bracketed paste.
func (t *Table[R]) PasteText(text string, insert bool) PasteReport {
	if t.edit != nil {
		return PasteReport{}
	}
	if t.clip != nil && text == t.lastExport {
		return t.pasteBuffer(t.clip, insert)
	}
	a, ok := t.pasteAnchor()
	if !ok {
		return PasteReport{}
	}
	buf, skipped, err := t.decodeTSV(text, a.Col)
	if err != nil {
		log.Warn(log.CatClipboard, "paste ignored", "error", err)
		return PasteReport{}
	}
	r := t.pasteBuffer(buf, insert)
	r.SkippedRows = skipped
	r.FromSystem = true
	if skipped > 0 {
		log.Info(log.CatClipboard, "paste skipped rows", "skipped", skipped)
	}
	return r
}

// pasteAnchor is the top-left cell of the newest selection, or of the grid
// when the table has no rows.
func (t *Table[R]) pasteAnchor() (VisCell, bool) {
	if n := len(t.selections); n > 0 && t.edit == nil {
		r := t.selections[n-1].Rect(t.selCols)
		return VisCell{Row: VisRowPos(r.Top), Col: VisColumnPos(r.Left)}, true
	}
	if len(t.visible) > 0 && len(t.filtered) == 0 {
		return VisCell{}, true
	}
	return VisCell{}, false
}

// decodeTSV parses text into a clip buffer whose first column lands on
// visible column anchorCol. Rows the codec rejects are dropped and counted;
// later rows move up to close the gap.
func (t *Table[R]) decodeTSV(text string, anchorCol VisColumnPos) (*clipBuffer[R], int, error) {
	codec := t.viewer.Codec()
	if codec == nil {
		return nil, 0, ErrNoCodec
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return &clipBuffer[R]{}, 0, nil
	}

	buf := &clipBuffer[R]{}
	skipped := 0
	for line := range strings.SplitSeq(text, "\n") {
		row := t.viewer.NewEmptyRow()
		var pending []clipEntry
		bad := false
		for j, field := range strings.Split(line, "\t") {
			vc := int(anchorCol) + j
			if vc >= len(t.visible) {
				break
			}
			col := t.visible[vc]
			if err := codec.DecodeColumn(field, col, &row); err != nil {
				bad = true
				break
			}
			pending = append(pending, clipEntry{rowOff: buf.height, colOff: j, col: col, slab: len(buf.slab)})
		}
		if bad {
			skipped++
			continue
		}
		buf.slab = append(buf.slab, row)
		buf.entries = append(buf.entries, pending...)
		buf.width = max(buf.width, len(pending))
		buf.height++
	}
	return buf, skipped, nil
}

func (t *Table[R]) pasteBuffer(buf *clipBuffer[R], insert bool) PasteReport {
	a, ok := t.pasteAnchor()
	if !ok || buf.height == 0 || t.edit != nil {
		return PasteReport{}
	}
	if insert {
		return t.pasteInsert(buf, a)
	}

	ncols, nrows := len(t.visible), len(t.filtered)
	appendBase := RowIdx(t.store.Len())
	var report PasteReport

	var cmds []HistoryCommand
	if extra := int(a.Row) + buf.height - nrows; extra > 0 {
		ins := InsertRows[R]{Indices: make([]RowIdx, extra), Rows: make([]R, extra)}
		for i := range extra {
			ins.Indices[i] = appendBase + RowIdx(i)
			ins.Rows[i] = t.viewer.NewEmptyRow()
		}
		cmds = append(cmds, ins)
		report.InsertedRows = extra
	}

	set := SetCells[R]{Slab: slices.Clip(buf.slab), Ctx: WritePaste}
	for _, e := range buf.entries {
		vr, vc := int(a.Row)+e.rowOff, int(a.Col)+e.colOff
		if vc >= ncols {
			continue
		}
		row := appendBase + RowIdx(vr-nrows)
		if vr < nrows {
			row = t.filtered[vr]
		}
		dst := t.visible[vc]
		slab := e.slab
		if dst != e.col {
			v, ok := t.transcode(&buf.slab[e.slab], e.col, dst)
			if !ok {
				continue
			}
			set.Slab = append(set.Slab, v)
			slab = len(set.Slab) - 1
		}
		set.Targets = append(set.Targets, CellTarget{Row: row, Col: dst, Slab: slab})
	}
	cmds = append(cmds, set)

	report.Applied, report.Vetoed = t.exec(cmds)
	if !report.Applied {
		report.InsertedRows = 0
		return report
	}
	report.Cells = len(set.Targets) - report.Vetoed
	t.SelectRect(Rect{
		Top: int(a.Row), Left: int(a.Col),
		Bottom: int(a.Row) + buf.height - 1, Right: int(a.Col) + buf.width - 1,
	})
	return report
}

func (t *Table[R]) pasteInsert(buf *clipBuffer[R], a VisCell) PasteReport {
	at := RowIdx(t.store.Len())
	if row, ok := t.RowAt(a.Row); ok {
		at = row + 1
	}
	ins := InsertRows[R]{Indices: make([]RowIdx, buf.height), Rows: make([]R, buf.height)}
	for i := range buf.height {
		ins.Indices[i] = at + RowIdx(i)
		ins.Rows[i] = t.viewer.NewEmptyRow()
	}
	cells := 0
	for _, e := range buf.entries {
		vc := int(a.Col) + e.colOff
		if vc >= len(t.visible) {
			continue
		}
		dst := t.visible[vc]
		src := &buf.slab[e.slab]
		if dst != e.col {
			v, ok := t.transcode(src, e.col, dst)
			if !ok {
				continue
			}
			src = &v
		}
		t.viewer.SetCell(src, &ins.Rows[e.rowOff], dst)
		cells++
	}
	if !t.Exec(ins) {
		return PasteReport{}
	}
	t.focusRow(at, a.Col)
	return PasteReport{Applied: true, Cells: cells, InsertedRows: buf.height}
}
