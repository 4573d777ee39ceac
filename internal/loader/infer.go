package loader

import (
	"strings"

	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/sheet"
)

// inferOrder lists the kinds tried by InferKind, narrowest first. Every int
// also parses as a float, so int must come first.
var inferOrder = []sheet.Kind{sheet.KindInt, sheet.KindFloat, sheet.KindBool, sheet.KindDateTime}

// InferKind returns the narrowest kind that parses every non-blank value.
// A column with no values is text.
func InferKind(reg *sheet.Registry, values []string) sheet.Kind {
	blank := true
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			blank = false
			break
		}
	}
	if blank {
		return sheet.KindText
	}
	for _, k := range inferOrder {
		col := sheet.Column{Kind: k}
		ok := true
		for _, v := range values {
			if _, err := reg.Parse(v, &col); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return k
		}
	}
	return sheet.KindText
}

// Columns builds column configs for raw with inferred kinds. The first
// column is the key and title.
func Columns(reg *sheet.Registry, raw *Raw) []sheet.Column {
	cols := make([]sheet.Column, raw.Width())
	values := make([]string, len(raw.Records))
	for c, name := range raw.Header {
		for i := range raw.Records {
			values[i] = raw.Field(i, c)
		}
		cols[c] = sheet.NewColumn(name, InferKind(reg, values))
		cols[c].Source = name
	}
	if len(cols) > 0 {
		cols[0].Key = true
		cols[0].Title = true
	}
	return cols
}

// Build parses raw into rows shaped by cols. Columns are matched to the file
// by Source; virtual columns and columns missing from the file come out
// empty. A column whose values no longer parse under its kind is demoted to
// text and its name returned, so no data is dropped.
func Build(reg *sheet.Registry, raw *Raw, cols []sheet.Column) (rows []sheet.Row, demoted []string) {
	index := make(map[string]int, raw.Width())
	for i, h := range raw.Header {
		index[h] = i
	}

	src := make([]int, len(cols))
	for c := range cols {
		src[c] = -1
		if i, ok := index[cols[c].Source]; ok && !cols[c].Virtual {
			src[c] = i
		}
	}

	rows = make([]sheet.Row, len(raw.Records))
	for i := range rows {
		rows[i].Cells = make([]sheet.Cell, len(cols))
	}

	for c := range cols {
		if src[c] < 0 {
			for i := range rows {
				rows[i].Cells[c] = sheet.EmptyCell(cols[c].Kind)
			}
			continue
		}
		if !parseColumn(reg, raw, rows, &cols[c], c, src[c]) {
			log.Warn(log.CatLoader, "column demoted to text", "column", cols[c].Name, "kind", cols[c].Kind)
			demoted = append(demoted, cols[c].Name)
			cols[c].Kind = sheet.KindText
			cols[c].Options = nil
			parseColumn(reg, raw, rows, &cols[c], c, src[c])
		}
	}
	return rows, demoted
}

func parseColumn(reg *sheet.Registry, raw *Raw, rows []sheet.Row, col *sheet.Column, c, field int) bool {
	for i := range rows {
		cell, err := reg.Parse(raw.Field(i, field), col)
		if err != nil {
			return false
		}
		rows[i].Cells[c] = cell
	}
	return true
}

// Records formats the non-virtual columns of rows for writing. The header is
// each column's current name.
func Records(reg *sheet.Registry, cols []sheet.Column, rows []sheet.Row) (header []string, records [][]string) {
	var keep []int
	for c := range cols {
		if !cols[c].Virtual {
			keep = append(keep, c)
			header = append(header, cols[c].Name)
		}
	}
	records = make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(keep))
		for j, c := range keep {
			rec[j] = reg.Format(row.Cells[c], &cols[c])
		}
		records[i] = rec
	}
	return header, records
}
