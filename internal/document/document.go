// Package document ties a data file, its sidecar and the sheet built from
// them together.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/loader"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/sheet"
	"github.com/zjrosen/tabula/internal/sidecar"
)

// Document is an open data file.
type Document struct {
	Path   string
	Format loader.Format
	Sheet  *sheet.Sheet
	Rows   []sheet.Row

	// Demoted names columns whose saved kind no longer fit the file and
	// were read as text.
	Demoted []string
	// DroppedVirtual counts virtual cell values that failed to parse.
	DroppedVirtual int
}

// Open reads path and its sidecar. opts configures the resulting sheet.
func Open(path string, opts sheet.Options) (*Document, error) {
	if opts.Registry == nil {
		opts.Registry = sheet.NewRegistry()
	}
	reg := opts.Registry

	var (
		raw             *loader.Raw
		meta            *sidecar.File
		rawErr, metaErr error
		wg              conc.WaitGroup
	)
	wg.Go(func() { raw, rawErr = loader.ReadFile(path) })
	wg.Go(func() { meta, metaErr = sidecar.LoadOptional(path) })
	wg.Wait()
	if rawErr != nil {
		return nil, rawErr
	}
	if metaErr != nil {
		return nil, metaErr
	}

	cols := meta.Merge(loader.Columns(reg, raw))
	rows, demoted := loader.Build(reg, raw, cols)
	dropped := meta.Apply(reg, cols, rows)

	log.Info(log.CatLoader, "opened document", "path", path, "rows", len(rows), "columns", len(cols),
		"sidecar", meta != nil)
	return &Document{
		Path:           path,
		Format:         raw.Format,
		Sheet:          sheet.New(cols, opts),
		Rows:           rows,
		Demoted:        demoted,
		DroppedVirtual: dropped,
	}, nil
}

// Save writes rows to the data file and the sheet's metadata to the sidecar.
// visible is the table's visible column order, recorded as Hidden flags.
func (d *Document) Save(rows []sheet.Row, visible []datatable.ColumnIdx) error {
	reg := d.Sheet.Registry()
	d.Sheet.SyncHidden(visible)
	cols := d.Sheet.Columns()

	header, records := loader.Records(reg, cols, rows)
	if err := loader.WriteFile(d.Path, d.Format, header, records); err != nil {
		return err
	}
	d.Sheet.MarkSaved()
	if err := sidecar.Save(d.Path, sidecar.Capture(reg, d.Sheet.Columns(), rows)); err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// Export writes the given columns of rows in format f, virtual columns
// included, using the sheet's cell text.
func (d *Document) Export(w io.Writer, f loader.Format, cols []datatable.ColumnIdx, rows []sheet.Row) error {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = d.Sheet.ColumnName(c)
	}
	records := make([][]string, len(rows))
	for r := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			var b strings.Builder
			d.Sheet.EncodeColumn(&rows[r], c, &b)
			rec[i] = b.String()
		}
		records[r] = rec
	}
	return loader.Write(w, f, header, records)
}
