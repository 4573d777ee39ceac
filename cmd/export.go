package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/document"
	"github.com/zjrosen/tabula/internal/loader"
	"github.com/zjrosen/tabula/internal/paths"
	"github.com/zjrosen/tabula/internal/sheet"
)

var (
	exportFormat string
	exportOut    string
	exportAll    bool
	exportView   bool
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write a file with its typed and virtual columns as CSV or TSV",
	Long: `Load FILE and its FILE.tabula.yaml metadata and write the visible columns,
virtual columns included, as CSV or TSV. Cells are written in the text form
the grid shows, so dates follow each column's format.

Examples:
  # Print as TSV
  tabula export people.csv --format tsv

  # Include hidden columns and write to a file
  tabula export people.csv --all --out people-full.csv

  # Use the column order and sort saved by the last editing session
  tabula export people.csv --view`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadSettings(); err != nil {
			return err
		}
		path, err := paths.ResolveDataFile(args[0])
		if err != nil {
			return err
		}

		doc, err := document.Open(path, sheet.Options{PersistViewState: true})
		if err != nil {
			return err
		}
		format := doc.Format
		if exportFormat != "" {
			if format, err = loader.ParseFormat(exportFormat); err != nil {
				return err
			}
		}

		cols, rows := exportLayout(cmd.Context(), doc, path)

		if exportOut == "" {
			return doc.Export(cmd.OutOrStdout(), format, cols, rows)
		}
		var buf bytes.Buffer
		if err := doc.Export(&buf, format, cols, rows); err != nil {
			return err
		}
		if err := paths.WriteFileAtomic(exportOut, buf.Bytes()); err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format: csv or tsv (default: the input's)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "include hidden columns")
	exportCmd.Flags().BoolVar(&exportView, "view", false, "apply the saved column order and sort")
	rootCmd.AddCommand(exportCmd)
}

// exportLayout runs the rows through a table so the saved view state, when
// requested, orders columns and rows exactly as the grid would.
func exportLayout(ctx context.Context, doc *document.Document, path string) ([]datatable.ColumnIdx, []sheet.Row) {
	opts := datatable.Options{MaxUndoHistory: 1}
	if !exportAll {
		opts.InitialVisible = doc.Sheet.InitialVisible()
	}
	if exportView {
		if store := openViewStore(); store != nil {
			if ps, ok, err := store.Load(withContext(ctx), path); err == nil && ok {
				opts.Persisted = ps
			}
			_ = store.Close()
		}
	}
	tbl := datatable.New(doc.Sheet, doc.Rows, opts)

	cols := tbl.VisibleColumns()
	if exportAll && exportView {
		cols = append(cols, tbl.HiddenColumns()...)
	}
	order := tbl.FilteredRows()
	rows := make([]sheet.Row, len(order))
	for i, r := range order {
		rows[i] = *tbl.Store().At(r)
	}
	return cols, rows
}

func withContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
