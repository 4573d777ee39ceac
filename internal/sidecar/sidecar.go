// Package sidecar persists the metadata tabula keeps next to a data file:
// column configs, locked rows and the values of virtual columns.
package sidecar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/paths"
	"github.com/zjrosen/tabula/internal/sheet"
)

// Version is the current file layout.
const Version = 1

// File is the YAML document.
type File struct {
	Version int            `yaml:"version"`
	Columns []sheet.Column `yaml:"columns"`
	// Locked lists the keys of locked rows.
	Locked []string `yaml:"locked,omitempty"`
	// Virtual maps a virtual column ID to row key to cell text.
	Virtual map[string]map[string]string `yaml:"virtual,omitempty"`
}

// Load reads the sidecar of the data file at data. A missing sidecar yields
// an error matching fs.ErrNotExist.
func Load(data string) (*File, error) {
	path := paths.SidecarPath(data)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("%s: version %d is newer than supported %d", path, f.Version, Version)
	}
	log.Debug(log.CatSidecar, "loaded sidecar", "path", path, "columns", len(f.Columns), "locked", len(f.Locked))
	return &f, nil
}

// LoadOptional is Load that treats a missing sidecar as nil.
func LoadOptional(data string) (*File, error) {
	f, err := Load(data)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return f, err
}

// Save writes f as the sidecar of data.
func Save(data string, f *File) error {
	f.Version = Version
	b, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	path := paths.SidecarPath(data)
	if err := paths.WriteFileAtomic(path, b); err != nil {
		return err
	}
	log.Info(log.CatSidecar, "saved sidecar", "path", path)
	return nil
}

// RowKeys returns an identifier per row: the formatted key column value, or
// "#n" for the 1-based ordinal when there is no key column or the value is
// blank or repeated.
func RowKeys(reg *sheet.Registry, cols []sheet.Column, rows []sheet.Row) []string {
	keys := make([]string, len(rows))
	key := slices.IndexFunc(cols, func(c sheet.Column) bool { return c.Key })
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		k := ""
		if key >= 0 {
			k = reg.Format(rows[i].Cells[key], &cols[key])
		}
		if k == "" || seen[k] || k[0] == '#' {
			k = "#" + strconv.Itoa(i+1)
		}
		seen[k] = true
		keys[i] = k
	}
	return keys
}

// Capture records the metadata of a sheet.
func Capture(reg *sheet.Registry, cols []sheet.Column, rows []sheet.Row) *File {
	f := &File{Version: Version, Columns: cols}
	keys := RowKeys(reg, cols, rows)
	for i, row := range rows {
		if row.Locked {
			f.Locked = append(f.Locked, keys[i])
		}
	}
	for c := range cols {
		if !cols[c].Virtual {
			continue
		}
		values := make(map[string]string)
		for i, row := range rows {
			if text := reg.Format(row.Cells[c], &cols[c]); text != "" {
				values[keys[i]] = text
			}
		}
		if len(values) > 0 {
			if f.Virtual == nil {
				f.Virtual = make(map[string]map[string]string)
			}
			f.Virtual[cols[c].ID.String()] = values
		}
	}
	return f
}

// Merge reconciles the saved column configs with the columns inferred from
// the data file. Saved columns keep their order and settings; saved columns
// whose source header is gone are dropped; new headers are appended.
func (f *File) Merge(inferred []sheet.Column) []sheet.Column {
	if f == nil || len(f.Columns) == 0 {
		return inferred
	}
	present := make(map[string]bool, len(inferred))
	for _, c := range inferred {
		present[c.Source] = true
	}

	out := make([]sheet.Column, 0, len(f.Columns)+len(inferred))
	used := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		if !c.Virtual && !present[c.Source] {
			log.Warn(log.CatSidecar, "dropping column missing from data file", "column", c.Name, "source", c.Source)
			continue
		}
		if !c.Virtual {
			used[c.Source] = true
		}
		out = append(out, c.Clone())
	}
	for _, c := range inferred {
		if !used[c.Source] {
			c.Key = false
			c.Title = false
			out = append(out, c)
		}
	}
	return out
}

// Apply restores locked flags and virtual cell values onto rows built for
// cols. Values that no longer parse are dropped and counted.
func (f *File) Apply(reg *sheet.Registry, cols []sheet.Column, rows []sheet.Row) (dropped int) {
	if f == nil {
		return 0
	}
	keys := RowKeys(reg, cols, rows)
	locked := make(map[string]bool, len(f.Locked))
	for _, k := range f.Locked {
		locked[k] = true
	}
	for i := range rows {
		rows[i].Locked = locked[keys[i]]
	}
	for c := range cols {
		values := f.Virtual[cols[c].ID.String()]
		if !cols[c].Virtual || len(values) == 0 {
			continue
		}
		for i := range rows {
			text, ok := values[keys[i]]
			if !ok {
				continue
			}
			cell, err := reg.Parse(text, &cols[c])
			if err != nil {
				dropped++
				continue
			}
			rows[i].Cells[c] = cell
		}
	}
	if dropped > 0 {
		log.Warn(log.CatSidecar, "dropped unparseable virtual values", "count", dropped)
	}
	return dropped
}
