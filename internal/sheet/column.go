package sheet

import (
	"slices"

	"github.com/google/uuid"
)

// Column describes one column of a sheet.
type Column struct {
	ID uuid.UUID `yaml:"id"`
	// Name is the header shown in the grid. Source is the header read from the
	// data file; it is empty for columns created in tabula.
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source,omitempty"`
	Kind    Kind     `yaml:"kind"`
	Options []string `yaml:"options,omitempty"`
	// Format overrides the datetime layout.
	Format string `yaml:"format,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
	// Key marks the column whose values identify rows across reloads.
	Key bool `yaml:"key,omitempty"`
	// Title marks the column holding the row's display name.
	Title bool `yaml:"title,omitempty"`
	// Virtual columns live only in the sidecar file.
	Virtual bool `yaml:"virtual,omitempty"`
	Width   int  `yaml:"width,omitempty"`
}

// NewColumn returns a column with a fresh ID.
func NewColumn(name string, kind Kind) Column {
	return Column{ID: uuid.New(), Name: name, Kind: kind}
}

// Clone returns a copy sharing no memory with c.
func (c Column) Clone() Column {
	c.Options = slices.Clone(c.Options)
	return c
}

// HasOption reports whether v is an allowed value. Columns without options
// accept anything.
func (c *Column) HasOption(v string) bool {
	return len(c.Options) == 0 || slices.Contains(c.Options, v)
}
