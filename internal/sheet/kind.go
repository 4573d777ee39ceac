// Package sheet is the concrete row model behind tabula's grid: typed cells,
// per-kind handlers, column definitions and the datatable.Viewer that ties
// them together.
package sheet

import (
	"fmt"
	"strings"
)

// Kind tags the value held by a Cell.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDateTime
	KindSelect
	KindMultiSelect
	KindRelation
)

var kindNames = [...]string{
	KindText:        "text",
	KindInt:         "int",
	KindFloat:       "float",
	KindBool:        "bool",
	KindDateTime:    "datetime",
	KindSelect:      "select",
	KindMultiSelect: "multi-select",
	KindRelation:    "relation",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name as written in the sidecar file.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindText, fmt.Errorf("unknown column kind %q", s)
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
