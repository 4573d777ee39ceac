package sheet

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	k, err := ParseKind(" Multi-Select ")
	require.NoError(t, err)
	require.Equal(t, KindMultiSelect, k)

	_, err = ParseKind("currency")
	require.Error(t, err)
}

func TestRegistry_Parse(t *testing.T) {
	reg := NewRegistry()
	status := &Column{Kind: KindSelect, Options: []string{"todo", "doing", "done"}}
	tags := &Column{Kind: KindMultiSelect, Options: []string{"a", "b", "c"}}

	tests := []struct {
		name string
		col  *Column
		text string
		want Cell
		err  bool
	}{
		{"text keeps spaces", &Column{Kind: KindText}, " hi ", TextCell(" hi "), false},
		{"int", &Column{Kind: KindInt}, " 42 ", IntCell(42), false},
		{"int rejects float", &Column{Kind: KindInt}, "4.2", Cell{}, true},
		{"float", &Column{Kind: KindFloat}, "1e3", FloatCell(1000), false},
		{"float rejects nan", &Column{Kind: KindFloat}, "NaN", Cell{}, true},
		{"bool yes", &Column{Kind: KindBool}, "Yes", BoolCell(true), false},
		{"bool x", &Column{Kind: KindBool}, "x", BoolCell(true), false},
		{"bool bad", &Column{Kind: KindBool}, "maybe", Cell{}, true},
		{"date", &Column{Kind: KindDateTime}, "2024-03-01", TimeCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), false},
		{"custom layout", &Column{Kind: KindDateTime, Format: "02/01/2006"}, "01/03/2024", TimeCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), false},
		{"select option", status, "doing", Cell{Kind: KindSelect, Text: "doing"}, false},
		{"select unknown", status, "blocked", Cell{}, true},
		{"multi dedups", tags, "a, c,a", Cell{Kind: KindMultiSelect, Items: []string{"a", "c"}}, false},
		{"multi unknown", tags, "a, z", Cell{}, true},
		{"blank int is empty", &Column{Kind: KindInt}, "  ", EmptyCell(KindInt), false},
		{"empty text is empty", &Column{Kind: KindText}, "", EmptyCell(KindText), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Parse(tt.text, tt.col)
			if tt.err {
				require.Error(t, err)
				assert.True(t, got.Empty)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestRegistry_FormatTime(t *testing.T) {
	reg := NewRegistry()
	col := &Column{Kind: KindDateTime}
	assert.Equal(t, "2024-03-01", reg.Format(TimeCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), col))
	assert.Equal(t, "2024-03-01T10:30:00Z", reg.Format(TimeCell(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)), col))
	assert.Empty(t, reg.Format(EmptyCell(KindDateTime), col))
}

func TestRegistry_Compare(t *testing.T) {
	reg := NewRegistry()
	text := &Column{Kind: KindText}
	assert.Negative(t, reg.Compare(EmptyCell(KindText), TextCell("a"), text))
	assert.Positive(t, reg.Compare(TextCell("a"), EmptyCell(KindText), text))
	assert.Zero(t, reg.Compare(EmptyCell(KindText), EmptyCell(KindText), text))
	assert.Negative(t, reg.Compare(TextCell("apple"), TextCell("Banana"), text))
	assert.NotZero(t, reg.Compare(TextCell("a"), TextCell("A"), text))

	num := &Column{Kind: KindInt}
	assert.Negative(t, reg.Compare(IntCell(9), IntCell(10), num))

	status := &Column{Kind: KindSelect, Options: []string{"todo", "doing", "done"}}
	assert.Negative(t, reg.Compare(Cell{Kind: KindSelect, Text: "doing"}, Cell{Kind: KindSelect, Text: "done"}, status))
	assert.Positive(t, reg.Compare(Cell{Kind: KindSelect, Text: "todo"}, Cell{Kind: KindSelect, Text: "zzz"}, status))

	flag := &Column{Kind: KindBool}
	assert.Negative(t, reg.Compare(BoolCell(false), BoolCell(true), flag))
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register(KindRelation, Handler{
		Parse:   func(s string, _ *Column) (Cell, error) { return Cell{Kind: KindRelation, Text: "#" + s}, nil },
		Format:  formatText,
		Compare: compareText,
		Input:   newTextInput,
	})
	c, err := reg.Parse("7", &Column{Kind: KindRelation})
	require.NoError(t, err)
	require.Equal(t, "#7", c.Text)
}

// Every value a kind produces survives Format followed by Parse.
func TestProperty_FormatParseRoundTrip(t *testing.T) {
	reg := NewRegistry()
	rapid.Check(t, func(t *rapid.T) {
		var (
			cell Cell
			col  Column
		)
		switch rapid.IntRange(0, 5).Draw(t, "kind") {
		case 0:
			col = Column{Kind: KindText}
			cell = TextCell(rapid.StringN(1, 12, -1).Draw(t, "text"))
		case 1:
			col = Column{Kind: KindInt}
			cell = IntCell(rapid.Int64().Draw(t, "int"))
		case 2:
			col = Column{Kind: KindFloat}
			f := rapid.Float64().Draw(t, "float")
			if math.IsNaN(f) || math.IsInf(f, 0) {
				f = 0
			}
			cell = FloatCell(f)
		case 3:
			col = Column{Kind: KindBool}
			cell = BoolCell(rapid.Bool().Draw(t, "bool"))
		case 4:
			col = Column{Kind: KindDateTime}
			sec := rapid.Int64Range(0, 4102444800).Draw(t, "unix")
			cell = TimeCell(time.Unix(sec, 0).UTC())
		case 5:
			col = Column{Kind: KindMultiSelect, Options: []string{"red", "green", "blue"}}
			items := rapid.SliceOfNDistinct(rapid.SampledFrom(col.Options), 1, 3, rapid.ID[string]).Draw(t, "items")
			cell = Cell{Kind: KindMultiSelect, Items: items}
		}
		back, err := reg.Parse(reg.Format(cell, &col), &col)
		require.NoError(t, err)
		require.True(t, cell.Equal(back), "%+v -> %q -> %+v", cell, reg.Format(cell, &col), back)
	})
}
