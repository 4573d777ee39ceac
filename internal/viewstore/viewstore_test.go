package viewstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/datatable"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "/data/a.csv")
	require.NoError(t, err)
	require.False(t, ok)

	want := datatable.PersistedState{
		NumColumns:     3,
		VisibleColumns: []datatable.ColumnIdx{2, 0},
		SortSpec:       []datatable.SortKey{{Column: 2, Ascending: false}},
	}
	require.NoError(t, s.Save(ctx, "/data/a.csv", want))
	got, ok, err := s.Load(ctx, "/data/a.csv")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, *got)

	want.SortSpec = []datatable.SortKey{{Column: 0, Ascending: true}}
	require.NoError(t, s.Save(ctx, "/data/a.csv", want))
	got, _, err = s.Load(ctx, "/data/a.csv")
	require.NoError(t, err)
	require.Equal(t, want.SortSpec, got.SortSpec)

	require.NoError(t, s.Delete(ctx, "/data/a.csv"))
	_, ok, err = s.Load(ctx, "/data/a.csv")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCorruptStateIsIgnored(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	_, err := s.db.Exec(`INSERT INTO view_state (path, state, updated_at) VALUES ('x', '{', ?)`, time.Now())
	require.NoError(t, err)

	got, ok, err := s.Load(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestPrune(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	require.NoError(t, s.Save(ctx, "old", datatable.PersistedState{NumColumns: 1}))
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, s.Save(ctx, "new", datatable.PersistedState{NumColumns: 1}))

	n, err := s.Prune(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, ok, err := s.Load(ctx, "new")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "f", datatable.PersistedState{NumColumns: 2}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Load(context.Background(), "f")
	require.NoError(t, err)
	require.True(t, ok)
}
