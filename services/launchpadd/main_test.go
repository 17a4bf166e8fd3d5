package launchpadd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSqliteFilePath(t *testing.T) {
	cases := map[string]string{
		"file:./data/events.db":             "./data/events.db",
		"file:./data/events.db?_pragma=wal": "./data/events.db",
		"events.db":                         "events.db",
		"file::memory:":                     "",
		"file:abc?mode=memory&cache=shared": "",
	}
	for dsn, want := range cases {
		require.Equal(t, want, sqliteFilePath(dsn), dsn)
	}
}

func TestOpenIndexDBCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "index")
	db, err := openIndexDB("file:" + filepath.Join(dir, "events.db"))
	require.NoError(t, err)
	index, err := NewEventIndex(db, nil)
	require.NoError(t, err)
	records, err := index.Query(context.Background(), EventFilter{})
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = openIndexDB("  ")
	require.Error(t, err)
}
