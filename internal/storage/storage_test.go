package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := Open(Options{Backend: BackendSQLite, DBPath: filepath.Join(dir, "nested", "todo.db")})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	files, err := Open(Options{Backend: BackendFile, Dir: filepath.Join(dir, "slots")})
	require.NoError(t, err)

	mem, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)

	return map[string]KV{
		BackendSQLite: sqlite,
		BackendFile:   files,
		BackendMemory: mem,
	}
}

func TestKVRoundTrip(t *testing.T) {
	for name, kv := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := kv.Get("todos")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, kv.Set("todos", `[{"id":1,"text":"a","completed":false}]`))
			got, found, err := kv.Get("todos")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `[{"id":1,"text":"a","completed":false}]`, got)

			require.NoError(t, kv.Set("todos", `[]`))
			got, _, err = kv.Get("todos")
			require.NoError(t, err)
			assert.Equal(t, `[]`, got)
		})
	}
}

func TestKVRejectsEmptyKey(t *testing.T) {
	for name, kv := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := kv.Get("")
			assert.Error(t, err)
			assert.Error(t, kv.Set("", "x"))
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("todos", "[]"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	got, found, err := second.Get("todos")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", got)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(Options{Backend: "redis"})
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = OpenSQLite("")
	assert.ErrorContains(t, err, "db path is empty")

	_, err = OpenDir("")
	assert.ErrorContains(t, err, "storage dir is empty")
}

func TestDirRejectsPathKeys(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, d.Set("../escape", "x"))
	assert.Error(t, d.Set("a/b", "x"))
}

func TestDirLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDir(dir)
	require.NoError(t, err)
	require.NoError(t, d.Set("todos", "[]"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todos.json", entries[0].Name())
}

func TestDirOverwriteKeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDir(dir)
	require.NoError(t, err)
	require.NoError(t, d.Set("todos", `[{"id":1}]`))
	require.NoError(t, d.Set("todos", "[]"))

	info, err := os.Stat(filepath.Join(dir, "todos.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm()&0o644)

	v, ok, err := d.Get("todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:already.db", sqliteDSN("file:already.db"))
	dsn := sqliteDSN("/tmp/todo.db")
	assert.Contains(t, dsn, "file:///tmp/todo.db")
	assert.Contains(t, dsn, "mode=rwc")
	assert.Contains(t, dsn, "busy_timeout")
}
