package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/shared/testutil"
)

func TestManager_WriteFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	dir := t.TempDir()
	m := NewManager(dir, logger)

	path, err := m.WriteFile("reports/out.docx", []byte("contenido"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "out.docx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "scratch file left behind")

	testutil.AssertLogAttr(t, handler, "path", path)
}

func TestManager_WriteFile_Overwrites(t *testing.T) {
	m := NewManager(t.TempDir(), nil)

	_, err := m.WriteFile("a.txt", []byte("first"))
	require.NoError(t, err)
	_, err = m.WriteFile("a.txt", []byte("second"))
	require.NoError(t, err)

	data, err := m.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestManager_WriteFile_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	m := NewManager(dir, nil)
	_, err := m.WriteFile("blocker/out.docx", []byte("data"))
	assert.Error(t, err)
}

func TestManager_FileExistsAndDelete(t *testing.T) {
	m := NewManager(t.TempDir(), nil)

	assert.False(t, m.FileExists("x.csv"))
	_, err := m.WriteFile("x.csv", []byte("a,b"))
	require.NoError(t, err)
	assert.True(t, m.FileExists("x.csv"))

	require.NoError(t, m.DeleteFile("x.csv"))
	assert.False(t, m.FileExists("x.csv"))
}

func TestManager_ListFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil)

	for _, name := range []string{"b.xlsx", "a.CSV", "notes.txt"} {
		_, err := m.WriteFile(name, []byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, m.EnsureDirectory("sub.xlsx"))

	tests := []struct {
		name string
		exts []string
		want []string
	}{
		{name: "all files", exts: nil, want: []string{"a.CSV", "b.xlsx", "notes.txt"}},
		{name: "spreadsheets", exts: []string{".xlsx", ".csv"}, want: []string{"a.CSV", "b.xlsx"}},
		{name: "no match", exts: []string{".docx"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ListFiles(".", tt.exts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_ResolvePath(t *testing.T) {
	m := NewManager("/base", nil)
	assert.Equal(t, "/base/out/r.docx", m.resolvePath("out/r.docx"))
	assert.Equal(t, "/abs/r.docx", m.resolvePath("/abs/r.docx"))

	assert.Equal(t, "rel/r.docx", NewManager("", nil).resolvePath("rel/r.docx"))
}
