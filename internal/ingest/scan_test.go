package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanDirectoryFiltersAndDedupes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Acme Mart\nTotal: 8.64")
	writeFile(t, dir, "copy-of-a.txt", "Acme Mart\nTotal: 8.64") // same content
	writeFile(t, dir, "b.jpg", "jpeg bytes")
	writeFile(t, dir, "notes.md", "not a receipt")
	writeFile(t, dir, ".hidden/c.txt", "hidden receipt")

	files, stats, err := ScanDirectory(dir, nil)

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.EqualValues(t, 4, stats.Scanned)
	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 1, stats.Deduplicated)
	assert.EqualValues(t, 0, stats.Failed)
	for _, f := range files {
		assert.Len(t, f.HashHex, 64)
	}
}

func TestScanDirectoryExplicitExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "text receipt")
	writeFile(t, dir, "b.jpg", "jpeg bytes")

	files, _, err := ScanDirectory(dir, []string{".JPG"})

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "b.jpg"), files[0].Path)
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	_, _, err := ScanDirectory("  ", nil)
	assert.Error(t, err)
}
