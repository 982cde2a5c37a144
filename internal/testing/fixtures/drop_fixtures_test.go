package fixtures

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/csvstage/internal/files/filesystem"
)

func readAll(t *testing.T, fs filesystem.FileSystemProvider, path string) string {
	t.Helper()
	rc, err := fs.Open(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestDropBuilder_Build(t *testing.T) {
	fs := UniformPair().AddFile("notes.txt", "x").Build()

	entries, err := fs.ReadDir(DropDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.csv", entries[0].Name())

	assert.Equal(t, "id,name\n1,a1\n2,a2\n3,a3\n", readAll(t, fs, DropDir+"/a.csv"))
}

func TestDropBuilder_Names(t *testing.T) {
	assert.Equal(t, []string{"a.csv", "b.csv"}, SwappedHeaders().Names())
}

func TestDropBuilder_WriteTo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, UniformPair().WriteTo(dir))

	data, err := os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,b1\n2,b2\n3,b3\n4,b4\n5,b5\n", string(data))
}

func TestDropBuilder_AddCSV(t *testing.T) {
	fs := NewDropBuilder().
		AddCSV("c.csv", []string{"k"}, nil).
		Build()

	assert.Equal(t, "k\n", readAll(t, fs, DropDir+"/c.csv"))
}
