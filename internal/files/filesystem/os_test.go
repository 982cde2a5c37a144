package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	entries, err := NewOSFileSystem().ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.csv", entries[0].Name())
	assert.Equal(t, "b.csv", entries[1].Name())
	assert.True(t, entries[2].IsDir())
}

func TestOSFileSystem_ReadDir_Nonexistent(t *testing.T) {
	_, err := NewOSFileSystem().ReadDir(filepath.Join(t.TempDir(), "nonexistent"))
	assert.Error(t, err)
}

func TestOSFileSystem_Open(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(filePath, []byte("id\n1\n"), 0644))

	rc, err := NewOSFileSystem().Open(filePath)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(data))
}

func TestOSFileSystem_Stat(t *testing.T) {
	dir := t.TempDir()
	info, err := NewOSFileSystem().Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = NewOSFileSystem().Stat(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
