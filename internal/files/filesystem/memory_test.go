package filesystem

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/b.csv", "x\n")
	mfs.AddFile("/data/a.csv", "x\n")
	mfs.AddFile("/data/nested/c.csv", "x\n")

	entries, err := mfs.ReadDir("/data")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.csv", "b.csv", "nested"}, names)
	assert.True(t, entries[2].IsDir())
}

func TestMemoryFileSystem_ReadDir_Missing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadDir("/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMemoryFileSystem_ReadDir_OnFile(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/a.csv", "x\n")

	_, err := mfs.ReadDir("/data/a.csv")
	require.Error(t, err)
}

func TestMemoryFileSystem_AddDir_Empty(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddDir("/empty")

	entries, err := mfs.ReadDir("/empty")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/a.csv", "id,name\n1,x\n")

	rc, err := mfs.Open("/data/a.csv")
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,x\n", string(content))
}

func TestMemoryFileSystem_Open_Errors(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/a.csv", "x\n")

	_, err := mfs.Open("/data/missing.csv")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = mfs.Open("/data")
	assert.Error(t, err)
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.AddFile("/data/a.csv", "abc")

	info, err := mfs.Stat("/data/a.csv")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "a.csv", info.Name())
	assert.Equal(t, int64(3), info.Size())

	info, err = mfs.Stat("/data")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = mfs.Stat("/nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
