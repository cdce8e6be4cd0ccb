package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.cgs")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFile_Read(t *testing.T) {
	content := []byte("CBGS graph payload")

	f, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(len(content)), f.Len())
	assert.Equal(t, content, f.Bytes())

	buf := make([]byte, 5)
	n, err := f.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "graph", string(buf))

	n, err = f.ReadAt(make([]byte, 10), 100)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	tail := make([]byte, 10)
	n, err = f.ReadAt(tail, 11)
	assert.Equal(t, 7, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "payload", string(tail[:n]))

	_, err = f.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestFile_Slice(t *testing.T) {
	f, err := Open(writeFile(t, []byte("0123456789")))
	require.NoError(t, err)
	defer f.Close()

	b, err := f.Slice(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "234", string(b))

	b, err = f.Slice(8, 100)
	require.NoError(t, err)
	assert.Equal(t, "89", string(b))

	_, err = f.Slice(10, 1)
	assert.Equal(t, io.EOF, err)

	_, err = f.Slice(0, -1)
	assert.ErrorIs(t, err, ErrRange)

	// Hints never fail.
	f.Prefetch(3, 4)
	f.Prefetch(0, f.Len())
	f.Prefetch(50, 1)
}

func TestFile_Empty(t *testing.T) {
	f, err := Open(writeFile(t, nil))
	require.NoError(t, err)

	assert.Zero(t, f.Len())
	assert.Nil(t, f.Bytes())
	_, err = f.Slice(0, 1)
	assert.Equal(t, io.EOF, err)
	require.NoError(t, f.Close())
}

func TestFile_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_AfterClose(t *testing.T) {
	f, err := Open(writeFile(t, []byte("data")))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	assert.Nil(t, f.Bytes())
	_, err = f.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.Slice(0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}
