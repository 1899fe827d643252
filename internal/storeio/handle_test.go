package storeio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasth/bm25engine/internal/storeio"
)

func writeTempFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	return path
}

func TestOpenAndSlice(t *testing.T) {
	path := writeTempFile(t, []byte("hello world"))

	h, err := storeio.Open(path)
	require.NoError(t, err)
	defer h.Close()

	got, err := h.Slice(0, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = h.Slice(6, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
}

func TestSliceOutOfRange(t *testing.T) {
	path := writeTempFile(t, []byte("abc"))
	h, err := storeio.Open(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Slice(0, 10)
	assert.Error(t, err)
}

func TestAcquireReleaseRefCounting(t *testing.T) {
	path := writeTempFile(t, []byte("abcdef"))
	h, err := storeio.Open(path)
	require.NoError(t, err)

	h.Acquire()
	require.NoError(t, h.Release()) // drop the acquired reference
	// Handle is still open since Open's own reference is outstanding.
	_, err = h.Slice(0, 1)
	assert.NoError(t, err)

	require.NoError(t, h.Close())
}

func TestEnsureOpenPanicsAfterClose(t *testing.T) {
	path := writeTempFile(t, []byte("abcdef"))
	h, err := storeio.Open(path)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	assert.Panics(t, func() {
		h.Slice(0, 1)
	})
}
