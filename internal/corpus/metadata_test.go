package corpus_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasth/bm25engine/internal/corpus"
)

func writePageTable(t *testing.T, entries map[uint32]string) string {
	t.Helper()
	var buf []byte
	for id, name := range entries {
		var hdr [6]byte
		binary.LittleEndian.PutUint32(hdr[0:4], id)
		binary.LittleEndian.PutUint16(hdr[4:6], uint16(len(name)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, name...)
	}
	path := filepath.Join(t.TempDir(), "page_table.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func writeDocLengths(t *testing.T, entries map[uint32]uint32) string {
	t.Helper()
	var buf []byte
	for id, length := range entries {
		var rec [8]byte
		binary.LittleEndian.PutUint32(rec[0:4], id)
		binary.LittleEndian.PutUint32(rec[4:8], length)
		buf = append(buf, rec[:]...)
	}
	path := filepath.Join(t.TempDir(), "doc_lengths.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoadDerivesNAndAvgDL(t *testing.T) {
	pagePath := writePageTable(t, map[uint32]string{
		1: "the quick brown fox", 2: "quick brown dog", 3: "lazy fox jumps", 4: "the lazy dog",
	})
	lenPath := writeDocLengths(t, map[uint32]uint32{1: 4, 2: 3, 3: 3, 4: 3})

	md, err := corpus.Load(pagePath, lenPath, zerolog.Nop())
	require.NoError(t, err)

	assert.EqualValues(t, 4, md.Stats.N)
	assert.InDelta(t, 3.25, md.Stats.AvgDL, 1e-9)
	assert.Equal(t, "the quick brown fox", md.Name(1))
	assert.EqualValues(t, 3, md.Length(3))
}

func TestNameFallsBackToDocIDString(t *testing.T) {
	pagePath := writePageTable(t, map[uint32]string{1: "only-doc"})
	lenPath := writeDocLengths(t, map[uint32]uint32{1: 4})

	md, err := corpus.Load(pagePath, lenPath, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "42", md.Name(42))
}

func TestEmptyCorpusHasZeroAvgDL(t *testing.T) {
	pagePath := writePageTable(t, nil)
	lenPath := writeDocLengths(t, nil)

	md, err := corpus.Load(pagePath, lenPath, zerolog.Nop())
	require.NoError(t, err)

	assert.EqualValues(t, 0, md.Stats.N)
	assert.Equal(t, float64(0), md.Stats.AvgDL)
}

func TestLengthFallsBackToAvgDL(t *testing.T) {
	pagePath := writePageTable(t, map[uint32]string{1: "a"})
	lenPath := writeDocLengths(t, map[uint32]uint32{1: 10, 2: 20})

	md, err := corpus.Load(pagePath, lenPath, zerolog.Nop())
	require.NoError(t, err)

	assert.EqualValues(t, 15, md.Length(999))
}
