package postings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasth/bm25engine/internal/lexicon"
	"github.com/vasth/bm25engine/internal/postings"
	"github.com/vasth/bm25engine/internal/varbyte"
)

func newTestCursor(t *testing.T, docIDs []uint32, tfs []float32) *postings.Cursor {
	t.Helper()
	require.Equal(t, len(docIDs), len(tfs))

	gaps := make([]uint32, len(docIDs))
	var prev uint32
	for i, id := range docIDs {
		gaps[i] = id - prev
		prev = id
	}

	entry := &lexicon.Entry{
		Term:         "t",
		DocFrequency: uint32(len(docIDs)),
		IDF:          0.5,
	}
	return postings.OpenInMemory(entry, varbyte.EncodeList(gaps), tfs)
}

func TestNextProducesStrictlyIncreasingDocIDs(t *testing.T) {
	c := newTestCursor(t, []uint32{2, 5, 9}, []float32{0.1, 0.2, 0.3})

	var got []uint32
	for c.Next() {
		got = append(got, c.DocID())
	}
	assert.Equal(t, []uint32{2, 5, 9}, got)
	assert.False(t, c.IsValid())
}

func TestTFSAlignedWithDocID(t *testing.T) {
	c := newTestCursor(t, []uint32{1, 3}, []float32{0.9, 0.4})

	require.True(t, c.Next())
	assert.EqualValues(t, 1, c.DocID())
	assert.EqualValues(t, float32(0.9), c.TFS())

	require.True(t, c.Next())
	assert.EqualValues(t, 3, c.DocID())
	assert.EqualValues(t, float32(0.4), c.TFS())
}

func TestNextGeqLandsOnSmallestGeqTarget(t *testing.T) {
	c := newTestCursor(t, []uint32{1, 4, 7, 10}, []float32{1, 1, 1, 1})

	require.True(t, c.NextGeq(5))
	assert.EqualValues(t, 7, c.DocID())
}

func TestNextGeqIdempotentWhenAlreadyPastTarget(t *testing.T) {
	c := newTestCursor(t, []uint32{1, 4, 7}, []float32{1, 1, 1})

	require.True(t, c.NextGeq(4))
	assert.EqualValues(t, 4, c.DocID())

	require.True(t, c.NextGeq(2)) // no-op: already >= 2
	assert.EqualValues(t, 4, c.DocID())
}

func TestNextGeqBeyondListInvalidates(t *testing.T) {
	c := newTestCursor(t, []uint32{1, 2}, []float32{1, 1})
	assert.False(t, c.NextGeq(100))
	assert.False(t, c.IsValid())
}

func TestEmptyPostingListInvalidatesImmediately(t *testing.T) {
	c := newTestCursor(t, nil, nil)
	assert.False(t, c.Next())
	assert.False(t, c.IsValid())
}

func TestCloseInvalidates(t *testing.T) {
	c := newTestCursor(t, []uint32{1, 2}, []float32{1, 1})
	require.True(t, c.Next())
	c.Close()
	assert.False(t, c.IsValid())
	assert.False(t, c.Next())
}
