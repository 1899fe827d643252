// Package postings implements the per-term postings cursor: a forward-only
// iterator over the gap-encoded doc-id run and its parallel tfs run for one
// term.
package postings

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/vasth/bm25engine/internal/lexicon"
	"github.com/vasth/bm25engine/internal/storeio"
	"github.com/vasth/bm25engine/internal/varbyte"
)

// Cursor walks one term's posting list: next, next_geq, doc_id, tfs, idf,
// is_valid, close. Nothing here performs I/O past construction — the compressed gap
// run and tfs array are read once, up front, into slices owned by the
// cursor (or, when backed by storeio, aliasing an mmap view).
type Cursor struct {
	entry  *lexicon.Entry
	gaps   []byte
	tfs    []float32
	handle *storeio.Handle // non-nil when gaps/tfs alias a mmap view

	bufferPos  int
	idx        int // -1 before first next()
	lastDocID  uint32
	currentDoc uint32
	valid      bool
}

// Open constructs a cursor for entry, reading its gap run and tfs run out
// of handle. The tfs run is sized 4*df bytes, not 4*length — see DESIGN.md
// for why the latter over-allocates and must not be used.
func Open(handle *storeio.Handle, entry *lexicon.Entry) (*Cursor, error) {
	handle.Acquire()

	gaps, err := handle.Slice(entry.Offset, int(entry.Length))
	if err != nil {
		handle.Release()
		return nil, errors.Wrapf(err, "postings: read gap run for term %q", entry.Term)
	}

	tfsBytes, err := handle.Slice(entry.Offset+uint64(entry.Length), 4*int(entry.DocFrequency))
	if err != nil {
		handle.Release()
		return nil, errors.Wrapf(err, "postings: read tfs run for term %q", entry.Term)
	}

	tfs := make([]float32, entry.DocFrequency)
	for i := range tfs {
		bits := binary.LittleEndian.Uint32(tfsBytes[4*i:])
		tfs[i] = math.Float32frombits(bits)
	}

	return &Cursor{
		entry:  entry,
		gaps:   gaps,
		tfs:    tfs,
		handle: handle,
		idx:    -1,
		valid:  true,
	}, nil
}

// OpenInMemory builds a cursor directly from an already-decoded gap run and
// tfs array, bypassing storeio. It exists for tests and for any caller that
// already has the posting list materialized (e.g. a construction-time
// consistency check) and does not want to round-trip through a mapped file.
func OpenInMemory(entry *lexicon.Entry, gaps []byte, tfs []float32) *Cursor {
	return &Cursor{
		entry: entry,
		gaps:  gaps,
		tfs:   tfs,
		idx:   -1,
		valid: true,
	}
}

// Next advances to the next posting. It returns false once the list is
// exhausted or a decode failure occurs; either way the cursor becomes
// invalid and subsequent calls keep returning false.
func (c *Cursor) Next() bool {
	if !c.valid {
		return false
	}
	if c.bufferPos >= len(c.gaps) || c.idx+1 >= int(c.entry.DocFrequency) {
		c.valid = false
		return false
	}

	gap, next, err := varbyte.Decode(c.gaps, c.bufferPos)
	if err != nil {
		c.valid = false
		return false
	}

	c.bufferPos = next
	c.lastDocID += gap
	c.idx++
	c.currentDoc = c.lastDocID
	return true
}

// NextGeq advances the cursor until DocID() >= target or the cursor
// invalidates, returning whether it landed on a valid posting. Calling it
// when the cursor is already at or past target is a no-op.
//
// This walks forward with plain Next() calls rather than jumping buffer_pos
// via block_offsets; see DESIGN.md for why this engine does not take that
// option — the on-disk lexicon entry carries a block's file offset and max
// doc-id but not the ordinal of its first posting, so a buffer_pos jump
// cannot be paired with a matching idx without desyncing TFS() from the
// doc-id it jumped to.
func (c *Cursor) NextGeq(target uint32) bool {
	if !c.valid {
		return false
	}
	if c.idx >= 0 && c.currentDoc >= target {
		return true
	}

	for c.idx < 0 || c.currentDoc < target {
		if !c.Next() {
			return false
		}
	}
	return true
}

// DocID returns the doc-id at the cursor's current position. Only valid
// after a successful Next/NextGeq.
func (c *Cursor) DocID() uint32 {
	return c.currentDoc
}

// TFS returns the precomputed BM25 TF-normalization factor for the current
// posting.
func (c *Cursor) TFS() float32 {
	return c.tfs[c.idx]
}

// IDF returns the term's precomputed inverse document frequency.
func (c *Cursor) IDF() float64 {
	return c.entry.IDF
}

// IsValid reports whether further postings may exist.
func (c *Cursor) IsValid() bool {
	return c.valid
}

// Term returns the term this cursor was opened for, used for diagnostics.
func (c *Cursor) Term() string {
	return c.entry.Term
}

// Close marks the cursor invalid and releases its reference on the backing
// index-file handle, if any.
func (c *Cursor) Close() {
	c.valid = false
	if c.handle != nil {
		c.handle.Release()
		c.handle = nil
	}
}
