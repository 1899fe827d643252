// Package lexicon loads and holds the in-memory term -> posting-list
// metadata table. The lexicon is built once at Processor construction and
// is immutable and safe for concurrent reads for the remainder of the
// process's life.
package lexicon

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Entry is one term's posting-list metadata, exactly as laid out on disk
// plus the precomputed IDF.
type Entry struct {
	Term           string
	Offset         uint64
	Length         uint32
	DocFrequency   uint32
	BlockCount     uint32
	IDF            float64
	BlockMaxDocIDs []uint32
	BlockOffsets   []uint64
}

// Lexicon is the immutable term -> Entry table.
type Lexicon struct {
	entries map[string]*Entry
}

// Contains reports whether term has a posting list.
func (l *Lexicon) Contains(term string) bool {
	_, ok := l.entries[term]
	return ok
}

// Get returns the entry for term, or nil and false if the term is unknown.
// An unknown term is not an error condition here: the executor is the
// layer that decides how to react.
func (l *Lexicon) Get(term string) (*Entry, bool) {
	e, ok := l.entries[term]
	return e, ok
}

// Len reports the number of distinct terms in the lexicon.
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// idf computes ln((N - df + 0.5) / (df + 0.5)). N governs consistently at
// runtime (see DESIGN.md): no hard-coded corpus-size constant is consulted
// here.
func idf(n int64, df uint32) float64 {
	return math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
}

// Load streams the lexicon file to EOF, building an in-memory Lexicon. n is
// the corpus size (N) used to precompute each entry's IDF; it must be the
// caller's corpus.Stats.N so that IDF and the scorer agree on what N means.
//
// Load is a startup-only blocking call. Any malformed record aborts
// construction with a wrapped error.
func Load(path string, n int64, log zerolog.Logger) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "lexicon: open %q", path)
	}
	defer f.Close()

	entries := make(map[string]*Entry)
	r := f

	var header [2]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "lexicon: read term_length")
		}
		termLen := binary.LittleEndian.Uint16(header[:])

		termBuf := make([]byte, termLen)
		if _, err := io.ReadFull(r, termBuf); err != nil {
			return nil, errors.Wrap(err, "lexicon: read term bytes")
		}
		if !utf8.Valid(termBuf) {
			return nil, errors.Errorf("lexicon: term at offset is not valid UTF-8: %q", termBuf)
		}
		term := string(termBuf)

		var fixed [20]byte // offset(8) + length(4) + doc_frequency(4) + block_count(4)
		if _, err := io.ReadFull(r, fixed[:]); err != nil {
			return nil, errors.Wrapf(err, "lexicon: read fixed fields for term %q", term)
		}
		offset := binary.LittleEndian.Uint64(fixed[0:8])
		length := binary.LittleEndian.Uint32(fixed[8:12])
		df := binary.LittleEndian.Uint32(fixed[12:16])
		blockCount := binary.LittleEndian.Uint32(fixed[16:20])

		entry := &Entry{
			Term:         term,
			Offset:       offset,
			Length:       length,
			DocFrequency: df,
			BlockCount:   blockCount,
			IDF:          idf(n, df),
		}

		if blockCount > 0 {
			maxBuf := make([]byte, 4*blockCount)
			if _, err := io.ReadFull(r, maxBuf); err != nil {
				return nil, errors.Wrapf(err, "lexicon: read block_max_doc_ids for term %q", term)
			}
			entry.BlockMaxDocIDs = make([]uint32, blockCount)
			for i := range entry.BlockMaxDocIDs {
				entry.BlockMaxDocIDs[i] = binary.LittleEndian.Uint32(maxBuf[4*i:])
			}

			offBuf := make([]byte, 8*blockCount)
			if _, err := io.ReadFull(r, offBuf); err != nil {
				return nil, errors.Wrapf(err, "lexicon: read block_offsets for term %q", term)
			}
			entry.BlockOffsets = make([]uint64, blockCount)
			for i := range entry.BlockOffsets {
				entry.BlockOffsets[i] = binary.LittleEndian.Uint64(offBuf[8*i:])
			}
		}

		if _, dup := entries[term]; dup {
			log.Warn().Str("term", term).Msg("lexicon: duplicate term record, keeping last")
		}
		entries[term] = entry
	}

	log.Info().Int("terms", len(entries)).Str("path", path).Msg("lexicon loaded")
	return &Lexicon{entries: entries}, nil
}
