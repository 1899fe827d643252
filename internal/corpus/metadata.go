// Package corpus loads the two sidecar tables that describe the document
// collection independently of term content: the page table (doc-id ->
// external name) and the doc-length table (doc-id -> length in tokens), and
// derives the corpus-wide stats (N, avgdl) the scorer and lexicon need.
package corpus

import (
	"encoding/binary"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Stats are the corpus-wide numbers computed once at startup.
type Stats struct {
	N     int64
	AvgDL float64
}

// Metadata bundles the page table, doc lengths, and derived Stats.
type Metadata struct {
	pageTable  map[uint32]string
	docLengths map[uint32]uint32
	Stats      Stats
}

// Name returns the external document name for docID, or the decimal string
// form of docID if the page table has no entry.
func (m *Metadata) Name(docID uint32) string {
	if name, ok := m.pageTable[docID]; ok {
		return name
	}
	return strconv.FormatUint(uint64(docID), 10)
}

// Length returns the doc-length for docID, falling back to the corpus
// average when the id was never recorded. The DAAT executors never need it
// since tfs is precomputed, but it is exposed for callers and tests.
func (m *Metadata) Length(docID uint32) uint32 {
	if length, ok := m.docLengths[docID]; ok {
		return length
	}
	return uint32(m.Stats.AvgDL)
}

// Load reads the page table and doc-length files and derives N and avgdl.
// Both files are streamed to EOF; a malformed fixed-width record aborts
// with a wrapped error.
func Load(pageTablePath, docLengthsPath string, log zerolog.Logger) (*Metadata, error) {
	pageTable, err := loadPageTable(pageTablePath)
	if err != nil {
		return nil, err
	}

	docLengths, total, err := loadDocLengths(docLengthsPath)
	if err != nil {
		return nil, err
	}

	n := int64(len(docLengths))
	var avgdl float64
	if n > 0 {
		avgdl = float64(total) / float64(n)
	}

	log.Info().
		Int("pages", len(pageTable)).
		Int64("n", n).
		Float64("avgdl", avgdl).
		Msg("corpus metadata loaded")

	return &Metadata{
		pageTable:  pageTable,
		docLengths: docLengths,
		Stats:      Stats{N: n, AvgDL: avgdl},
	}, nil
}

func loadPageTable(path string) (map[uint32]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "corpus: open page table %q", path)
	}
	defer f.Close()

	table := make(map[uint32]string)
	var header [6]byte // doc_id(4) + name_length(2)
	for {
		if _, err := io.ReadFull(f, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "corpus: read page table record header")
		}
		docID := binary.LittleEndian.Uint32(header[0:4])
		nameLen := binary.LittleEndian.Uint16(header[4:6])

		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(f, nameBuf); err != nil {
			return nil, errors.Wrapf(err, "corpus: read page table name for doc %d", docID)
		}
		table[docID] = string(nameBuf)
	}
	return table, nil
}

func loadDocLengths(path string) (map[uint32]uint32, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "corpus: open doc lengths %q", path)
	}
	defer f.Close()

	lengths := make(map[uint32]uint32)
	var total uint64
	var record [8]byte // doc_id(4) + length(4)
	for {
		if _, err := io.ReadFull(f, record[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, errors.Wrap(err, "corpus: read doc length record")
		}
		docID := binary.LittleEndian.Uint32(record[0:4])
		length := binary.LittleEndian.Uint32(record[4:8])
		lengths[docID] = length
		total += uint64(length)
	}
	return lengths, total, nil
}
