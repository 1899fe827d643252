package query

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vasth/bm25engine/internal/corpus"
	"github.com/vasth/bm25engine/internal/lexicon"
	"github.com/vasth/bm25engine/internal/postings"
	"github.com/vasth/bm25engine/internal/storeio"
)

// Processor is the query engine's top-level facade: it opens the
// index file, loads the lexicon and corpus metadata once, and answers
// Search calls for the remainder of the process's life. Processor is safe
// for concurrent Search calls — the lexicon, metadata, and index handle are
// immutable after Open, and every call opens its own cursors.
type Processor struct {
	handle *storeio.Handle
	lex    *lexicon.Lexicon
	meta   *corpus.Metadata
	cfg    Config
	log    zerolog.Logger
}

// Option customizes Open.
type Option func(*Processor)

// WithConfig overrides the default engine configuration.
func WithConfig(cfg Config) Option {
	return func(p *Processor) { p.cfg = cfg }
}

// WithLogger overrides the default stderr zerolog logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// Open wires together the four on-disk tables: the posting-list index file
// (mmapped), the lexicon, the page table, and the doc-length table. It
// blocks for the whole startup load and returns a wrapped error on any
// malformed input.
func Open(indexPath, lexiconPath, pageTablePath, docLengthsPath string, opts ...Option) (*Processor, error) {
	p := &Processor{
		cfg: DefaultConfig(),
		log: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	meta, err := corpus.Load(pageTablePath, docLengthsPath, p.log)
	if err != nil {
		return nil, fmt.Errorf("query: load corpus metadata: %w", err)
	}
	p.meta = meta

	lex, err := lexicon.Load(lexiconPath, meta.Stats.N, p.log)
	if err != nil {
		return nil, fmt.Errorf("query: load lexicon: %w", err)
	}
	p.lex = lex

	handle, err := storeio.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("query: open index file: %w", err)
	}
	p.handle = handle

	p.log.Info().
		Int("terms", lex.Len()).
		Int64("docs", meta.Stats.N).
		Msg("query processor ready")
	return p, nil
}

// Close releases the Processor's reference on the mmapped index file. It
// does not affect any cursors opened by in-flight Search calls — each
// Search acquires and releases its own reference.
func (p *Processor) Close() error {
	return p.handle.Close()
}

// Search answers one query. mode selects AND/OR semantics; k bounds the
// number of ranked hits returned (<= k, never more); a k <= 0 is replaced
// by the configured TopK. An all-unknown or
// empty query returns an empty Result, not an error.
func (p *Processor) Search(ctx context.Context, rawQuery string, mode Mode, k int) (Result, error) {
	if k <= 0 {
		k = p.cfg.TopK
	}

	terms := Tokenize(rawQuery)
	if len(terms) == 0 {
		return Result{Warnings: []string{"empty query: no usable terms after tokenization"}}, nil
	}

	var cursors []TermCursor
	var warnings []string
	for _, term := range terms {
		entry, ok := p.lex.Get(term)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown term: %q", term))
			p.log.Debug().Str("term", term).Msg("unknown term, skipped")
			continue
		}

		cursor, err := postings.Open(p.handle, entry)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("io error opening term %q: %v", term, err))
			p.log.Warn().Err(err).Str("term", term).Msg("failed to open postings cursor")
			continue
		}
		cursors = append(cursors, TermCursor{Term: term, Cursor: cursor})
	}
	defer func() {
		for _, tc := range cursors {
			tc.Cursor.Close()
		}
	}()

	if len(cursors) == 0 {
		warnings = append(warnings, "all query terms unknown or unavailable")
		return Result{Warnings: warnings}, nil
	}

	if checkCancel(ctx) {
		return Result{Warnings: warnings}, ErrCancelled{}
	}

	var scores map[uint32]float64
	if mode == ModeAnd {
		scores = executeConjunctive(ctx, cursors)
	} else {
		scores = executeDisjunctive(ctx, cursors)
	}

	if checkCancel(ctx) {
		return Result{Warnings: warnings}, ErrCancelled{}
	}

	hits := rank(scores, k, p.meta.Name)
	return Result{Hits: hits, Warnings: warnings}, nil
}
