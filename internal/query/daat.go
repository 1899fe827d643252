package query

import (
	"container/heap"
	"context"
	"sort"

	"github.com/vasth/bm25engine/internal/postings"
)

// TermCursor pairs a query term with the postings cursor opened for it.
// Unknown terms never appear here — the caller (Processor.Search) filters
// them out before invoking an executor.
type TermCursor struct {
	Term   string
	Cursor *postings.Cursor
}

// executeConjunctive runs the AND merge loop. It returns the per-doc score
// map; doc-ids are visited in strictly increasing order and each match is
// scored exactly once.
func executeConjunctive(ctx context.Context, cursors []TermCursor) map[uint32]float64 {
	scores := make(map[uint32]float64)
	if len(cursors) == 0 {
		return scores
	}

	docIDs := make([]uint32, len(cursors))
	for i, tc := range cursors {
		if !tc.Cursor.Next() {
			return scores // any cursor starting empty means no conjunctive match is possible
		}
		docIDs[i] = tc.Cursor.DocID()
	}

	for {
		if checkCancel(ctx) {
			return scores
		}

		target := docIDs[0]
		for _, id := range docIDs[1:] {
			if id > target {
				target = id
			}
		}

		allMatch := true
		anyInvalid := false
		for i, tc := range cursors {
			if docIDs[i] < target {
				if !tc.Cursor.NextGeq(target) {
					anyInvalid = true
					allMatch = false
					continue
				}
				docIDs[i] = tc.Cursor.DocID()
			}
			if docIDs[i] != target {
				allMatch = false
			}
		}
		if anyInvalid {
			return scores
		}

		if !allMatch {
			continue
		}

		var total float64
		for i, tc := range cursors {
			total += tc.Cursor.IDF() * float64(tc.Cursor.TFS())
			if !tc.Cursor.Next() {
				anyInvalid = true
			} else {
				docIDs[i] = tc.Cursor.DocID()
			}
		}
		scores[target] = total

		if anyInvalid {
			return scores
		}
	}
}

// executeDisjunctive runs the OR merge loop via a min-heap keyed by current
// doc-id. All cursors tied at the current minimum are popped and fused into
// one score before anything is advanced again, so the result is identical
// whether ties are fused in one pass or summed incrementally.
func executeDisjunctive(ctx context.Context, cursors []TermCursor) map[uint32]float64 {
	scores := make(map[uint32]float64)

	h := make(cursorHeap, 0, len(cursors))
	for _, tc := range cursors {
		if tc.Cursor.Next() {
			h = append(h, &termCursor{term: tc.Term, cursor: tc.Cursor})
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		if checkCancel(ctx) {
			return scores
		}

		min := h[0].cursor.DocID()
		var total float64
		var toAdvance []*termCursor
		for h.Len() > 0 && h[0].cursor.DocID() == min {
			top := heap.Pop(&h).(*termCursor)
			total += top.cursor.IDF() * float64(top.cursor.TFS())
			toAdvance = append(toAdvance, top)
		}
		scores[min] = total

		for _, tc := range toAdvance {
			if tc.cursor.Next() {
				heap.Push(&h, tc)
			}
		}
	}
	return scores
}

// rank selects the top k scores, breaking ties by ascending doc-id, and
// joins each surviving doc-id against name.
func rank(scores map[uint32]float64, k int, name func(uint32) string) []Hit {
	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{DocID: docID, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].DocName = name(hits[i].DocID)
	}
	return hits
}
