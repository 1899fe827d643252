package query

import "container/heap"

// cursorHeap is a min-heap of active term cursors ordered by current
// doc-id, used by the disjunctive executor to maintain the set of cursors
// still in play keyed by current doc-id. container/heap is the idiomatic
// choice for an arbitrary-key min-heap over a caller-defined item type, so
// it is used here instead of a third-party priority-queue package.
type cursorHeap []*termCursor

type termCursor struct {
	term   string
	cursor cursorLike
}

// cursorLike is the capability set the OR executor needs from a postings
// cursor. postings.Cursor satisfies it directly.
type cursorLike interface {
	DocID() uint32
	Next() bool
	IDF() float64
	TFS() float32
	IsValid() bool
}

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	return h[i].cursor.DocID() < h[j].cursor.DocID()
}
func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) {
	*h = append(*h, x.(*termCursor))
}

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ = heap.Interface(&cursorHeap{})
