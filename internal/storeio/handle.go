// Package storeio provides the ref-counted, memory-mapped view over the
// on-disk index file that postings cursors read from.
//
// Callers Acquire a reference before slicing the mapping and Release it
// when done, and a handle that has dropped to zero references panics on
// further use rather than silently handing back unmapped memory.
package storeio

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Handle is a read-only, memory-mapped view of the index file. It is safe
// for concurrent use: every cursor acquires its own reference and reads an
// immutable sub-slice, so the "seek+read pair is not safe across threads"
// hazard the design notes warn about never arises — there is no seek.
type Handle struct {
	lock     sync.Mutex
	file     *os.File
	mapping  mmap.MMap
	refCount int32 // atomic
	closed   bool
}

// Open memory-maps path read-only and returns a Handle holding one
// reference. The caller owns that reference and must Release or Close it.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "storeio: open index file %q", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "storeio: mmap index file %q", path)
	}

	return &Handle{
		file:     f,
		mapping:  m,
		refCount: 1,
	}, nil
}

func (h *Handle) ensureOpen() {
	if atomic.LoadInt32(&h.refCount) <= 0 {
		panic("storeio: handle is closed")
	}
}

// Acquire increments the reference count and returns h so callers can chain
// Acquire with a deferred Release.
func (h *Handle) Acquire() *Handle {
	h.ensureOpen()
	atomic.AddInt32(&h.refCount, 1)
	return h
}

// Slice returns an immutable view of length n starting at byte offset off.
// The returned slice aliases the mapping; it must not be retained past the
// matching Release/Close call.
func (h *Handle) Slice(off uint64, n int) ([]byte, error) {
	h.ensureOpen()
	end := off + uint64(n)
	if n < 0 || end > uint64(len(h.mapping)) {
		return nil, errors.Errorf("storeio: slice [%d:%d] out of range (mapping len %d)", off, end, len(h.mapping))
	}
	return h.mapping[off:end], nil
}

// Len reports the size of the mapped file in bytes.
func (h *Handle) Len() int {
	h.ensureOpen()
	return len(h.mapping)
}

// Release drops one reference. At zero references the mapping is unmapped
// and the underlying file descriptor closed.
func (h *Handle) Release() error {
	rc := atomic.AddInt32(&h.refCount, -1)
	switch {
	case rc > 0:
		return nil
	case rc < 0:
		panic("storeio: Release called more times than Acquire")
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	unmapErr := h.mapping.Unmap()
	closeErr := h.file.Close()
	if unmapErr != nil {
		return errors.Wrap(unmapErr, "storeio: unmap index file")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "storeio: close index file")
	}
	return nil
}

// Close releases the reference the Handle was opened with. It is named
// distinctly from Release to make the "one Open, one Close" ownership rule
// readable at call sites, even though it does exactly what Release does.
func (h *Handle) Close() error {
	return h.Release()
}
