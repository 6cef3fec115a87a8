package hostalloc

import (
	"sync"
	"unsafe"

	"github.com/CannibalVox/cgoalloc"
)

// Stats is a snapshot of the bookkeeping of an Aligned allocator.
type Stats struct {
	Live        int
	LiveBytes   uintptr
	Allocations uint64
	Frees       uint64
	PerScope    map[Scope]int
}

// header sits directly in front of every block handed out by Aligned.
type header struct {
	base unsafe.Pointer
	size uintptr
	// scope is kept so Free can keep the per scope counters balanced
	scope Scope
}

const headerSize = unsafe.Sizeof(header{})

// Aligned serves arbitrary power of two alignments on top of a plain C heap. The memory never
// lives on the Go heap, so the driver may keep it for as long as it likes.
type Aligned struct {
	mu    sync.Mutex
	heap  cgoalloc.Allocator
	stats Stats
}

// NewAligned wraps the given C heap. A nil heap selects cgoalloc.DefaultAllocator (malloc/free).
func NewAligned(heap cgoalloc.Allocator) *Aligned {
	if heap == nil {
		heap = &cgoalloc.DefaultAllocator{}
	}
	return &Aligned{
		heap:  heap,
		stats: Stats{PerScope: map[Scope]int{}},
	}
}

func (a *Aligned) Allocate(size, alignment uintptr, scope Scope) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocate(size, alignment, scope)
}

func (a *Aligned) Reallocate(original unsafe.Pointer, size, alignment uintptr, scope Scope) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if original == nil {
		return a.allocate(size, alignment, scope)
	}
	if size == 0 {
		a.free(original)
		return nil
	}
	old := headerOf(original)
	p := a.allocate(size, alignment, scope)
	if p == nil {
		// the original block stays valid on failure
		return nil
	}
	n := old.size
	if size < n {
		n = size
	}
	copy(unsafe.Slice((*byte)(p), n), unsafe.Slice((*byte)(original), n))
	a.free(original)
	return p
}

func (a *Aligned) Free(memory unsafe.Pointer) {
	if memory == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free(memory)
}

// Stats returns a copy of the current counters.
func (a *Aligned) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.stats
	s.PerScope = make(map[Scope]int, len(a.stats.PerScope))
	for k, v := range a.stats.PerScope {
		s.PerScope[k] = v
	}
	return s
}

// Destroy releases the underlying heap. Every block must have been freed before.
func (a *Aligned) Destroy() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.heap.Destroy()
}

func (a *Aligned) allocate(size, alignment uintptr, scope Scope) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return nil
	}
	if alignment < unsafe.Alignof(header{}) {
		alignment = unsafe.Alignof(header{})
	}
	base := a.heap.Malloc(int(size + alignment + headerSize))
	if base == nil {
		return nil
	}
	first := uintptr(base) + headerSize
	offset := headerSize + (alignment-first%alignment)%alignment
	p := unsafe.Add(base, offset)
	*headerOf(p) = header{base: base, size: size, scope: scope}

	a.stats.Live++
	a.stats.LiveBytes += size
	a.stats.Allocations++
	a.stats.PerScope[scope]++
	return p
}

func (a *Aligned) free(memory unsafe.Pointer) {
	h := *headerOf(memory)
	a.heap.Free(h.base)

	a.stats.Live--
	a.stats.LiveBytes -= h.size
	a.stats.Frees++
	a.stats.PerScope[h.scope]--
}

func headerOf(p unsafe.Pointer) *header {
	return (*header)(unsafe.Add(p, -int(headerSize)))
}
