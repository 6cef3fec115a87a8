package hostalloc

/*
#include <stdint.h>
#include <stdlib.h>
#include "callbacks.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Callbacks exposes an Allocator to the driver as a VkAllocationCallbacks struct. The struct and
// its user data cell live on the C heap so the driver may hold on to them between calls.
type Callbacks struct {
	c      *C.hostallocCallbacks
	cell   *C.uintptr_t
	handle cgo.Handle
}

// NewCallbacks routes every driver side host allocation through a. Release must be called once the
// last object created with these callbacks has been destroyed.
func NewCallbacks(a Allocator) *Callbacks {
	h := cgo.NewHandle(a)
	cell := (*C.uintptr_t)(C.malloc(C.size_t(unsafe.Sizeof(C.uintptr_t(0)))))
	*cell = C.uintptr_t(h)
	c := (*C.hostallocCallbacks)(C.calloc(1, C.size_t(unsafe.Sizeof(C.hostallocCallbacks{}))))
	C.hostallocFill(c, unsafe.Pointer(cell))
	return &Callbacks{
		c:      c,
		cell:   cell,
		handle: h,
	}
}

// Vk returns the pointer handed to every vkCreate*/vkDestroy* call. A nil receiver selects the
// driver's own allocator.
func (cb *Callbacks) Vk() *vk.AllocationCallbacks {
	if cb == nil || cb.c == nil {
		return nil
	}
	return (*vk.AllocationCallbacks)(unsafe.Pointer(cb.c))
}

// Allocator returns the Go allocator behind these callbacks.
func (cb *Callbacks) Allocator() Allocator {
	return allocatorFor(cb.userData())
}

func (cb *Callbacks) Release() {
	if cb == nil || cb.c == nil {
		return
	}
	C.free(unsafe.Pointer(cb.c))
	C.free(unsafe.Pointer(cb.cell))
	cb.handle.Delete()
	cb.c = nil
	cb.cell = nil
}

func (cb *Callbacks) userData() unsafe.Pointer {
	return unsafe.Pointer(cb.cell)
}

func allocatorFor(userData unsafe.Pointer) Allocator {
	h := cgo.Handle(*(*C.uintptr_t)(userData))
	return h.Value().(Allocator)
}

//export goHostAllocation
func goHostAllocation(userData unsafe.Pointer, size C.size_t, alignment C.size_t, scope C.int) unsafe.Pointer {
	return allocatorFor(userData).Allocate(uintptr(size), uintptr(alignment), Scope(scope))
}

//export goHostReallocation
func goHostReallocation(userData unsafe.Pointer, original unsafe.Pointer, size C.size_t, alignment C.size_t, scope C.int) unsafe.Pointer {
	return allocatorFor(userData).Reallocate(original, uintptr(size), uintptr(alignment), Scope(scope))
}

//export goHostFree
func goHostFree(userData unsafe.Pointer, memory unsafe.Pointer) {
	allocatorFor(userData).Free(memory)
}
