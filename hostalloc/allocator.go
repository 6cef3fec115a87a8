package hostalloc

import (
	"fmt"
	"unsafe"
)

// Scope mirrors VkSystemAllocationScope and tells the allocator how long the driver intends to keep
// an allocation alive.
type Scope uint32

const (
	ScopeCommand Scope = iota
	ScopeObject
	ScopeCache
	ScopeDevice
	ScopeInstance
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeObject:
		return "object"
	case ScopeCache:
		return "cache"
	case ScopeDevice:
		return "device"
	case ScopeInstance:
		return "instance"
	default:
		return fmt.Sprintf("scope(%d)", uint32(s))
	}
}

// Allocator receives every host side allocation the driver would otherwise do on its own. A nil
// return from Allocate or Reallocate reports exhaustion, the driver turns it into
// VK_ERROR_OUT_OF_HOST_MEMORY on the call that triggered it.
//
// Implementations are called from driver threads and must be safe for concurrent use.
type Allocator interface {
	Allocate(size, alignment uintptr, scope Scope) unsafe.Pointer
	Reallocate(original unsafe.Pointer, size, alignment uintptr, scope Scope) unsafe.Pointer
	Free(memory unsafe.Pointer)
}
