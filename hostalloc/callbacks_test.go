package hostalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCallbacksSelectDriverAllocator(t *testing.T) {
	var cb *Callbacks
	assert.Nil(t, cb.Vk())
	cb.Release()
}

func TestCallbacksResolveAllocator(t *testing.T) {
	a := NewAligned(nil)
	defer a.Destroy()

	cb := NewCallbacks(a)
	require.NotNil(t, cb.Vk())
	assert.Same(t, a, cb.Allocator())

	p := cb.Allocator().Allocate(48, 32, ScopeObject)
	require.NotNil(t, p)
	assert.Equal(t, 1, a.Stats().Live)
	cb.Allocator().Free(p)

	cb.Release()
	assert.Nil(t, cb.Vk())
	// releasing twice is harmless
	cb.Release()
}
