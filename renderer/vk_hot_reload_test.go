package renderer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"GPU_mesh_renderer/model"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderWatcher(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "mesh.vert.spv")
	frag := filepath.Join(dir, "mesh.frag.spv")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{vert, frag} {
		require.NoError(t, os.WriteFile(p, []byte{1, 2, 3, 4}, 0o644))
	}

	sw, err := NewShaderWatcher(vert, frag)
	require.NoError(t, err)
	defer sw.Close()
	assert.False(t, sw.Changed())

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.False(t, sw.Changed(), "unrelated files are ignored")

	require.NoError(t, os.WriteFile(frag, []byte{5, 6, 7, 8}, 0o644))
	require.Eventually(t, sw.Changed, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sw.Close())
	assert.NoError(t, sw.Close(), "close is idempotent")
}

func TestShaderWatcherMissingDir(t *testing.T) {
	_, err := NewShaderWatcher(filepath.Join(t.TempDir(), "missing", "mesh.vert.spv"))
	assert.Error(t, err)
}

func TestSwapPipelines(t *testing.T) {
	old := make([]vk.Pipeline, 2)
	var destroyed [][]vk.Pipeline
	destroy := func(p []vk.Pipeline) { destroyed = append(destroyed, p) }

	boom := errors.New("shader does not link")
	got, err := swapPipelines(old, func() ([]vk.Pipeline, error) { return nil, boom }, destroy)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, got, 2, "the old set stays in use")
	assert.Empty(t, destroyed, "nothing is destroyed when the build fails")

	fresh := make([]vk.Pipeline, 1)
	got, err = swapPipelines(old, func() ([]vk.Pipeline, error) {
		assert.Empty(t, destroyed, "the old set is alive while the new one is built")
		return fresh, nil
	}, destroy)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, destroyed, 1)
	assert.Len(t, destroyed[0], 2, "the old set is destroyed after the swap")
}

func TestLoadBatch(t *testing.T) {
	b, err := LoadBatch("", model.PrimitiveCube)
	require.NoError(t, err)
	assert.Equal(t, uint32(36), b.IndexCount())

	_, err = LoadBatch("", "teapot")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "tri.obj")
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(path, []byte(obj), 0o644))
	b, err = LoadBatch(path, "teapot")
	require.NoError(t, err, "the mesh file wins over the primitive")
	assert.Equal(t, "tri", b.Name)
	assert.Equal(t, 3, b.VertexCount())
}
