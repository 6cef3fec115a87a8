package renderer

import (
	"math"
	"testing"
	"time"

	"GPU_mesh_renderer/common"
	"GPU_mesh_renderer/model"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRegion struct {
	mem    []byte
	maps   int
	unmaps int
}

func (r *memRegion) Map() ([]byte, error) {
	r.maps++
	return r.mem, nil
}

func (r *memRegion) Unmap() {
	r.unmaps++
}

func newMemRegions(n int, size int) ([]*memRegion, *UniformSet) {
	regions := make([]*memRegion, n)
	mapped := make([]common.MappedRegion, n)
	for i := range regions {
		regions[i] = &memRegion{mem: make([]byte, size)}
		mapped[i] = regions[i]
	}
	return regions, NewUniformSet(mapped)
}

// fakeDevice records the calls of one or more frames.
type fakeDevice struct {
	calls    []string
	imageIdx uint32
	fail     map[string]error

	recorded  []uint32
	wireframe []bool
	presented []uint32
}

func (d *fakeDevice) call(name string) error {
	d.calls = append(d.calls, name)
	return d.fail[name]
}

func (d *fakeDevice) WaitFence(time.Duration) error { return d.call("wait") }
func (d *fakeDevice) ResetFence() error             { return d.call("reset") }
func (d *fakeDevice) Submit() error                 { return d.call("submit") }

func (d *fakeDevice) Acquire(time.Duration) (uint32, error) {
	return d.imageIdx, d.call("acquire")
}

func (d *fakeDevice) RecordFrame(imageIdx uint32, wireframe bool) error {
	d.recorded = append(d.recorded, imageIdx)
	d.wireframe = append(d.wireframe, wireframe)
	return d.call("record")
}

func (d *fakeDevice) Present(imageIdx uint32) error {
	d.presented = append(d.presented, imageIdx)
	return d.call("present")
}

func testFrameInput() *FrameInput {
	return &FrameInput{
		Data: model.PerFrameData{
			View:       mgl32.Ident4(),
			Projection: mgl32.Ident4(),
		},
		Wireframe: true,
	}
}

func TestRenderFrameOrder(t *testing.T) {
	dev := &fakeDevice{imageIdx: 1}
	regions, uniforms := newMemRegions(3, int(model.SizeOfPerFrameData))
	var guard fenceGuard

	idx, err := renderFrame(dev, &guard, uniforms, testFrameInput(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
	assert.Equal(t, []string{"wait", "acquire", "reset", "record", "submit", "present"}, dev.calls)
	assert.Equal(t, []uint32{1}, dev.recorded)
	assert.Equal(t, []bool{true}, dev.wireframe)
	assert.Equal(t, []uint32{1}, dev.presented)

	// only the acquired image's region is written
	want := testFrameInput().Data.Bytes()
	assert.Equal(t, want, regions[1].mem)
	assert.Equal(t, 1, regions[1].maps)
	assert.Equal(t, 1, regions[1].unmaps)
	assert.Equal(t, make([]byte, len(want)), regions[0].mem)
	assert.Zero(t, regions[0].maps)
	assert.Zero(t, regions[2].maps)
}

func TestRenderFrameRepeats(t *testing.T) {
	dev := &fakeDevice{}
	_, uniforms := newMemRegions(2, int(model.SizeOfPerFrameData))
	var guard fenceGuard

	for i := 0; i < 3; i++ {
		dev.imageIdx = uint32(i % 2)
		_, err := renderFrame(dev, &guard, uniforms, testFrameInput(), 0)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint32{0, 1, 0}, dev.presented)
}

func TestRenderFrameStopsAtFirstError(t *testing.T) {
	tests := []struct {
		failAt string
		want   []string
	}{
		{"wait", []string{"wait"}},
		{"acquire", []string{"wait", "acquire"}},
		{"reset", []string{"wait", "acquire", "reset"}},
		{"record", []string{"wait", "acquire", "reset", "record"}},
		{"submit", []string{"wait", "acquire", "reset", "record", "submit"}},
		{"present", []string{"wait", "acquire", "reset", "record", "submit", "present"}},
	}
	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			boom := errors.New("boom")
			dev := &fakeDevice{fail: map[string]error{tt.failAt: boom}}
			_, uniforms := newMemRegions(1, int(model.SizeOfPerFrameData))
			var guard fenceGuard

			_, err := renderFrame(dev, &guard, uniforms, testFrameInput(), time.Second)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.want, dev.calls)
		})
	}
}

func TestRenderFrameAcquiredIndexOutOfRange(t *testing.T) {
	dev := &fakeDevice{imageIdx: 5}
	_, uniforms := newMemRegions(2, int(model.SizeOfPerFrameData))
	var guard fenceGuard

	_, err := renderFrame(dev, &guard, uniforms, testFrameInput(), time.Second)
	require.Error(t, err)
	assert.NotContains(t, dev.calls, "record")
	assert.NotContains(t, dev.calls, "submit")
}

func TestFenceGuard(t *testing.T) {
	var g fenceGuard
	assert.ErrorIs(t, g.onReset(), ErrFenceDiscipline, "reset before any wait")
	assert.ErrorIs(t, g.onSubmit(), ErrFenceDiscipline, "submit before any reset")

	g.onWait()
	require.NoError(t, g.onReset())
	assert.ErrorIs(t, g.onReset(), ErrFenceDiscipline, "second reset needs another wait")
	require.NoError(t, g.onSubmit())
	assert.ErrorIs(t, g.onSubmit(), ErrFenceDiscipline, "one submission per reset")

	g.onWait()
	require.NoError(t, g.onReset())
	require.NoError(t, g.onSubmit())
}

func TestUniformSetWrite(t *testing.T) {
	regions, uniforms := newMemRegions(2, 64)
	assert.Equal(t, 2, uniforms.Len())

	err := uniforms.Write(0, &testFrameInput().Data)
	require.Error(t, err, "region smaller than the record")
	assert.Equal(t, 1, regions[0].unmaps)

	assert.Error(t, uniforms.Write(2, &testFrameInput().Data))
}

func TestTimeoutNanos(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), timeoutNanos(0))
	assert.Equal(t, uint64(math.MaxUint64), timeoutNanos(-time.Second))
	assert.Equal(t, uint64(5e9), timeoutNanos(5*time.Second))
}

func TestWaitError(t *testing.T) {
	assert.NoError(t, waitError(vk.Success, "wait", time.Second))
	assert.ErrorIs(t, waitError(vk.Timeout, "wait", time.Second), common.ErrDeviceLost)
	assert.ErrorIs(t, waitError(vk.NotReady, "wait", time.Second), common.ErrDeviceLost)
	assert.ErrorIs(t, waitError(vk.ErrorDeviceLost, "wait", time.Second), common.ErrDeviceLost)

	err := waitError(vk.ErrorOutOfHostMemory, "wait", time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrDeviceLost)
}

func TestPerImage(t *testing.T) {
	items := []string{"a", "b", "c"}
	got, err := perImage(items, 2, "item")
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	got, err = perImage(items, 3, "item")
	assert.Error(t, err)
	assert.Empty(t, got)
}
