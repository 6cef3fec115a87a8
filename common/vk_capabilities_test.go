package common

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(name string, dt vk.PhysicalDeviceType, features []string, exts []string) GPUCandidate {
	var props vk.PhysicalDeviceProperties
	props.DeviceType = dt
	copy(props.DeviceName[:], name)
	f, err := FeaturesFromNames(features)
	if err != nil {
		panic(err)
	}
	return GPUCandidate{Props: props, Features: f, Extensions: exts}
}

func TestSelectGPUScenario(t *testing.T) {
	required, err := FeaturesFromNames([]string{"FillModeNonSolid", "SamplerAnisotropy"})
	require.NoError(t, err)
	exts := []string{"VK_KHR_swapchain"}

	gpus := []GPUCandidate{
		candidate("A", vk.PhysicalDeviceTypeIntegratedGpu, []string{"FillModeNonSolid", "SamplerAnisotropy"}, exts),
		candidate("B", vk.PhysicalDeviceTypeDiscreteGpu, []string{"FillModeNonSolid"}, exts),
		candidate("C", vk.PhysicalDeviceTypeDiscreteGpu, []string{"FillModeNonSolid", "SamplerAnisotropy", "WideLines"}, exts),
	}

	best, scores, err := SelectGPU(gpus, required, exts)
	require.NoError(t, err)
	assert.Equal(t, []int{40, -30, 50}, scores)
	assert.Equal(t, 2, best)
	assert.Equal(t, "C", gpus[best].Name())

	for i := 0; i < 10; i++ {
		again, _, err := SelectGPU(gpus, required, exts)
		require.NoError(t, err)
		assert.Equal(t, best, again)
	}
}

func TestSelectGPUMissingExtension(t *testing.T) {
	var none vk.PhysicalDeviceFeatures
	gpus := []GPUCandidate{
		candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, nil, []string{"VK_KHR_maintenance1"}),
		candidate("integrated", vk.PhysicalDeviceTypeIntegratedGpu, nil, []string{"VK_KHR_swapchain"}),
	}
	best, scores, err := SelectGPU(gpus, none, []string{"VK_KHR_swapchain"})
	require.NoError(t, err)
	assert.Equal(t, []int{-30, 40}, scores)
	assert.Equal(t, 1, best)
}

func TestSelectGPUTieGoesToFirst(t *testing.T) {
	var none vk.PhysicalDeviceFeatures
	gpus := []GPUCandidate{
		candidate("first", vk.PhysicalDeviceTypeDiscreteGpu, nil, nil),
		candidate("second", vk.PhysicalDeviceTypeDiscreteGpu, nil, nil),
	}
	best, _, err := SelectGPU(gpus, none, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, best)
}

func TestSelectGPUFailsWhenNoneQualifies(t *testing.T) {
	required, err := FeaturesFromNames([]string{"GeometryShader"})
	require.NoError(t, err)

	_, _, err = SelectGPU(nil, required, nil)
	assert.True(t, errors.Is(err, ErrNoSuitableGPU))

	gpus := []GPUCandidate{candidate("weak", vk.PhysicalDeviceTypeDiscreteGpu, nil, nil)}
	_, scores, err := SelectGPU(gpus, required, nil)
	assert.True(t, errors.Is(err, ErrNoSuitableGPU))
	assert.Equal(t, []int{-30}, scores)
}

func TestFeaturesFromNames(t *testing.T) {
	f, err := FeaturesFromNames([]string{"FillModeNonSolid", "WideLines"})
	require.NoError(t, err)
	assert.Equal(t, vk.Bool32(vk.True), f.FillModeNonSolid)
	assert.Equal(t, vk.Bool32(vk.True), f.WideLines)
	assert.Equal(t, vk.Bool32(vk.False), f.GeometryShader)
	assert.Equal(t, []string{"FillModeNonSolid", "WideLines"}, FeatureNames(f))

	_, err = FeaturesFromNames([]string{"NotAFeature"})
	assert.Error(t, err)
}

func TestEnableSupported(t *testing.T) {
	requested, _ := FeaturesFromNames([]string{"SamplerAnisotropy"})
	supported, _ := FeaturesFromNames([]string{"SamplerAnisotropy", "FillModeNonSolid"})

	got, added := EnableSupported(requested, supported, []string{"FillModeNonSolid", "WideLines", "NotAFeature", "SamplerAnisotropy"})
	assert.Equal(t, []string{"FillModeNonSolid"}, added)
	assert.Equal(t, []string{"FillModeNonSolid", "SamplerAnisotropy"}, FeatureNames(got))
	assert.Equal(t, []string{"SamplerAnisotropy"}, FeatureNames(requested), "input is not modified")

	got, added = EnableSupported(requested, requested, []string{"FillModeNonSolid"})
	assert.Empty(t, added)
	assert.Equal(t, requested, got)
}

func TestMissingFeatures(t *testing.T) {
	requested, _ := FeaturesFromNames([]string{"FillModeNonSolid", "GeometryShader"})
	supported, _ := FeaturesFromNames([]string{"FillModeNonSolid", "WideLines"})
	assert.Equal(t, []string{"GeometryShader"}, MissingFeatures(requested, supported))
	assert.Empty(t, MissingFeatures(supported, supported))
	assert.True(t, HasFeature(supported, "WideLines"))
	assert.False(t, HasFeature(supported, "GeometryShader"))
}

func families(flags ...vk.QueueFlagBits) []vk.QueueFamilyProperties {
	out := make([]vk.QueueFamilyProperties, len(flags))
	for i, f := range flags {
		out[i].QueueFlags = vk.QueueFlags(f)
		out[i].QueueCount = 1
	}
	return out
}

func TestSelectQueueFamily(t *testing.T) {
	fams := families(
		vk.QueueTransferBit,
		vk.QueueGraphicsBit|vk.QueueComputeBit,
		vk.QueueGraphicsBit|vk.QueueComputeBit|vk.QueueTransferBit,
	)
	graphics := vk.QueueFlags(vk.QueueGraphicsBit)
	presentOn := func(ok ...uint32) func(uint32) bool {
		return func(f uint32) bool { return inList(f, ok) }
	}

	tests := []struct {
		name       string
		flags      vk.QueueFlags
		present    bool
		canPresent func(uint32) bool
		exclude    []uint32
		want       uint32
		wantErr    bool
	}{
		{name: "first graphics", flags: graphics, want: 1},
		{name: "all flags required", flags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit), want: 2},
		{name: "present narrows", flags: graphics, present: true, canPresent: presentOn(2), want: 2},
		{name: "present ignored when not required", flags: graphics, canPresent: presentOn(), want: 1},
		{name: "exclusion", flags: graphics, exclude: []uint32{1}, want: 2},
		{name: "nothing left", flags: graphics, exclude: []uint32{1, 2}, wantErr: true},
		{name: "no present support", flags: graphics, present: true, canPresent: presentOn(0), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectQueueFamily(fams, tt.flags, tt.present, tt.canPresent, tt.exclude)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoQueueFamily))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectSurfaceFormat(t *testing.T) {
	supported := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	got, err := SelectSurfaceFormat(supported, []vk.Format{vk.FormatB8g8r8a8Srgb, vk.FormatR8g8b8a8Unorm})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)

	got, err = SelectSurfaceFormat(supported, []vk.Format{vk.FormatA2b10g10r10UnormPack32})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, got.Format)

	_, err = SelectSurfaceFormat(nil, []vk.Format{vk.FormatB8g8r8a8Srgb})
	assert.True(t, errors.Is(err, ErrNoSurfaceFormat))
}

func TestClampSurfaceCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		desired  uint32
		want     uint32
	}{
		{name: "max below desired", min: 1, max: 2, desired: 3, want: 2},
		{name: "unbounded max", min: 2, max: 0, desired: 3, want: 3},
		{name: "desired within range", min: 2, max: 8, desired: 3, want: 3},
		{name: "desired below surface min is forced anyway", min: 4, max: 8, desired: 3, want: 3},
		{name: "zero desired uses default", min: 1, max: 0, desired: 0, want: DefaultImageCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			got := ClampSurfaceCapabilities(caps, tt.desired)
			assert.Equal(t, tt.want, got.MinImageCount)
			assert.Equal(t, tt.max, got.MaxImageCount)
		})
	}
}

func TestClampSurfaceCapabilitiesTransform(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit | vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}
	assert.Equal(t, vk.SurfaceTransformIdentityBit, ClampSurfaceCapabilities(caps, 3).CurrentTransform)

	caps.SupportedTransforms = vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit)
	assert.Equal(t, vk.SurfaceTransformRotate90Bit, ClampSurfaceCapabilities(caps, 3).CurrentTransform)
}

func sampleFlags(bits ...vk.SampleCountFlagBits) vk.SampleCountFlags {
	var f vk.SampleCountFlags
	for _, b := range bits {
		f |= vk.SampleCountFlags(b)
	}
	return f
}

func TestSelectSampleCount(t *testing.T) {
	all := sampleFlags(vk.SampleCount1Bit, vk.SampleCount2Bit, vk.SampleCount4Bit, vk.SampleCount8Bit)
	upTo4 := sampleFlags(vk.SampleCount1Bit, vk.SampleCount2Bit, vk.SampleCount4Bit)

	tests := []struct {
		name                  string
		color, depth, stencil vk.SampleCountFlags
		max                   vk.SampleCountFlagBits
		want                  vk.SampleCountFlagBits
	}{
		{name: "all support 8", color: all, depth: all, stencil: all, want: vk.SampleCount8Bit},
		{name: "intersection", color: all, depth: upTo4, stencil: all, want: vk.SampleCount4Bit},
		{name: "capped", color: all, depth: all, stencil: all, max: vk.SampleCount2Bit, want: vk.SampleCount2Bit},
		{name: "nothing shared", color: sampleFlags(vk.SampleCount8Bit), depth: sampleFlags(vk.SampleCount4Bit), stencil: all, want: vk.SampleCount1Bit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := vk.PhysicalDeviceLimits{
				FramebufferColorSampleCounts:   tt.color,
				FramebufferDepthSampleCounts:   tt.depth,
				FramebufferStencilSampleCounts: tt.stencil,
			}
			assert.Equal(t, tt.want, SelectSampleCount(limits, tt.max))
		})
	}
}

func TestSampleCountFromInt(t *testing.T) {
	assert.Equal(t, vk.SampleCount4Bit, SampleCountFromInt(4))
	assert.Equal(t, vk.SampleCountFlagBits(0), SampleCountFromInt(3))
}

func TestSelectSupportedFormat(t *testing.T) {
	depth := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	props := map[vk.Format]vk.FormatProperties{
		vk.FormatD32Sfloat:       {LinearTilingFeatures: depth},
		vk.FormatD24UnormS8Uint:  {OptimalTilingFeatures: depth},
		vk.FormatD32SfloatS8Uint: {},
	}
	lookup := func(f vk.Format) vk.FormatProperties { return props[f] }
	candidates := []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}

	got, err := SelectSupportedFormat(candidates, vk.ImageTilingOptimal, depth, lookup)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD24UnormS8Uint, got)
	assert.True(t, HasStencilComponent(got))

	got, err = SelectSupportedFormat(candidates, vk.ImageTilingLinear, depth, lookup)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32Sfloat, got)
	assert.False(t, HasStencilComponent(got))

	_, err = SelectSupportedFormat(candidates[1:2], vk.ImageTilingOptimal, depth, lookup)
	assert.True(t, errors.Is(err, ErrNoSupportedFormat))
}
