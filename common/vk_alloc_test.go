package common

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deviceLocal  = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	hostVisible  = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	hostCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	hostCached   = vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit)
)

func memProps(flags ...vk.MemoryPropertyFlags) vk.PhysicalDeviceMemoryProperties {
	var p vk.PhysicalDeviceMemoryProperties
	p.MemoryTypeCount = uint32(len(flags))
	for i, f := range flags {
		p.MemoryTypes[i].PropertyFlags = f
	}
	return p
}

func TestFindMemoryType(t *testing.T) {
	props := memProps(
		deviceLocal,
		hostVisible|hostCoherent,
		hostVisible|hostCoherent|hostCached,
		deviceLocal|hostVisible|hostCoherent,
	)
	tests := []struct {
		name     string
		typeBits uint32
		required vk.MemoryPropertyFlags
		want     uint32
		wantErr  bool
	}{
		{name: "device local", typeBits: 0xF, required: deviceLocal, want: 0},
		{name: "host visible first match", typeBits: 0xF, required: hostVisible | hostCoherent, want: 1},
		{name: "type bits mask out earlier match", typeBits: 0b1100, required: hostVisible, want: 2},
		{name: "superset flags qualify", typeBits: 0b1000, required: deviceLocal, want: 3},
		{name: "no flags required", typeBits: 0b0100, required: 0, want: 2},
		{name: "allowed types lack flags", typeBits: 0b0001, required: hostVisible, wantErr: true},
		{name: "no types allowed", typeBits: 0, required: 0, wantErr: true},
		{name: "bits beyond type count", typeBits: 0b110000, required: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindMemoryType(props, tt.typeBits, tt.required)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoMemoryType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every returned index satisfies both the type mask and the requested flags.
func TestFindMemoryTypeProperty(t *testing.T) {
	all := []vk.MemoryPropertyFlags{deviceLocal, hostVisible, hostCoherent, hostCached}
	props := memProps(deviceLocal, hostVisible|hostCoherent, hostVisible|hostCached, deviceLocal|hostVisible)
	for typeBits := uint32(0); typeBits < 16; typeBits++ {
		for mask := 0; mask < 1<<len(all); mask++ {
			var required vk.MemoryPropertyFlags
			for i := range all {
				if mask&(1<<i) != 0 {
					required |= all[i]
				}
			}
			idx, err := FindMemoryType(props, typeBits, required)
			if err != nil {
				for i := uint32(0); i < props.MemoryTypeCount; i++ {
					ok := typeBits&(1<<i) != 0 && props.MemoryTypes[i].PropertyFlags&required == required
					assert.False(t, ok, "type %d qualifies for bits %b flags %b", i, typeBits, required)
				}
				continue
			}
			assert.NotZero(t, typeBits&(1<<idx))
			assert.Equal(t, required, props.MemoryTypes[idx].PropertyFlags&required)
		}
	}
}

func TestImageSpecValidate(t *testing.T) {
	ok := ImageSpec{
		Width:  4,
		Height: 4,
		Format: vk.FormatB8g8r8a8Srgb,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	}
	assert.NoError(t, ok.Validate())

	empty := ok
	empty.Height = 0
	assert.Error(t, empty.Validate())

	undefined := ok
	undefined.Format = vk.FormatUndefined
	assert.Error(t, undefined.Validate())

	noUsage := ok
	noUsage.Usage = 0
	assert.Error(t, noUsage.Validate())
}

func TestViewCreateInfo(t *testing.T) {
	info := ViewCreateInfo(ViewSpec{
		Format: vk.FormatD32Sfloat,
		Aspect: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	assert.Equal(t, vk.ImageViewType2d, info.ViewType)
	assert.Equal(t, vk.ComponentSwizzleIdentity, info.Components.R)
	assert.Equal(t, uint32(1), info.SubresourceRange.LevelCount)
	assert.Equal(t, uint32(1), info.SubresourceRange.LayerCount)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), info.SubresourceRange.AspectMask)

	swizzle := vk.ComponentMapping{R: vk.ComponentSwizzleB, G: vk.ComponentSwizzleG, B: vk.ComponentSwizzleR, A: vk.ComponentSwizzleOne}
	info = ViewCreateInfo(ViewSpec{Format: vk.FormatR8g8b8a8Unorm, Components: &swizzle, ViewType: vk.ImageViewTypeCube})
	assert.Equal(t, vk.ComponentSwizzleB, info.Components.R)
	assert.Equal(t, vk.ImageViewTypeCube, info.ViewType)
}

func TestBufferHostFlags(t *testing.T) {
	b := &Buffer{Props: hostVisible | hostCoherent}
	assert.True(t, b.HostVisible())
	assert.True(t, b.HostCoherent())

	b = &Buffer{Props: deviceLocal}
	assert.False(t, b.HostVisible())
	assert.Error(t, b.Write(nil, []byte{1}))

	b = &Buffer{Props: hostVisible, Size: 2}
	assert.Error(t, b.Write(nil, []byte{1, 2, 3}))
}
