package model

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// Every attribute lives in its own tightly packed buffer and binding.
const (
	PositionBinding = 0
	ColorBinding    = 1
	NormalBinding   = 2
)

func GetVertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{
		{
			Binding:   PositionBinding,
			Stride:    uint32(unsafe.Sizeof(mgl32.Vec3{})),
			InputRate: vk.VertexInputRateVertex,
		},
		{
			Binding:   ColorBinding,
			Stride:    uint32(unsafe.Sizeof(mgl32.Vec4{})),
			InputRate: vk.VertexInputRateVertex,
		},
		{
			Binding:   NormalBinding,
			Stride:    uint32(unsafe.Sizeof(mgl32.Vec3{})),
			InputRate: vk.VertexInputRateVertex,
		},
	}
}

func GetVertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Location: 0,
			Binding:  PositionBinding,
			Format:   vk.FormatR32g32b32Sfloat,
		},
		{
			Location: 1,
			Binding:  ColorBinding,
			Format:   vk.FormatR32g32b32a32Sfloat,
		},
		{
			Location: 2,
			Binding:  NormalBinding,
			Format:   vk.FormatR32g32b32Sfloat,
		},
	}
}
