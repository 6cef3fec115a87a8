package model

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// PerFrameData is the uniform record the vertex shader reads each frame. Both matrices are column major.
type PerFrameData struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// SizeOfPerFrameData is two 4x4 float32 matrices, 128 bytes.
const SizeOfPerFrameData = vk.DeviceSize(2 * 16 * 4)

// Bytes is the little endian layout the shader expects, view first.
func (u *PerFrameData) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, SizeOfPerFrameData))
	// fixed size record of float32 arrays, binary.Write cannot fail on it
	_ = binary.Write(buf, binary.LittleEndian, u)
	return buf.Bytes()
}
