package model

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DefaultColor is used for meshes that carry no per vertex color.
var DefaultColor = mgl32.Vec4{0.8, 0.8, 0.8, 1}

// Batch is one indexed triangle list. Every attribute slice is indexed by vertex, so all of them have the
// same length. Each attribute is uploaded into its own vertex buffer.
type Batch struct {
	Name      string
	Positions []mgl32.Vec3
	Colors    []mgl32.Vec4
	Normals   []mgl32.Vec3
	Indices   []uint32
}

func (b *Batch) VertexCount() int {
	return len(b.Positions)
}

func (b *Batch) IndexCount() uint32 {
	return uint32(len(b.Indices))
}

// Validate reports whether the batch can be drawn as a triangle list.
func (b *Batch) Validate() error {
	n := len(b.Positions)
	if n == 0 {
		return errors.Errorf("batch %q has no vertices", b.Name)
	}
	if len(b.Colors) != n {
		return errors.Errorf("batch %q has %d colors for %d vertices", b.Name, len(b.Colors), n)
	}
	if len(b.Normals) != n {
		return errors.Errorf("batch %q has %d normals for %d vertices", b.Name, len(b.Normals), n)
	}
	if len(b.Indices) == 0 || len(b.Indices)%3 != 0 {
		return errors.Errorf("batch %q index count %d is not a positive multiple of 3", b.Name, len(b.Indices))
	}
	for i, idx := range b.Indices {
		if int(idx) >= n {
			return errors.Errorf("batch %q index %d at %d is out of range [0, %d)", b.Name, idx, i, n)
		}
	}
	return nil
}

// FillColor replaces every vertex color with c.
func (b *Batch) FillColor(c mgl32.Vec4) {
	b.Colors = make([]mgl32.Vec4, len(b.Positions))
	for i := range b.Colors {
		b.Colors[i] = c
	}
}

// The byte views alias the batch memory, they are only valid as long as the slices are not reassigned.

func (b *Batch) PositionBytes() []byte {
	return sliceBytes(b.Positions)
}

func (b *Batch) ColorBytes() []byte {
	return sliceBytes(b.Colors)
}

func (b *Batch) NormalBytes() []byte {
	return sliceBytes(b.Normals)
}

func (b *Batch) IndexBytes() []byte {
	return sliceBytes(b.Indices)
}

func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

const (
	PrimitiveTriangle = "triangle"
	PrimitiveCube     = "cube"
	PrimitivePlane    = "plane"
)

// Primitive returns a fresh copy of a built in batch.
func Primitive(name string) (*Batch, error) {
	switch name {
	case PrimitiveTriangle:
		return NewTriangle(name), nil
	case PrimitiveCube:
		return NewCube(name), nil
	case PrimitivePlane:
		return NewGridPlane(name), nil
	}
	return nil, errors.Errorf("unknown primitive %q", name)
}
