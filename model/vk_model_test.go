package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesAreValid(t *testing.T) {
	for _, name := range []string{PrimitiveTriangle, PrimitiveCube, PrimitivePlane} {
		t.Run(name, func(t *testing.T) {
			b, err := Primitive(name)
			require.NoError(t, err)
			require.NoError(t, b.Validate())
			assert.Equal(t, name, b.Name)

			// counter clockwise seen from the side the normals point to
			for i := 0; i < len(b.Indices); i += 3 {
				a, bb, c := b.Positions[b.Indices[i]], b.Positions[b.Indices[i+1]], b.Positions[b.Indices[i+2]]
				face := bb.Sub(a).Cross(c.Sub(a))
				assert.Greater(t, face.Dot(b.Normals[b.Indices[i]]), float32(0), "triangle %d", i/3)
			}
		})
	}
	_, err := Primitive("teapot")
	assert.Error(t, err)
}

func TestCubeShape(t *testing.T) {
	b := NewCube("cube")
	assert.Equal(t, 24, b.VertexCount())
	assert.Equal(t, uint32(36), b.IndexCount())
	for _, p := range b.Positions {
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 0.5, abs(p[i]), 1e-6)
		}
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func TestBatchValidate(t *testing.T) {
	valid := func() *Batch { return NewTriangle("t") }

	tests := []struct {
		name   string
		mutate func(b *Batch)
	}{
		{"no vertices", func(b *Batch) { b.Positions = nil }},
		{"short colors", func(b *Batch) { b.Colors = b.Colors[:2] }},
		{"short normals", func(b *Batch) { b.Normals = nil }},
		{"no indices", func(b *Batch) { b.Indices = nil }},
		{"partial triangle", func(b *Batch) { b.Indices = append(b.Indices, 0) }},
		{"index out of range", func(b *Batch) { b.Indices[2] = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			assert.Error(t, b.Validate())
		})
	}
	assert.NoError(t, valid().Validate())
}

func TestFillColor(t *testing.T) {
	b := NewGridPlane("p")
	b.Colors = nil
	b.FillColor(DefaultColor)
	require.Len(t, b.Colors, 4)
	for _, c := range b.Colors {
		assert.Equal(t, DefaultColor, c)
	}
	assert.NoError(t, b.Validate())
}

func TestByteViews(t *testing.T) {
	b := NewTriangle("t")
	assert.Len(t, b.PositionBytes(), 3*12)
	assert.Len(t, b.ColorBytes(), 3*16)
	assert.Len(t, b.NormalBytes(), 3*12)
	assert.Len(t, b.IndexBytes(), 3*4)
	assert.Equal(t, []byte{1, 0, 0, 0}, b.IndexBytes()[4:8])

	b.Positions[0] = mgl32.Vec3{1, 0, 0}
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b.PositionBytes()[:4])
	assert.Nil(t, (&Batch{}).IndexBytes())
}

func TestVertexLayout(t *testing.T) {
	bindings := GetVertexBindingDescriptions()
	attrs := GetVertexAttributeDescriptions()
	require.Len(t, bindings, 3)
	require.Len(t, attrs, 3)
	assert.Equal(t, []uint32{12, 16, 12}, []uint32{bindings[0].Stride, bindings[1].Stride, bindings[2].Stride})
	for i, a := range attrs {
		assert.Equal(t, uint32(i), a.Location)
		assert.Equal(t, bindings[i].Binding, a.Binding)
		assert.Equal(t, uint32(0), a.Offset)
	}
}
