package meshio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"GPU_mesh_renderer/model"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type facet struct {
	normal mgl32.Vec3
	v      [3]mgl32.Vec3
}

func binarySTL(header string, facets ...facet) []byte {
	out := make([]byte, stlHeaderSize, stlHeaderSize+4+len(facets)*stlFacetSize)
	copy(out, header)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(facets)))
	put := func(v mgl32.Vec3) {
		for _, f := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	for _, f := range facets {
		put(f.normal)
		for _, v := range f.v {
			put(v)
		}
		out = append(out, 0, 0)
	}
	return out
}

var (
	up   = mgl32.Vec3{0, 0, 1}
	quad = []facet{
		{up, [3]mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}}},
		{up, [3]mgl32.Vec3{{1, 1, 0}, {-1, 1, 0}, {-1, -1, 0}}},
	}
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestBinarySTLWeldsSharedCorners(t *testing.T) {
	// a binary header starting with "solid" must not be mistaken for ascii
	b, err := Decode(binarySTL("solid exported by a cad tool", quad...), ".stl", "quad")
	require.NoError(t, err)
	assert.Equal(t, "quad", b.Name)
	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, b.Indices)
	for _, n := range b.Normals {
		assertVec3(t, up, n)
	}
	for _, c := range b.Colors {
		assert.Equal(t, model.DefaultColor, c)
	}
}

func TestBinarySTLZeroNormalUsesWinding(t *testing.T) {
	f := facet{v: [3]mgl32.Vec3{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}}
	b, err := Decode(binarySTL("", f), ".stl", "x")
	require.NoError(t, err)
	for _, n := range b.Normals {
		assertVec3(t, mgl32.Vec3{-1, 0, 0}, n)
	}
}

func TestBinarySTLTruncated(t *testing.T) {
	data := binarySTL("", quad...)
	_, err := Decode(data[:len(data)-10], ".stl", "x")
	assert.Error(t, err)
}

const asciiSTL = `solid pyramid
  facet normal 0 0 1
    outer loop
      vertex -1 -1 0
      vertex 1 -1 0
      vertex 1 1 0
      vertex -1 1 0
    endloop
  endfacet
endsolid pyramid
`

func TestASCIISTLTriangulatesPolygons(t *testing.T) {
	b, err := Decode([]byte(asciiSTL), ".stl", "a")
	require.NoError(t, err)
	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, b.Indices)
}

func TestASCIISTLErrors(t *testing.T) {
	tests := map[string]string{
		"bad number":    "solid x\nfacet normal 0 0 q\nendsolid\n",
		"two vertices":  "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\n",
		"unterminated":  "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\n",
		"stray vertex":  "solid x\nvertex 0 0 0\n",
		"unknown token": "solid x\nbanana\n",
		"empty solid":   "solid x\nendsolid x\n",
		"not an stl":    "hello",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(src), ".stl", "x")
			assert.Error(t, err)
		})
	}
}

func TestOBJFanAndGeneratedNormals(t *testing.T) {
	src := `# quad
o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
f 1 2 3 4
`
	b, err := Decode([]byte(src), ".obj", "quad")
	require.NoError(t, err)
	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, b.Indices)
	for _, n := range b.Normals {
		assertVec3(t, up, n)
	}
}

func TestOBJSmoothNormalsAverageSharedPositions(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 -1
f 1 2 3
f 1 4 3
`
	b, err := Decode([]byte(src), ".obj", "roof")
	require.NoError(t, err)
	require.Equal(t, 4, b.VertexCount())
	s := float32(1 / math.Sqrt2)
	assertVec3(t, mgl32.Vec3{s, 0, s}, b.Normals[0])
	assertVec3(t, up, b.Normals[1])
	assertVec3(t, mgl32.Vec3{s, 0, s}, b.Normals[2])
	assertVec3(t, mgl32.Vec3{1, 0, 0}, b.Normals[3])
}

func TestOBJNormalsColorsAndNegativeIndices(t *testing.T) {
	src := `v 0 0 0 1 0 0
v 1 0 0 0 1 0
v 0 1 0 0 0 1
vn 0 0 2
f -3//-1 -2//-1 -1//-1
`
	b, err := Decode([]byte(src), ".obj", "tri")
	require.NoError(t, err)
	assert.Equal(t, 3, b.VertexCount())
	assertVec3(t, up, b.Normals[0])
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, b.Colors[0])
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, b.Colors[2])
}

func TestOBJErrors(t *testing.T) {
	tests := map[string]string{
		"index out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":         "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"bad normal ref":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n",
		"short face":         "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"short vertex":       "v 0 0\n",
		"no faces":           "v 0 0 0\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(src), ".obj", "x")
			assert.Error(t, err)
		})
	}
}

func TestLoadMesh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Quad.STL")
	require.NoError(t, os.WriteFile(path, binarySTL("", quad...), 0o644))

	b, err := LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, "Quad", b.Name)
	assert.NoError(t, b.Validate())

	_, err = LoadMesh(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)

	ply := filepath.Join(dir, "mesh.ply")
	require.NoError(t, os.WriteFile(ply, []byte("ply"), 0o644))
	_, err = LoadMesh(ply)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
