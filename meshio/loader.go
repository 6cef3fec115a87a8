// Package meshio reads triangle meshes from disk into model.Batch values.
package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"GPU_mesh_renderer/model"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// corner is one vertex of one triangle as it was read from the file, before vertices are joined.
type corner struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
	color  mgl32.Vec4
}

// soup is an unindexed triangle list, three corners per triangle.
type soup struct {
	corners    []corner
	hasNormals bool
	hasColors  bool
}

func (s *soup) triangles() int {
	return len(s.corners) / 3
}

// LoadMesh reads the mesh at path. The format follows the file extension. Polygons are triangulated,
// identical vertices are joined and smooth normals are generated when the file carries none.
func LoadMesh(path string) (*model.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read mesh")
	}
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b, err := Decode(data, ext, name)
	if err != nil {
		return nil, errors.Wrapf(err, "load mesh %s", path)
	}
	log.Infof("Loaded mesh %s: %d vertices, %d triangles", path, b.VertexCount(), len(b.Indices)/3)
	return b, nil
}

// Decode parses data in the format named by ext (".stl" or ".obj").
func Decode(data []byte, ext string, name string) (*model.Batch, error) {
	var s *soup
	var err error
	switch ext {
	case ".stl":
		s, err = parseSTL(data)
	case ".obj":
		s, err = parseOBJ(data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, err
	}
	if s.triangles() == 0 {
		return nil, errors.New("mesh contains no triangles")
	}

	if !s.hasNormals {
		generateNormals(s)
	}
	if !s.hasColors {
		// partial colors do not count, drop them so they do not split welded vertices
		for i := range s.corners {
			s.corners[i].color = mgl32.Vec4{}
		}
	}
	b := weld(s)
	b.Name = name
	if !s.hasColors {
		b.FillColor(model.DefaultColor)
	}
	return b, b.Validate()
}
