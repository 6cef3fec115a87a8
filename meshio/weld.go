package meshio

import "GPU_mesh_renderer/model"

// weld joins corners with identical position, normal and color into one indexed vertex. Vertex order
// follows first use.
func weld(s *soup) *model.Batch {
	b := &model.Batch{Indices: make([]uint32, 0, len(s.corners))}
	seen := make(map[corner]uint32, len(s.corners))
	for _, c := range s.corners {
		idx, ok := seen[c]
		if !ok {
			idx = uint32(len(b.Positions))
			seen[c] = idx
			b.Positions = append(b.Positions, c.pos)
			b.Normals = append(b.Normals, c.normal)
			b.Colors = append(b.Colors, c.color)
		}
		b.Indices = append(b.Indices, idx)
	}
	return b
}
