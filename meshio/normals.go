package meshio

import "github.com/go-gl/mathgl/mgl32"

// faceNormal is the unnormalized normal of a counter clockwise triangle. Its length is twice the area.
func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

func normalizeOr(v mgl32.Vec3, fallback mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 1e-12 {
		return v.Mul(1 / l)
	}
	return fallback
}

// generateNormals assigns every corner the area weighted average of the face normals of all triangles
// sharing its position.
func generateNormals(s *soup) {
	sum := make(map[mgl32.Vec3]mgl32.Vec3)
	for t := 0; t < s.triangles(); t++ {
		a, b, c := s.corners[3*t].pos, s.corners[3*t+1].pos, s.corners[3*t+2].pos
		n := faceNormal(a, b, c)
		sum[a] = sum[a].Add(n)
		sum[b] = sum[b].Add(n)
		sum[c] = sum[c].Add(n)
	}
	up := mgl32.Vec3{0, 0, 1}
	for i := range s.corners {
		s.corners[i].normal = normalizeOr(sum[s.corners[i].pos], up)
	}
	s.hasNormals = true
}
