package model

import "github.com/go-gl/mathgl/mgl32"

// cubeFaces lists normal, u and v per face with u x v = normal, so the corners walked in u/v order are
// counter clockwise seen from outside.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

var cubeColors = [6]mgl32.Vec4{
	{1, 0, 0, 1},
	{0, 1, 0, 1},
	{0, 0, 1, 1},
	{1, 0.5, 1, 1},
	{1, 0.5, 0.5, 1},
	{0.5, 0.5, 1, 1},
}

// NewCube returns a unit cube centered at the origin with flat shaded faces, 4 vertices per face.
func NewCube(name string) *Batch {
	b := &Batch{Name: name}
	for f, face := range cubeFaces {
		n, u, v := face[0], face[1].Mul(0.5), face[2].Mul(0.5)
		c := n.Mul(0.5)
		base := uint32(len(b.Positions))
		b.Positions = append(b.Positions,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		for i := 0; i < 4; i++ {
			b.Normals = append(b.Normals, n)
			b.Colors = append(b.Colors, cubeColors[f])
		}
		b.Indices = append(b.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return b
}
