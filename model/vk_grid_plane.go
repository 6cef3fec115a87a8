package model

import "github.com/go-gl/mathgl/mgl32"

// NewGridPlane returns a 2x2 quad in the XY plane facing +Z.
func NewGridPlane(name string) *Batch {
	n := mgl32.Vec3{0, 0, 1}
	return &Batch{
		Name: name,
		Positions: []mgl32.Vec3{
			{-1, -1, 0},
			{1, -1, 0},
			{1, 1, 0},
			{-1, 1, 0},
		},
		Colors: []mgl32.Vec4{
			{1, 0, 0, 1},
			{0, 1, 0, 1},
			{0, 0, 1, 1},
			{1, 0.5, 1, 1},
		},
		Normals: []mgl32.Vec3{n, n, n, n},
		Indices: []uint32{
			0, 1, 2,
			2, 3, 0,
		},
	}
}

func NewTriangle(name string) *Batch {
	n := mgl32.Vec3{0, 0, 1}
	return &Batch{
		Name: name,
		Positions: []mgl32.Vec3{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0, 0.5, 0},
		},
		Colors: []mgl32.Vec4{
			{1, 0, 0, 1},
			{0, 1, 0, 1},
			{0, 0, 1, 1},
		},
		Normals: []mgl32.Vec3{n, n, n},
		Indices: []uint32{0, 1, 2},
	}
}
