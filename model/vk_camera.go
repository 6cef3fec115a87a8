package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	CAM_PERSPECTIVE_PROJECTION  = iota
	CAM_ORTHOGRAPHIC_PROJECTION = iota
)

// Defaults of the fly camera. The half life makes the camera cover 99% of the distance to its target in
// 0.369 seconds: halfLife = -t / log2(p) with p = 0.01, t = 0.369.
const (
	DefaultFov       = 45
	DefaultNear      = 0.1
	DefaultFar       = 10
	DefaultMoveSpeed = 1.639
)

var DefaultHalfLife = HalfLifeFor(0.01, 0.369)

// HalfLifeFor returns the half life after which only the fraction p of the distance is left after t seconds.
func HalfLifeFor(p, t float64) float32 {
	return float32(-t / math.Log2(p))
}

// VulkanClip converts OpenGL clip space into Vulkan's: Y points down and depth spans [0, 1].
var VulkanClip = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// Camera is a fly camera. Input moves Target, Position follows it with exponential smoothing so that the
// rate of approach does not depend on the frame rate.
type Camera struct {
	ProjectionType int

	Fov  float32 // degrees
	Near float32
	Far  float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3

	Speed    float32
	HalfLife float32
}

func NewCamera(fov float32, near float32, far float32) *Camera {
	start := mgl32.Vec3{0, 0, 2}
	return &Camera{
		ProjectionType: CAM_PERSPECTIVE_PROJECTION,
		Fov:            fov,
		Near:           near,
		Far:            far,
		Position:       start,
		Target:         start,
		Front:          mgl32.Vec3{0, 0, -1},
		Up:             mgl32.Vec3{0, 1, 0},
		Speed:          DefaultMoveSpeed,
		HalfLife:       DefaultHalfLife,
	}
}

// Place puts the camera at pos without smoothing.
func (c *Camera) Place(pos mgl32.Vec3) {
	c.Position = pos
	c.Target = pos
}

func (c *Camera) right() mgl32.Vec3 {
	r := c.Front.Cross(c.Up)
	if r.Len() == 0 {
		return mgl32.Vec3{}
	}
	return r.Normalize()
}

// Move shifts the target along dir by Speed * dt.
func (c *Camera) Move(dir Direction, dt float32) {
	step := c.Speed * dt
	switch dir {
	case Forward:
		c.Target = c.Target.Add(c.Front.Mul(step))
	case Backward:
		c.Target = c.Target.Sub(c.Front.Mul(step))
	case Left:
		c.Target = c.Target.Sub(c.right().Mul(step))
	case Right:
		c.Target = c.Target.Add(c.right().Mul(step))
	case Up:
		c.Target = c.Target.Add(c.Up.Mul(step))
	case Down:
		c.Target = c.Target.Sub(c.Up.Mul(step))
	}
}

// SmoothingAlpha is the interpolation weight 1 - 2^(-dt/halfLife). A non positive half life snaps.
func SmoothingAlpha(dt, halfLife float32) float32 {
	if halfLife <= 0 {
		return 1
	}
	return float32(1 - math.Exp2(-float64(dt)/float64(halfLife)))
}

// Smooth moves Position toward Target by SmoothingAlpha(dt, HalfLife).
func (c *Camera) Smooth(dt float32) {
	alpha := SmoothingAlpha(dt, c.HalfLife)
	c.Position = c.Position.Add(c.Target.Sub(c.Position).Mul(alpha))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// Projection returns the projection for the given viewport aspect in Vulkan clip space. An unknown projection
// type yields identity.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	switch c.ProjectionType {
	case CAM_PERSPECTIVE_PROJECTION:
		return VulkanClip.Mul4(mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far))
	case CAM_ORTHOGRAPHIC_PROJECTION:
		return VulkanClip.Mul4(mgl32.Ortho(-aspect, aspect, -1, 1, c.Near, c.Far))
	default:
		return mgl32.Ident4()
	}
}

// ToggleProjection switches between perspective and orthographic projection.
func (c *Camera) ToggleProjection() {
	if c.ProjectionType == CAM_PERSPECTIVE_PROJECTION {
		c.ProjectionType = CAM_ORTHOGRAPHIC_PROJECTION
	} else {
		c.ProjectionType = CAM_PERSPECTIVE_PROJECTION
	}
}

// Frame captures the matrices of one frame.
func (c *Camera) Frame(aspect float32) PerFrameData {
	return PerFrameData{View: c.View(), Projection: c.Projection(aspect)}
}
