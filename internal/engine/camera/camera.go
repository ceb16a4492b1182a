// Package camera provides the first-person camera used by both render paths.
package camera

import (
	gomath "math"

	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// FPSCamera is a yaw/pitch camera at a world position. Angles are radians;
// yaw rotates around world Y, pitch around the camera's X. Forward at zero
// yaw and pitch is -Z.
type FPSCamera struct {
	Position math.Vec3
	Yaw      float32
	Pitch    float32

	// Projection
	FovY float32 // vertical field of view, radians
	Near float32
	Far  float32

	// Constraints and sensitivity
	MinPitch         float32
	MaxPitch         float32
	MouseSensitivity float32
}

// NewFPSCamera creates a camera with the given vertical field of view.
func NewFPSCamera(fovY float32) *FPSCamera {
	return &FPSCamera{
		FovY:             fovY,
		Near:             0.1,
		Far:              1000.0,
		MinPitch:         -1.5,
		MaxPitch:         1.5,
		MouseSensitivity: 0.0025,
	}
}

// Rotation returns the camera orientation: yaw applied first, then pitch in
// the yawed frame.
func (c *FPSCamera) Rotation() math.Quat {
	yaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, c.Yaw)
	pitch := math.QuatFromAxisAngle(math.Vec3{X: 1}, c.Pitch)
	return yaw.Mul(pitch)
}

// Forward returns the view direction.
func (c *FPSCamera) Forward() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3{Z: -1})
}

// Right returns the camera's right direction.
func (c *FPSCamera) Right() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3{X: 1})
}

// Up returns the camera's up direction.
func (c *FPSCamera) Up() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3{Y: 1})
}

// ViewMatrix returns the world-to-view transform.
func (c *FPSCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), c.Up())
}

// ProjectionView returns the combined projection and view transform for the
// given framebuffer aspect ratio.
func (c *FPSCamera) ProjectionView(aspectRatio float32) math.Mat4 {
	projection := math.Perspective(c.FovY, aspectRatio, c.Near, c.Far)
	return projection.Mul(c.ViewMatrix())
}

// HandleMouse applies a relative mouse delta to yaw and pitch, clamping
// pitch so the view cannot flip.
func (c *FPSCamera) HandleMouse(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.MouseSensitivity
	c.Pitch -= deltaY * c.MouseSensitivity

	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// WalkDirections returns the forward and right directions projected onto the
// ground plane, for player movement independent of pitch.
func (c *FPSCamera) WalkDirections() (forward, right math.Vec3) {
	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	forward = math.Vec3{X: -sin, Z: -cos}
	right = math.Vec3{X: cos, Z: -sin}
	return forward, right
}

// PrimaryRay returns the world-space ray through pixel (px, py) of a
// width-by-height framebuffer, sampled at the pixel center.
func (c *FPSCamera) PrimaryRay(px, py uint32, width, height uint32) (origin, dir math.Vec3) {
	aspectRatio := float32(width) / float32(height)
	halfHeight := float32(gomath.Tan(float64(c.FovY) / 2))
	halfWidth := halfHeight * aspectRatio

	u := (2*(float32(px)+0.5)/float32(width) - 1) * halfWidth
	v := (1 - 2*(float32(py)+0.5)/float32(height)) * halfHeight

	dir = c.Rotation().Rotate(math.Vec3{X: u, Y: v, Z: -1}).Normalize()
	return c.Position, dir
}
