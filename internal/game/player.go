package game

import (
	"github.com/hollowpoint-games/hollowpoint/internal/engine/camera"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// MoveCommand is one frame of movement intent, decoupled from the input
// backend so the controller can be driven directly in tests.
type MoveCommand struct {
	Forward float32 // -1..1, positive walks toward the view direction
	Strafe  float32 // -1..1, positive strafes right
	Sprint  bool
}

// Player is the ground-bound first-person controller. It owns the feet
// position; the camera sits EyeHeight above it.
type Player struct {
	Position  math.Vec3
	EyeHeight float32

	WalkSpeed   float32
	SprintSpeed float32

	// WalkExtent clamps |x| and |z| so the player stays inside the arena.
	// Zero disables clamping.
	WalkExtent float32
}

// NewPlayer creates a player standing at the given feet position.
func NewPlayer(position math.Vec3, eyeHeight float32) *Player {
	return &Player{
		Position:    position,
		EyeHeight:   eyeHeight,
		WalkSpeed:   5,
		SprintSpeed: 9,
	}
}

// Update advances the player by one frame of movement. The walk directions
// come from the camera's yaw only, so looking up or down never changes the
// walking speed.
func (p *Player) Update(cam *camera.FPSCamera, cmd MoveCommand, dt float32) {
	forward, right := cam.WalkDirections()

	move := forward.Scale(cmd.Forward).Add(right.Scale(cmd.Strafe))
	if lenSq := move.LengthSq(); lenSq > 1 {
		move = move.Normalize()
	}

	speed := p.WalkSpeed
	if cmd.Sprint {
		speed = p.SprintSpeed
	}
	p.Position = p.Position.Add(move.Scale(speed * dt))

	if p.WalkExtent > 0 {
		p.Position.X = clamp(p.Position.X, -p.WalkExtent, p.WalkExtent)
		p.Position.Z = clamp(p.Position.Z, -p.WalkExtent, p.WalkExtent)
	}

	cam.Position = p.EyePosition()
}

// EyePosition returns the camera position for the current feet position.
func (p *Player) EyePosition() math.Vec3 {
	return p.Position.Add(math.Vec3{Y: p.EyeHeight})
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
