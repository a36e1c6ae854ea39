package behavior

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/input"
)

const minDirectionLength = 1e-6

var up = r3.Vec{Y: 1}

type MovementConfig struct {
	Speed       float64 `yaml:"speed"`
	SprintSpeed float64 `yaml:"sprint_speed"`
	CrouchSpeed float64 `yaml:"crouch_speed"`
}

func DefaultMovementConfig() MovementConfig {
	return MovementConfig{Speed: 10, SprintSpeed: 16, CrouchSpeed: 5}
}

// Movement turns the move vector into a desired horizontal velocity in the
// body's yaw frame. -Y on the stick is forward.
type Movement struct {
	cfg  MovementConfig
	body Body
}

func NewMovement(body Body, cfg MovementConfig) (*Movement, error) {
	if body == nil {
		return nil, ErrMissingBody
	}
	return &Movement{cfg: cfg, body: body}, nil
}

func (m *Movement) Name() string { return "movement" }

func (m *Movement) PhysicsTick(in input.Snapshot) {
	if in.Move.IsZero() {
		return
	}
	local := r3.Vec{X: in.Move.X, Z: in.Move.Y}
	dir := r3.NewRotation(m.body.Yaw(), up).Rotate(local)
	dir.Y = 0
	length := r3.Norm(dir)
	if length < minDirectionLength {
		return
	}
	dir = r3.Scale(1/length, dir)
	m.body.SetDesiredHorizontalVelocity(r3.Scale(m.speed(in), dir))
}

func (m *Movement) speed(in input.Snapshot) float64 {
	crouched := m.body.IsCrouched()
	switch {
	case in.SprintHeld && in.Forward() && m.body.IsGrounded() && !crouched:
		return m.cfg.SprintSpeed
	case crouched:
		return m.cfg.CrouchSpeed
	default:
		return m.cfg.Speed
	}
}
