package behavior

import "github.com/Versifine/capsule/internal/input"

type JumpConfig struct {
	Velocity float64 `yaml:"velocity"`
}

func DefaultJumpConfig() JumpConfig {
	return JumpConfig{Velocity: 8}
}

// Jump adds an upward impulse on the press edge while grounded and standing.
type Jump struct {
	cfg  JumpConfig
	body Body
}

func NewJump(body Body, cfg JumpConfig) (*Jump, error) {
	if body == nil {
		return nil, ErrMissingBody
	}
	return &Jump{cfg: cfg, body: body}, nil
}

func (j *Jump) Name() string { return "jump" }

func (j *Jump) PhysicsTick(in input.Snapshot) {
	if !in.JumpPressed || !j.body.IsGrounded() || j.body.IsCrouched() {
		return
	}
	j.body.AddVerticalImpulse(j.cfg.Velocity)
}
