package behavior

import "github.com/Versifine/capsule/internal/input"

// Crouch forwards the held crouch intent every tick.
type Crouch struct {
	body Body
}

func NewCrouch(body Body) (*Crouch, error) {
	if body == nil {
		return nil, ErrMissingBody
	}
	return &Crouch{body: body}, nil
}

func (c *Crouch) Name() string { return "crouch" }

func (c *Crouch) PhysicsTick(in input.Snapshot) {
	c.body.SetCrouchTarget(in.CrouchHeld)
}
