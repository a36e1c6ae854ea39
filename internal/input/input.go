// Package input turns raw held-state intents into per-tick snapshots. The
// snapshot is passed explicitly into every module tick so modules never
// poll global input state.
package input

import "math"

// DefaultMoveDeadzone mirrors the usual stick deadzone for action vectors.
const DefaultMoveDeadzone = 0.2

type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Intent is the raw state reported by an input device: held buttons plus the
// movement and look vectors for this tick. Move uses -Y as forward.
type Intent struct {
	Move   Vec2
	Look   Vec2
	Jump   bool
	Crouch bool
	Sprint bool
}

// Snapshot is what modules see for one tick.
type Snapshot struct {
	Move        Vec2
	Look        Vec2
	JumpPressed bool
	JumpHeld    bool
	CrouchHeld  bool
	SprintHeld  bool
}

// Forward reports whether the move vector has a forward component.
func (s Snapshot) Forward() bool {
	return s.Move.Y < 0
}

// Sampler holds the edge memory needed to derive "just pressed" flags. Each
// tick channel that needs edges owns its own Sampler.
type Sampler struct {
	Deadzone float64
	prevJump bool
}

func NewSampler(deadzone float64) *Sampler {
	if deadzone < 0 || deadzone >= 1 {
		deadzone = DefaultMoveDeadzone
	}
	return &Sampler{Deadzone: deadzone}
}

func (s *Sampler) Sample(in Intent) Snapshot {
	snap := Snapshot{
		Move:        s.shapeMove(in.Move),
		Look:        in.Look,
		JumpPressed: in.Jump && !s.prevJump,
		JumpHeld:    in.Jump,
		CrouchHeld:  in.Crouch,
		SprintHeld:  in.Sprint,
	}
	s.prevJump = in.Jump
	return snap
}

// shapeMove applies a radial deadzone and rescales the remainder so the
// output still spans [0, 1], then clamps the length to 1.
func (s *Sampler) shapeMove(v Vec2) Vec2 {
	if math.IsNaN(v.X) || math.IsNaN(v.Y) {
		return Vec2{}
	}
	length := v.Length()
	if length <= s.Deadzone || length == 0 {
		return Vec2{}
	}
	scaled := math.Min((length-s.Deadzone)/(1-s.Deadzone), 1)
	return Vec2{X: v.X / length * scaled, Y: v.Y / length * scaled}
}
