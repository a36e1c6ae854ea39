// Package sim composes the locomotion core into a runnable character and
// drives it on two tick channels: a fixed-rate physics channel and a
// variable-rate frame channel that runs after the physics ticks of a frame.
package sim

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/behavior"
	"github.com/Versifine/capsule/internal/config"
	"github.com/Versifine/capsule/internal/event"
	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/locomotion"
	"github.com/Versifine/capsule/internal/look"
	"github.com/Versifine/capsule/internal/physics"
	"github.com/Versifine/capsule/internal/scene"
	"github.com/Versifine/capsule/internal/stabilizer"
	"github.com/Versifine/capsule/internal/world"
)

// PlayerID is the collider id of the simulated character.
const PlayerID physics.ColliderID = 1

// Rig is one character wired into one world.
type Rig struct {
	Level      *world.Level
	World      *physics.World
	Body       *scene.Node
	Head       *scene.Node
	Shape      *physics.Capsule
	Controller *locomotion.Controller
	Modules    *behavior.Set
	Stabilizer *stabilizer.Stabilizer
	Look       *look.Look
	Events     *event.Bus

	sampler *input.Sampler
	log     *slog.Logger
}

// Status is a read-only view for consoles and traces.
type Status struct {
	Position        r3.Vec
	Velocity        r3.Vec
	Grounded        bool
	Crouched        bool
	TargetCrouched  bool
	HalfHeight      float64
	BodyYaw         float64
	HeadYaw         float64
	HeadPitch       float64
	AngularVelocity float64
}

func NewRig(cfg *config.Config, level *world.Level, log *slog.Logger) (*Rig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rig: nil config")
	}
	if level == nil {
		return nil, fmt.Errorf("rig: nil level")
	}
	if log == nil {
		log = slog.Default()
	}

	r := &Rig{
		Level:   level,
		World:   physics.NewWorld(level.Grid),
		Body:    scene.NewNode("body"),
		Head:    scene.NewNode("head"),
		Shape:   &physics.Capsule{},
		Events:  event.NewBus(),
		sampler: input.NewSampler(cfg.Input.MoveDeadzone),
		log:     log.With("component", "rig"),
	}
	r.Body.AddChild(r.Head)
	r.Body.SetPosition(level.Spawn)

	r.Controller = locomotion.New(cfg.Controller, locomotion.Deps{
		ID:     PlayerID,
		Space:  r.World,
		Mover:  r.World,
		Body:   r.Body,
		Head:   r.Head,
		Shape:  r.Shape,
		Events: r.Events,
		Logger: log,
	})
	if err := r.Controller.Err(); err != nil {
		return nil, fmt.Errorf("rig: controller: %w", err)
	}
	if err := r.World.SetBody(PlayerID, level.Spawn, *r.Shape); err != nil {
		return nil, fmt.Errorf("rig: register body: %w", err)
	}

	movement, err := behavior.NewMovement(r.Controller, cfg.Movement)
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	jump, err := behavior.NewJump(r.Controller, cfg.Jump)
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	crouch, err := behavior.NewCrouch(r.Controller)
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	r.Modules = behavior.NewSet(movement, jump, crouch)

	responseCurve, err := cfg.Stabilizer.ResponseCurve.Build()
	if err != nil {
		return nil, fmt.Errorf("rig: response curve: %w", err)
	}
	deps := stabilizer.Deps{Body: r.Controller, Head: r.Head, Logger: log}
	if responseCurve != nil {
		deps.Curve = responseCurve
	}
	r.Stabilizer = stabilizer.New(cfg.Stabilizer.Config, deps)
	if err := r.Stabilizer.Err(); err != nil {
		return nil, fmt.Errorf("rig: stabilizer: %w", err)
	}
	r.Look = look.New(r.Head, cfg.Look)

	r.log.Debug("Rig ready", "level", level.Name, "spawn", level.Spawn, "modules", r.Modules.Names())
	return r, nil
}

// Sample converts a raw intent into the snapshot for the next physics tick.
func (r *Rig) Sample(in input.Intent) input.Snapshot {
	return r.sampler.Sample(in)
}

// PhysicsStep runs the modules, then the controller, then the fall check.
func (r *Rig) PhysicsStep(in input.Snapshot, dt float64) {
	r.Modules.PhysicsTick(in)
	r.Controller.Tick(dt)
	if r.Level.Bounds.OutOfWorld(r.Controller.State().Position.Y) {
		r.Respawn()
	}
}

// FrameStep applies the look delta and advances the stabilizer.
func (r *Rig) FrameStep(lookDelta input.Vec2, dt float64) stabilizer.Step {
	r.Look.Apply(lookDelta)
	return r.Stabilizer.Tick(dt)
}

// Teleport moves the character and its collider to pos with no velocity.
func (r *Rig) Teleport(pos r3.Vec) {
	r.Controller.Teleport(pos)
	r.Stabilizer.Reset()
	if err := r.World.SetBody(PlayerID, pos, *r.Shape); err != nil {
		r.log.Warn("Failed to move collider", "error", err)
	}
}

// Respawn returns the character to the level spawn facing its current way.
func (r *Rig) Respawn() {
	spawn := r.Level.Spawn
	r.Teleport(spawn)
	r.log.Info("Respawned", "x", spawn.X, "y", spawn.Y, "z", spawn.Z)
	r.Events.Publish(event.EventRespawned, event.RespawnedEvent{X: spawn.X, Y: spawn.Y, Z: spawn.Z})
}

// SetBodyYaw turns the body to an absolute yaw; the head keeps its
// relative yaw.
func (r *Rig) SetBodyYaw(yaw float64) {
	r.Body.SetRotation(r.Body.Pitch(), yaw)
}

// SetHeadYaw sets the head yaw relative to the body.
func (r *Rig) SetHeadYaw(yaw float64) {
	r.Head.SetRotation(r.Head.Pitch(), yaw)
}

func (r *Rig) Status() Status {
	st := r.Controller.State()
	return Status{
		Position:        st.Position,
		Velocity:        st.Velocity,
		Grounded:        st.Grounded,
		Crouched:        st.IsCrouched,
		TargetCrouched:  st.TargetCrouched,
		HalfHeight:      st.CurrentHalfHeight,
		BodyYaw:         r.Body.Yaw(),
		HeadYaw:         r.Head.Yaw(),
		HeadPitch:       r.Head.Pitch(),
		AngularVelocity: r.Stabilizer.AngularVelocity(),
	}
}
