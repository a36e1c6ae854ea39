// Package locomotion owns the physical state of a first-person capsule
// character and integrates the contributions of behavior modules into it
// once per physics tick.
package locomotion

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/contribution"
	"github.com/Versifine/capsule/internal/event"
	"github.com/Versifine/capsule/internal/mathutil"
	"github.com/Versifine/capsule/internal/physics"
	"github.com/Versifine/capsule/internal/scene"
)

var (
	ErrMissingShape = errors.New("missing capsule collision shape")
	ErrMissingHead  = errors.New("missing head transform")
	ErrMissingBody  = errors.New("missing body transform")
	ErrMissingMover = errors.New("missing physics mover")
)

var up = r3.Vec{Y: 1}

// State is the controller's physical state. State() hands out copies.
type State struct {
	Position          r3.Vec
	Velocity          r3.Vec
	Grounded          bool
	CurrentHalfHeight float64
	TargetCrouched    bool
	IsCrouched        bool
}

// Deps are the collaborators the controller drives. Space, Events and Logger
// are optional.
type Deps struct {
	ID     physics.ColliderID
	Space  physics.SpaceQuerier
	Mover  physics.Mover
	Body   *scene.Node
	Head   *scene.Node
	Shape  *physics.Capsule
	Events *event.Bus
	Logger *slog.Logger
}

type Controller struct {
	cfg    Config
	id     physics.ColliderID
	space  physics.SpaceQuerier
	mover  physics.Mover
	body   *scene.Node
	head   *scene.Node
	shape  *physics.Capsule
	events *event.Bus
	log    *slog.Logger

	bus             contribution.Bus
	state           State
	requestedCrouch bool
	err             error
}

// New builds a controller. Missing references or an invalid config are
// logged once and leave the controller degraded: Tick does nothing until
// Attach supplies what was missing.
func New(cfg Config, deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		cfg:    cfg,
		id:     deps.ID,
		space:  deps.Space,
		mover:  deps.Mover,
		body:   deps.Body,
		head:   deps.Head,
		shape:  deps.Shape,
		events: deps.Events,
		log:    log.With("component", "locomotion"),
	}
	c.state.CurrentHalfHeight = cfg.StandingHalfHeight
	c.state.Position = c.body.GlobalPosition()

	c.err = c.validate()
	if c.err != nil {
		c.log.Error("Controller misconfigured, ticks disabled", "error", c.err)
		return c
	}
	c.updateShape()
	return c
}

func (c *Controller) validate() error {
	var errs []error
	if err := c.cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.mover == nil {
		errs = append(errs, ErrMissingMover)
	}
	if c.body == nil {
		errs = append(errs, ErrMissingBody)
	}
	if c.shape == nil {
		errs = append(errs, ErrMissingShape)
	}
	if c.head == nil {
		errs = append(errs, ErrMissingHead)
	}
	return errors.Join(errs...)
}

// Err reports the configuration problem that keeps the controller idle.
func (c *Controller) Err() error {
	return c.err
}

func (c *Controller) Ready() bool {
	return c != nil && c.err == nil
}

// Attach binds late references. Nil arguments keep the current binding.
func (c *Controller) Attach(shape *physics.Capsule, head *scene.Node) error {
	if shape != nil {
		c.shape = shape
	}
	if head != nil {
		c.head = head
	}
	wasDegraded := c.err != nil
	c.err = c.validate()
	if c.err != nil {
		return c.err
	}
	if wasDegraded {
		c.log.Info("Controller references resolved")
	}
	c.updateShape()
	return nil
}

// Tick advances the controller by dt seconds. Contributions written since
// the previous tick are consumed and cleared.
func (c *Controller) Tick(dt float64) {
	if c == nil {
		return
	}
	defer c.bus.Reset()
	if c.err != nil || !(dt > 0) || math.IsInf(dt, 0) {
		return
	}

	c.resolveCrouch(dt)

	velocity := c.state.Velocity
	if !c.state.Grounded {
		velocity.Y -= c.cfg.Gravity * dt
	}
	if impulse := c.bus.PendingVerticalImpulse(); impulse != 0 {
		velocity.Y += impulse
		c.publish(event.EventImpulseApplied, event.ImpulseAppliedEvent{Impulse: impulse})
	}

	horizontal := mathutil.Horizontal(velocity)
	if c.bus.HasDesired() {
		accel := c.cfg.AirAcceleration
		if c.state.Grounded {
			accel = c.cfg.GroundAcceleration
		}
		horizontal = mathutil.MoveTowardVec(horizontal, c.bus.DesiredHorizontalVelocity(), accel*dt)
	} else {
		friction := c.cfg.AirFriction
		if c.state.Grounded {
			friction = c.cfg.GroundFriction
		}
		horizontal = mathutil.MoveTowardVec(horizontal, r3.Vec{}, friction*dt)
	}
	velocity.X = horizontal.X
	velocity.Z = horizontal.Z

	c.move(velocity, dt)
}

// resolveCrouch runs the crouch state machine and re-derives the capsule and
// eye height from the new half-height.
func (c *Controller) resolveCrouch(dt float64) {
	wasCrouched := c.state.IsCrouched
	c.state.TargetCrouched = c.requestedCrouch
	if !c.state.TargetCrouched && c.state.IsCrouched {
		if clearance, blocked := c.standObstructed(); blocked {
			c.state.TargetCrouched = true
			c.publish(event.EventStandBlocked, event.StandBlockedEvent{Clearance: clearance})
		}
	}

	target := c.cfg.StandingHalfHeight
	if c.state.TargetCrouched {
		target = c.cfg.CrouchHalfHeight
	}
	h := mathutil.MoveToward(c.state.CurrentHalfHeight, target, c.cfg.HeightChangeSpeed*dt)
	c.state.CurrentHalfHeight = mathutil.Clamp(h, c.cfg.CrouchHalfHeight, c.cfg.StandingHalfHeight)
	c.state.IsCrouched = c.state.CurrentHalfHeight < c.cfg.crouchMidpoint()
	c.updateShape()

	if c.state.IsCrouched != wasCrouched {
		c.publish(event.EventCrouchChanged, event.CrouchChangedEvent{
			Crouched:   c.state.IsCrouched,
			HalfHeight: c.state.CurrentHalfHeight,
		})
	}
}

// standObstructed casts upward from the top of the capsule by the height
// still missing to stand. Query failures count as clear.
func (c *Controller) standObstructed() (float64, bool) {
	if c.space == nil {
		return 0, false
	}
	missing := c.cfg.StandingHalfHeight - c.state.CurrentHalfHeight
	if missing <= 0 {
		return 0, false
	}
	top := r3.Add(c.state.Position, r3.Vec{Y: 2 * c.state.CurrentHalfHeight})
	hit, ok, err := c.space.IntersectRay(physics.RayQuery{
		Origin:      top,
		Direction:   up,
		MaxDistance: missing,
		Exclude:     []physics.ColliderID{c.id},
	})
	if err != nil {
		c.log.Debug("Stand-up ray failed, assuming clear", "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	return hit.Distance, true
}

func (c *Controller) updateShape() {
	h := c.state.CurrentHalfHeight
	if c.shape != nil {
		c.shape.Radius = c.cfg.Radius
		c.shape.Height = 2 * h
		c.shape.Offset = r3.Vec{Y: h}
	}
	if c.head != nil {
		c.head.SetPosition(r3.Vec{Y: 2*h - c.cfg.EyeOffsetFromTop})
	}
}

func (c *Controller) move(velocity r3.Vec, dt float64) {
	wasGrounded := c.state.Grounded
	res, err := c.mover.MoveAndSlide(physics.MoveRequest{
		Body:     c.id,
		Position: c.state.Position,
		Velocity: velocity,
		Shape:    *c.shape,
		DT:       dt,
	})
	if err != nil {
		// Unconstrained motion keeps the character responsive while the
		// world is unavailable; grounded keeps its last known value.
		c.log.Debug("Move failed, integrating without collision", "error", err)
		c.state.Position = r3.Add(c.state.Position, r3.Scale(dt, velocity))
		c.state.Velocity = velocity
	} else {
		c.state.Position = res.Position
		c.state.Velocity = res.Velocity
		c.state.Grounded = res.Grounded
	}
	c.body.SetPosition(c.state.Position)

	if c.state.Grounded && !wasGrounded {
		c.publish(event.EventLanded, event.LandedEvent{ImpactSpeed: math.Max(0, -velocity.Y)})
	}
}

func (c *Controller) publish(name string, evt any) {
	if c.events != nil {
		c.events.Publish(name, evt)
	}
}

// Teleport places the body at pos and clears its motion.
func (c *Controller) Teleport(pos r3.Vec) {
	c.state.Position = pos
	c.state.Velocity = r3.Vec{}
	c.state.Grounded = false
	c.bus.Reset()
	c.body.SetPosition(pos)
}

func (c *Controller) SetDesiredHorizontalVelocity(v r3.Vec) {
	c.bus.SetDesiredHorizontalVelocity(v)
}

func (c *Controller) AddVerticalImpulse(impulse float64) {
	c.bus.AddVerticalImpulse(impulse)
}

// SetCrouchTarget records the crouch intent for the next tick. Repeated
// identical calls have no further effect.
func (c *Controller) SetCrouchTarget(crouched bool) {
	c.requestedCrouch = crouched
}

// DesiredHorizontalVelocity exposes the pending contribution, mostly for
// diagnostics; it is cleared by every Tick.
func (c *Controller) DesiredHorizontalVelocity() r3.Vec {
	return c.bus.DesiredHorizontalVelocity()
}

func (c *Controller) PendingVerticalImpulse() float64 {
	return c.bus.PendingVerticalImpulse()
}

// Yaw is the body's rotation around the vertical axis.
func (c *Controller) Yaw() float64 {
	return c.body.Yaw()
}

func (c *Controller) RotateY(delta float64) {
	c.body.RotateY(delta)
}

func (c *Controller) IsGrounded() bool {
	return c.state.Grounded
}

func (c *Controller) IsCrouched() bool {
	return c.state.IsCrouched
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Config() Config {
	return c.cfg
}
