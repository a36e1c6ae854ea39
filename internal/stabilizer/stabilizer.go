// Package stabilizer lets the head pivot turn freely in yaw while the body
// chases it through a spring-damper. The head is counter-rotated by every
// body step, so its world yaw only changes when the look input moves it.
package stabilizer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Versifine/capsule/internal/curve"
	"github.com/Versifine/capsule/internal/mathutil"
)

const deadZoneDampingFactor = 3.0

var (
	ErrMissingBody   = errors.New("stabilizer requires a body")
	ErrMissingHead   = errors.New("stabilizer requires a head")
	ErrInvalidConfig = errors.New("invalid stabilizer config")
)

type Config struct {
	BaseStiffness      float64 `yaml:"base_stiffness"`
	Damping            float64 `yaml:"damping"`
	MaxAngularVelocity float64 `yaml:"max_angular_velocity"`
	DeadZoneDegrees    float64 `yaml:"dead_zone_degrees"`
}

func DefaultConfig() Config {
	return Config{
		BaseStiffness:      35,
		Damping:            22,
		MaxAngularVelocity: 12,
		DeadZoneDegrees:    8,
	}
}

func (c Config) Validate() error {
	switch {
	case !finite(c.BaseStiffness) || c.BaseStiffness < 0:
		return fmt.Errorf("%w: base_stiffness must be finite and not negative", ErrInvalidConfig)
	case !finite(c.Damping) || c.Damping < 0:
		return fmt.Errorf("%w: damping must be finite and not negative", ErrInvalidConfig)
	case !finite(c.MaxAngularVelocity) || c.MaxAngularVelocity <= 0:
		return fmt.Errorf("%w: max_angular_velocity must be finite and positive", ErrInvalidConfig)
	case !(c.DeadZoneDegrees >= 0 && c.DeadZoneDegrees < 180):
		return fmt.Errorf("%w: dead_zone_degrees must be in [0, 180)", ErrInvalidConfig)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Body is turned toward the head.
type Body interface {
	RotateY(delta float64)
}

// Head reports its yaw relative to the body and is counter-rotated.
type Head interface {
	Yaw() float64
	RotateY(delta float64)
}

type Deps struct {
	Body   Body
	Head   Head
	Curve  curve.Sampler
	Logger *slog.Logger
}

// Step describes one stabilizer tick.
type Step struct {
	Error           float64
	InDeadZone      bool
	Multiplier      float64
	Spring          float64
	DampingForce    float64
	AngularVelocity float64
	Rotation        float64
}

type Stabilizer struct {
	cfg      Config
	deadZone float64
	body     Body
	head     Head
	curve    curve.Sampler
	log      *slog.Logger

	angularVelocity float64
	err             error
}

// New wires a stabilizer. A missing body or head is logged once and turns
// every Tick into a no-op.
func New(cfg Config, deps Deps) *Stabilizer {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Stabilizer{
		cfg:      cfg,
		deadZone: mathutil.DegToRad(cfg.DeadZoneDegrees),
		body:     deps.Body,
		head:     deps.Head,
		curve:    deps.Curve,
		log:      log.With("component", "stabilizer"),
	}
	var errs []error
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.body == nil {
		errs = append(errs, ErrMissingBody)
	}
	if s.head == nil {
		errs = append(errs, ErrMissingHead)
	}
	s.err = errors.Join(errs...)
	if s.err != nil {
		s.log.Error("Stabilizer misconfigured, ticks disabled", "error", s.err)
	}
	return s
}

func (s *Stabilizer) Err() error {
	return s.err
}

func (s *Stabilizer) Ready() bool {
	return s != nil && s.err == nil
}

func (s *Stabilizer) AngularVelocity() float64 {
	return s.angularVelocity
}

// Reset drops any angular momentum, e.g. after a teleport.
func (s *Stabilizer) Reset() {
	s.angularVelocity = 0
}

// Multiplier samples the response curve at |err|/Pi.
func (s *Stabilizer) Multiplier(err float64) float64 {
	if s.curve == nil {
		return 1.0
	}
	return s.curve.Sample(mathutil.Clamp(math.Abs(err)/math.Pi, 0, 1))
}

// SpringForce is the restoring term for err at the given curve multiplier.
func (s *Stabilizer) SpringForce(err, multiplier float64) float64 {
	return err * s.cfg.BaseStiffness * multiplier
}

// Tick advances the spring-damper by dt seconds.
func (s *Stabilizer) Tick(dt float64) Step {
	if !s.Ready() {
		return Step{}
	}
	err := mathutil.WrapAngle(s.head.Yaw())
	step := Step{Error: err, AngularVelocity: s.angularVelocity}
	if !(dt > 0) || math.IsInf(dt, 0) || !finite(err) {
		return step
	}

	if math.Abs(err) <= s.deadZone {
		s.angularVelocity = mathutil.MoveToward(s.angularVelocity, 0, s.cfg.Damping*deadZoneDampingFactor*dt)
		step.InDeadZone = true
		step.AngularVelocity = s.angularVelocity
		return step
	}

	step.Multiplier = s.Multiplier(err)
	step.Spring = s.SpringForce(err, step.Multiplier)
	step.DampingForce = s.angularVelocity * s.cfg.Damping

	s.angularVelocity += (step.Spring - step.DampingForce) * dt
	s.angularVelocity = mathutil.Clamp(s.angularVelocity, -s.cfg.MaxAngularVelocity, s.cfg.MaxAngularVelocity)

	step.AngularVelocity = s.angularVelocity
	step.Rotation = s.angularVelocity * dt
	s.body.RotateY(step.Rotation)
	s.head.RotateY(-step.Rotation)
	return step
}
