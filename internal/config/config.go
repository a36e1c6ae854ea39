// Package config loads the tunables for a run: embedded defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/capsule/internal/behavior"
	"github.com/Versifine/capsule/internal/curve"
	"github.com/Versifine/capsule/internal/locomotion"
	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/look"
	"github.com/Versifine/capsule/internal/stabilizer"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig           `yaml:"logging"`
	Controller locomotion.Config       `yaml:"controller"`
	Movement   behavior.MovementConfig `yaml:"movement"`
	Jump       behavior.JumpConfig     `yaml:"jump"`
	Stabilizer StabilizerConfig        `yaml:"stabilizer"`
	Look       look.Config             `yaml:"look"`
	Input      InputConfig             `yaml:"input"`
	Sim        SimConfig               `yaml:"sim"`
	World      WorldConfig             `yaml:"world"`

	Derived DerivedConfig `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type StabilizerConfig struct {
	stabilizer.Config `yaml:",inline"`
	ResponseCurve     *CurveConfig `yaml:"response_curve,omitempty"`
}

type CurveConfig struct {
	Kind   curve.Kind    `yaml:"kind"`
	Points []curve.Point `yaml:"points"`
}

// Build returns the configured curve, or nil when none is set.
func (c *CurveConfig) Build() (*curve.Curve, error) {
	if c == nil {
		return nil, nil
	}
	kind := c.Kind
	if kind == "" {
		kind = curve.KindLinear
	}
	return curve.New(c.Points, kind)
}

type InputConfig struct {
	MoveDeadzone float64 `yaml:"move_deadzone"`
}

type SimConfig struct {
	PhysicsHz   float64 `yaml:"physics_hz"`
	FrameHz     float64 `yaml:"frame_hz"`
	MaxSubsteps int     `yaml:"max_substeps"`
}

type WorldConfig struct {
	// Level is a level file path; empty selects the built-in course.
	Level string `yaml:"level"`
}

type DerivedConfig struct {
	PhysicsDT float64
	FrameDT   float64
}

type envOverrides struct {
	LogLevel  *string  `env:"CAPSULE_LOG_LEVEL"`
	LogFormat *string  `env:"CAPSULE_LOG_FORMAT"`
	PhysicsHz *float64 `env:"CAPSULE_PHYSICS_HZ"`
	Level     *string  `env:"CAPSULE_LEVEL"`
}

// Default is the embedded configuration.
func Default() (*Config, error) {
	return Load("")
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file overwrite the defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		c.Logging.Format = *o.LogFormat
	}
	if o.PhysicsHz != nil {
		c.Sim.PhysicsHz = *o.PhysicsHz
	}
	if o.Level != nil {
		c.World.Level = *o.Level
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.PhysicsDT = 1 / c.Sim.PhysicsHz
	c.Derived.FrameDT = 1 / c.Sim.FrameHz
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if !logger.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format %q is not one of console, text, json", c.Logging.Format))
	}
	if err := c.Controller.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("controller: %w", err))
	}
	if err := c.Stabilizer.Config.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("stabilizer: %w", err))
	}
	if _, err := c.Stabilizer.ResponseCurve.Build(); err != nil {
		errs = append(errs, fmt.Errorf("stabilizer.response_curve: %w", err))
	}
	if !(c.Movement.Speed >= 0) || !(c.Movement.SprintSpeed >= 0) || !(c.Movement.CrouchSpeed >= 0) {
		errs = append(errs, errors.New("movement speeds must not be negative"))
	}
	if !(c.Jump.Velocity >= 0) {
		errs = append(errs, errors.New("jump.velocity must not be negative"))
	}
	if !(c.Look.Sensitivity >= 0) || !(c.Look.MaxPitchDegrees >= 0 && c.Look.MaxPitchDegrees <= 90) {
		errs = append(errs, errors.New("look: sensitivity must not be negative and max_pitch_degrees must be in [0, 90]"))
	}
	if !(c.Input.MoveDeadzone >= 0 && c.Input.MoveDeadzone < 1) {
		errs = append(errs, fmt.Errorf("input.move_deadzone %v must be in [0, 1)", c.Input.MoveDeadzone))
	}
	if !(c.Sim.PhysicsHz > 0) {
		errs = append(errs, fmt.Errorf("sim.physics_hz %v must be positive", c.Sim.PhysicsHz))
	}
	if !(c.Sim.FrameHz > 0) {
		errs = append(errs, fmt.Errorf("sim.frame_hz %v must be positive", c.Sim.FrameHz))
	}
	if c.Sim.MaxSubsteps < 1 {
		errs = append(errs, fmt.Errorf("sim.max_substeps %d must be at least 1", c.Sim.MaxSubsteps))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// WriteYAML snapshots the effective configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) Bytes() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
