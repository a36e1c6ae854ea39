package locomotion

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid locomotion config")

// Config holds the controller tunables. Rates are per second.
type Config struct {
	Gravity            float64 `yaml:"gravity"`
	GroundAcceleration float64 `yaml:"ground_acceleration"`
	AirAcceleration    float64 `yaml:"air_acceleration"`
	GroundFriction     float64 `yaml:"ground_friction"`
	AirFriction        float64 `yaml:"air_friction"`

	StandingHalfHeight float64 `yaml:"standing_half_height"`
	CrouchHalfHeight   float64 `yaml:"crouch_half_height"`
	HeightChangeSpeed  float64 `yaml:"height_change_speed"`
	EyeOffsetFromTop   float64 `yaml:"eye_offset_from_top"`
	Radius             float64 `yaml:"radius"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:            20,
		GroundAcceleration: 25,
		AirAcceleration:    10,
		GroundFriction:     30,
		AirFriction:        5,
		StandingHalfHeight: 0.9,
		CrouchHalfHeight:   0.5,
		HeightChangeSpeed:  15,
		EyeOffsetFromTop:   0.15,
		Radius:             0.3,
	}
}

func (c Config) Validate() error {
	var errs []error
	if !positive(c.CrouchHalfHeight) {
		errs = append(errs, fmt.Errorf("crouch_half_height must be positive, got %v", c.CrouchHalfHeight))
	}
	if !(c.StandingHalfHeight >= c.CrouchHalfHeight) || math.IsInf(c.StandingHalfHeight, 0) {
		errs = append(errs, fmt.Errorf("standing_half_height %v is below crouch_half_height %v", c.StandingHalfHeight, c.CrouchHalfHeight))
	}
	if !positive(c.Radius) {
		errs = append(errs, fmt.Errorf("radius must be positive, got %v", c.Radius))
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"gravity", c.Gravity},
		{"ground_acceleration", c.GroundAcceleration},
		{"air_acceleration", c.AirAcceleration},
		{"ground_friction", c.GroundFriction},
		{"air_friction", c.AirFriction},
		{"height_change_speed", c.HeightChangeSpeed},
		{"eye_offset_from_top", c.EyeOffsetFromTop},
	}
	for _, r := range rates {
		if !nonNegative(r.value) {
			errs = append(errs, fmt.Errorf("%s must be finite and not negative, got %v", r.name, r.value))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// crouchMidpoint is the half-height below which the body reads as crouched.
func (c Config) crouchMidpoint() float64 {
	return (c.StandingHalfHeight + c.CrouchHalfHeight) * 0.5
}

// nonNegative is false for NaN and infinities.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
