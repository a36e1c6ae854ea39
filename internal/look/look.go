// Package look applies look deltas to the head pivot. Yaw is limited
// relative to the body so the head cannot twist past the neck limit; the
// stabilizer then pulls the body around behind it.
package look

import (
	"math"

	"github.com/Versifine/capsule/internal/input"
	"github.com/Versifine/capsule/internal/mathutil"
)

type Config struct {
	Sensitivity           float64 `yaml:"sensitivity"`
	MaxPitchDegrees       float64 `yaml:"max_pitch_degrees"`
	MaxRelativeYawDegrees float64 `yaml:"max_relative_yaw_degrees"`
}

func DefaultConfig() Config {
	return Config{
		Sensitivity:           0.002,
		MaxPitchDegrees:       89,
		MaxRelativeYawDegrees: 135,
	}
}

// Head is the pivot being aimed. Yaw is relative to the body.
type Head interface {
	Yaw() float64
	Pitch() float64
	SetRotation(pitch, yaw float64)
}

type Look struct {
	cfg    Config
	head   Head
	maxYaw float64
	maxPit float64
}

func New(head Head, cfg Config) *Look {
	return &Look{
		cfg:    cfg,
		head:   head,
		maxYaw: mathutil.DegToRad(cfg.MaxRelativeYawDegrees),
		maxPit: mathutil.DegToRad(cfg.MaxPitchDegrees),
	}
}

// Apply turns the head by a look delta in device units. Positive X looks
// right, positive Y looks down.
func (l *Look) Apply(delta input.Vec2) {
	if l == nil || l.head == nil || delta.IsZero() {
		return
	}
	if !finite(delta.X) || !finite(delta.Y) {
		return
	}
	yaw := l.head.Yaw() - delta.X*l.cfg.Sensitivity
	if l.maxYaw < math.Pi {
		yaw = mathutil.Clamp(yaw, -l.maxYaw, l.maxYaw)
	}
	pitch := mathutil.Clamp(l.head.Pitch()-delta.Y*l.cfg.Sensitivity, -l.maxPit, l.maxPit)
	l.head.SetRotation(pitch, yaw)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
