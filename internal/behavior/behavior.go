// Package behavior holds the producer modules that translate an input
// snapshot into contributions for the locomotion controller. Modules keep no
// state beyond their tunables; edge detection lives in the input sampler.
package behavior

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/input"
)

var ErrMissingBody = errors.New("behavior module requires a body")

// Body is the controller surface modules push into. Only the grounded and
// crouched flags are read back.
type Body interface {
	SetDesiredHorizontalVelocity(v r3.Vec)
	AddVerticalImpulse(impulse float64)
	SetCrouchTarget(crouched bool)
	Yaw() float64
	IsGrounded() bool
	IsCrouched() bool
}

// Module runs once per physics tick, before the controller integrates.
type Module interface {
	Name() string
	PhysicsTick(in input.Snapshot)
}

// Set runs modules in registration order.
type Set struct {
	modules []Module
}

func NewSet(modules ...Module) *Set {
	s := &Set{}
	for _, m := range modules {
		s.Add(m)
	}
	return s
}

func (s *Set) Add(m Module) {
	if m == nil {
		return
	}
	s.modules = append(s.modules, m)
}

func (s *Set) PhysicsTick(in input.Snapshot) {
	for _, m := range s.modules {
		m.PhysicsTick(in)
	}
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.modules))
	for _, m := range s.modules {
		names = append(names, m.Name())
	}
	return names
}
