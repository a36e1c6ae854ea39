// Package contribution holds the per-tick accumulator that behavior modules
// write their desired motion into and the locomotion controller drains.
package contribution

import "gonum.org/v1/gonum/spatial/r3"

// MinDesiredSpeedSquared is the squared horizontal speed below which a
// desired velocity counts as "no input" and friction applies instead.
const MinDesiredSpeedSquared = 0.001

// Bus is written by producers during a physics tick and reset by its single
// consumer at the end of that tick. It is not safe for concurrent writers.
type Bus struct {
	desired r3.Vec
	impulse float64
}

// SetDesiredHorizontalVelocity replaces the desired velocity. Only one
// movement source is expected per tick, so the last writer wins. The
// vertical component is discarded.
func (b *Bus) SetDesiredHorizontalVelocity(v r3.Vec) {
	b.desired = r3.Vec{X: v.X, Z: v.Z}
}

// AddVerticalImpulse accumulates a vertical velocity delta. Impulses from
// several sources in the same tick sum.
func (b *Bus) AddVerticalImpulse(impulse float64) {
	b.impulse += impulse
}

func (b *Bus) DesiredHorizontalVelocity() r3.Vec {
	return b.desired
}

// HasDesired reports whether the desired velocity is large enough to drive
// acceleration rather than friction.
func (b *Bus) HasDesired() bool {
	return r3.Norm2(b.desired) > MinDesiredSpeedSquared
}

func (b *Bus) PendingVerticalImpulse() float64 {
	return b.impulse
}

func (b *Bus) Reset() {
	b.desired = r3.Vec{}
	b.impulse = 0
}
