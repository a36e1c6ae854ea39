// Package mathutil holds the small step-limited helpers shared by the
// locomotion controller and the head stabilizer.
package mathutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

// MoveToward steps current toward target by at most maxStep and never past it.
// A non-positive maxStep leaves current unchanged.
func MoveToward(current, target, maxStep float64) float64 {
	if maxStep <= 0 {
		return current
	}
	delta := target - current
	if math.Abs(delta) <= maxStep {
		return target
	}
	return current + math.Copysign(maxStep, delta)
}

// MoveTowardVec is MoveToward for vectors: the step is limited by length.
func MoveTowardVec(current, target r3.Vec, maxStep float64) r3.Vec {
	if maxStep <= 0 {
		return current
	}
	delta := r3.Sub(target, current)
	dist := r3.Norm(delta)
	if dist <= maxStep || dist < epsilon {
		return target
	}
	return r3.Add(current, r3.Scale(maxStep/dist, delta))
}

// WrapAngle maps radians into [-Pi, Pi].
func WrapAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Horizontal drops the vertical component.
func Horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}
