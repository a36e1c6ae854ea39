// Package physics defines the narrow physics-world contract the locomotion
// core consumes (ray queries and move-and-slide) together with a voxel
// reference world that implements it.
package physics

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrWorldUnavailable is returned when a query cannot be answered at all.
// Callers treat it as "no obstruction" rather than stopping the character.
var ErrWorldUnavailable = errors.New("physics world unavailable")

// ColliderID identifies a collision object. StaticCollider is the block grid.
type ColliderID uint32

const StaticCollider ColliderID = 0

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type RayQuery struct {
	Origin      r3.Vec
	Direction   r3.Vec
	MaxDistance float64
	Exclude     []ColliderID
}

func (q RayQuery) excludes(id ColliderID) bool {
	for _, ex := range q.Exclude {
		if ex == id {
			return true
		}
	}
	return false
}

type RayHit struct {
	Position r3.Vec
	Normal   r3.Vec
	Collider ColliderID
	Distance float64
}

// SpaceQuerier answers ray queries against the world.
type SpaceQuerier interface {
	IntersectRay(q RayQuery) (RayHit, bool, error)
}

// Capsule is the body collision volume. Height is the full height, Offset
// places the capsule center relative to the body origin (the feet).
type Capsule struct {
	Radius float64
	Height float64
	Offset r3.Vec
}

type MoveRequest struct {
	Body     ColliderID
	Position r3.Vec
	Velocity r3.Vec
	Shape    Capsule
	DT       float64
}

// Collision is one blocked axis from a slide.
type Collision struct {
	Axis     Axis
	Normal   r3.Vec
	Collider ColliderID
}

type MoveResult struct {
	Position   r3.Vec
	Velocity   r3.Vec
	Grounded   bool
	Collisions []Collision
}

// Mover moves a body through the world with sliding collision response.
type Mover interface {
	MoveAndSlide(req MoveRequest) (MoveResult, error)
}
