package physics

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

type body struct {
	position r3.Vec
	shape    Capsule
}

// World is a voxel reference implementation of SpaceQuerier and Mover. Static
// geometry comes from a BlockStore; dynamic bodies are boxes registered by id.
type World struct {
	mu     sync.RWMutex
	blocks BlockStore
	bodies map[ColliderID]body
}

func NewWorld(blocks BlockStore) *World {
	return &World{
		blocks: blocks,
		bodies: make(map[ColliderID]body),
	}
}

// SetBody registers or moves a dynamic body. StaticCollider is reserved.
func (w *World) SetBody(id ColliderID, pos r3.Vec, shape Capsule) error {
	if w == nil {
		return ErrWorldUnavailable
	}
	if id == StaticCollider {
		return fmt.Errorf("collider id %d is reserved for static geometry", id)
	}
	w.mu.Lock()
	w.bodies[id] = body{position: pos, shape: shape}
	w.mu.Unlock()
	return nil
}

func (w *World) RemoveBody(id ColliderID) {
	if w == nil {
		return
	}
	w.mu.Lock()
	delete(w.bodies, id)
	w.mu.Unlock()
}

func (w *World) IntersectRay(q RayQuery) (RayHit, bool, error) {
	if w == nil || w.blocks == nil {
		return RayHit{}, false, ErrWorldUnavailable
	}
	if !(q.MaxDistance > 0) || math.IsInf(q.MaxDistance, 0) || r3.Norm2(q.Direction) < CollisionAxisTolerance {
		return RayHit{}, false, nil
	}
	dir := r3.Unit(q.Direction)

	var best RayHit
	found := false
	if !q.excludes(StaticCollider) {
		best, found = castBlocks(q.Origin, dir, q.MaxDistance, w.blocks)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, b := range w.bodies {
		if q.excludes(id) {
			continue
		}
		t, normal, ok := castBox(q.Origin, dir, q.MaxDistance, BodyAABB(b.position, b.shape))
		if !ok || (found && t >= best.Distance) {
			continue
		}
		best = RayHit{
			Position: r3.Add(q.Origin, r3.Scale(t, dir)),
			Normal:   normal,
			Collider: id,
			Distance: t,
		}
		found = true
	}
	return best, found, nil
}

// MoveAndSlide sweeps the body by velocity*dt one axis at a time (Y, X, Z),
// zeroing the velocity on any blocked axis, then probes for ground.
func (w *World) MoveAndSlide(req MoveRequest) (MoveResult, error) {
	if w == nil || w.blocks == nil {
		return MoveResult{}, ErrWorldUnavailable
	}
	res := MoveResult{Position: req.Position, Velocity: req.Velocity}
	if req.DT <= 0 {
		res.Grounded = w.grounded(req.Body, req.Position, req.Shape)
		return res, nil
	}

	delta := r3.Scale(req.DT, req.Velocity)
	start := BodyAABB(req.Position, req.Shape)
	margin := r3.Vec{X: GroundProbeDistance, Y: GroundProbeDistance, Z: GroundProbeDistance}
	region := start.Expand(delta)
	region.Min = r3.Sub(region.Min, margin)
	region.Max = r3.Add(region.Max, margin)
	obstacles := w.obstaclesAround(req.Body, region)

	for _, axis := range [...]Axis{AxisY, AxisX, AxisZ} {
		want := component(delta, axis)
		box := BodyAABB(res.Position, req.Shape)
		allowed, id, hit := sweepAxis(box, axis, want, obstacles)
		res.Position = withComponent(res.Position, axis, component(res.Position, axis)+allowed)
		if hit {
			res.Velocity = withComponent(res.Velocity, axis, 0)
			sign := 1.0
			if want > 0 {
				sign = -1.0
			}
			res.Collisions = append(res.Collisions, Collision{
				Axis:     axis,
				Normal:   withComponent(r3.Vec{}, axis, sign),
				Collider: id,
			})
		}
	}
	zeroResidual(&res.Velocity)

	res.Grounded = w.grounded(req.Body, res.Position, req.Shape)

	w.mu.Lock()
	if _, ok := w.bodies[req.Body]; ok {
		w.bodies[req.Body] = body{position: res.Position, shape: req.Shape}
	}
	w.mu.Unlock()

	return res, nil
}

func (w *World) obstaclesAround(self ColliderID, region AABB) []obstacle {
	obstacles := solidBlocksIn(region, w.blocks, nil)
	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, b := range w.bodies {
		if id == self {
			continue
		}
		obstacles = append(obstacles, obstacle{box: BodyAABB(b.position, b.shape), id: id})
	}
	return obstacles
}

func (w *World) grounded(self ColliderID, pos r3.Vec, shape Capsule) bool {
	probe := BodyAABB(pos, shape).Translate(r3.Vec{Y: -GroundProbeDistance})
	for _, ob := range w.obstaclesAround(self, probe) {
		if intersects(probe, ob.box) {
			return true
		}
	}
	return false
}

func zeroResidual(v *r3.Vec) {
	if v.X > -MinimumResidualSpeed && v.X < MinimumResidualSpeed {
		v.X = 0
	}
	if v.Y > -MinimumResidualSpeed && v.Y < MinimumResidualSpeed {
		v.Y = 0
	}
	if v.Z > -MinimumResidualSpeed && v.Z < MinimumResidualSpeed {
		v.Z = 0
	}
}
