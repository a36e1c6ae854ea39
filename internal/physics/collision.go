package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

func component(v r3.Vec, axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

func withComponent(v r3.Vec, axis Axis, value float64) r3.Vec {
	switch axis {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

type AABB struct {
	Min r3.Vec
	Max r3.Vec
}

// BodyAABB is the axis aligned box around a capsule placed at pos.
func BodyAABB(pos r3.Vec, shape Capsule) AABB {
	center := r3.Add(pos, shape.Offset)
	half := r3.Vec{X: shape.Radius, Y: shape.Height / 2, Z: shape.Radius}
	return AABB{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		Min: r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)},
		Max: r3.Vec{X: float64(x + 1), Y: float64(y + 1), Z: float64(z + 1)},
	}
}

func (b AABB) Translate(d r3.Vec) AABB {
	return AABB{Min: r3.Add(b.Min, d), Max: r3.Add(b.Max, d)}
}

// Expand grows the box along d so it covers the whole sweep.
func (b AABB) Expand(d r3.Vec) AABB {
	out := b
	if d.X < 0 {
		out.Min.X += d.X
	} else {
		out.Max.X += d.X
	}
	if d.Y < 0 {
		out.Min.Y += d.Y
	} else {
		out.Max.Y += d.Y
	}
	if d.Z < 0 {
		out.Min.Z += d.Z
	} else {
		out.Max.Z += d.Z
	}
	return out
}

func intersects(a, b AABB) bool {
	return a.Min.X < b.Max.X-CollisionAxisTolerance &&
		a.Max.X > b.Min.X+CollisionAxisTolerance &&
		a.Min.Y < b.Max.Y-CollisionAxisTolerance &&
		a.Max.Y > b.Min.Y+CollisionAxisTolerance &&
		a.Min.Z < b.Max.Z-CollisionAxisTolerance &&
		a.Max.Z > b.Min.Z+CollisionAxisTolerance
}

// overlapsOff reports overlap on the two axes other than axis.
func overlapsOff(a, b AABB, axis Axis) bool {
	for _, other := range [...]Axis{AxisX, AxisY, AxisZ} {
		if other == axis {
			continue
		}
		if component(a.Min, other) >= component(b.Max, other)-CollisionAxisTolerance ||
			component(a.Max, other) <= component(b.Min, other)+CollisionAxisTolerance {
			return false
		}
	}
	return true
}

type obstacle struct {
	box AABB
	id  ColliderID
}

// solidBlocksIn lists the solid cells touching region.
func solidBlocksIn(region AABB, store BlockStore, out []obstacle) []obstacle {
	if store == nil {
		return out
	}
	minX := floorForMin(region.Min.X)
	maxX := floorForMax(region.Max.X)
	minY := floorForMin(region.Min.Y)
	maxY := floorForMax(region.Max.Y)
	minZ := floorForMin(region.Min.Z)
	maxZ := floorForMax(region.Max.Z)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if store.IsSolid(x, y, z) {
					out = append(out, obstacle{box: blockAABB(x, y, z), id: StaticCollider})
				}
			}
		}
	}
	return out
}

// CollidesWithBlock reports whether box overlaps any solid cell.
func CollidesWithBlock(box AABB, store BlockStore) bool {
	for _, ob := range solidBlocksIn(box, store, nil) {
		if intersects(box, ob.box) {
			return true
		}
	}
	return false
}

// sweepAxis returns how far box may travel along axis, at most delta, before
// touching an obstacle, and which obstacle stopped it.
func sweepAxis(box AABB, axis Axis, delta float64, obstacles []obstacle) (float64, ColliderID, bool) {
	if nearlyZero(delta) {
		return delta, 0, false
	}
	allowed := delta
	var hitID ColliderID
	hit := false
	for _, ob := range obstacles {
		if !overlapsOff(box, ob.box, axis) {
			continue
		}
		if delta > 0 {
			face := component(ob.box.Min, axis)
			edge := component(box.Max, axis)
			if face < edge-CollisionAxisTolerance {
				continue
			}
			if candidate := face - edge; candidate < allowed+CollisionAxisTolerance {
				allowed = math.Min(allowed, math.Max(candidate, 0))
				hitID, hit = ob.id, true
			}
		} else {
			face := component(ob.box.Max, axis)
			edge := component(box.Min, axis)
			if face > edge+CollisionAxisTolerance {
				continue
			}
			if candidate := face - edge; candidate > allowed-CollisionAxisTolerance {
				allowed = math.Max(allowed, math.Min(candidate, 0))
				hitID, hit = ob.id, true
			}
		}
	}
	return allowed, hitID, hit
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}
