package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// castBlocks walks the voxel grid along the ray (Amanatides-Woo) and reports
// the first solid cell within maxDist. A ray starting inside a solid cell
// hits at distance zero.
func castBlocks(origin, dir r3.Vec, maxDist float64, store BlockStore) (RayHit, bool) {
	if store == nil {
		return RayHit{}, false
	}
	cell := [3]int{
		int(math.Floor(origin.X)),
		int(math.Floor(origin.Y)),
		int(math.Floor(origin.Z)),
	}
	if store.IsSolid(cell[0], cell[1], cell[2]) {
		return RayHit{Position: origin, Normal: r3.Scale(-1, dir), Collider: StaticCollider}, true
	}

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case d[i] > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - o[i]) / d[i]
			tDelta[i] = 1 / d[i]
		case d[i] < 0:
			step[i] = -1
			tMax[i] = (float64(cell[i]) - o[i]) / d[i]
			tDelta[i] = -1 / d[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t := tMax[axis]
		if t > maxDist {
			return RayHit{}, false
		}
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		if store.IsSolid(cell[0], cell[1], cell[2]) {
			var n [3]float64
			n[axis] = -float64(step[axis])
			return RayHit{
				Position: r3.Add(origin, r3.Scale(t, dir)),
				Normal:   r3.Vec{X: n[0], Y: n[1], Z: n[2]},
				Collider: StaticCollider,
				Distance: t,
			}, true
		}
	}
}

// castBox is the slab test of a ray against a box. Starting inside counts as
// a hit at distance zero.
func castBox(origin, dir r3.Vec, maxDist float64, box AABB) (float64, r3.Vec, bool) {
	tNear := 0.0
	tFar := maxDist
	var normal r3.Vec
	for _, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
		o := component(origin, axis)
		d := component(dir, axis)
		lo := component(box.Min, axis)
		hi := component(box.Max, axis)
		if math.Abs(d) < CollisionAxisTolerance {
			if o < lo || o > hi {
				return 0, r3.Vec{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tNear {
			tNear = t1
			normal = withComponent(r3.Vec{}, axis, sign)
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, r3.Vec{}, false
		}
	}
	if normal == (r3.Vec{}) {
		normal = r3.Scale(-1, dir)
	}
	return tNear, normal, true
}
