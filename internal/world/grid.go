package world

import (
	"sync"
)

type BlockPos struct {
	X int
	Y int
	Z int
}

// Grid is a sparse voxel store. It satisfies physics.BlockStore.
type Grid struct {
	mu    sync.RWMutex
	solid map[BlockPos]struct{}
}

func NewGrid() *Grid {
	return &Grid{solid: make(map[BlockPos]struct{})}
}

func (g *Grid) IsSolid(x, y, z int) bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	_, ok := g.solid[BlockPos{X: x, Y: y, Z: z}]
	g.mu.RUnlock()
	return ok
}

func (g *Grid) SetSolid(x, y, z int, solid bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := BlockPos{X: x, Y: y, Z: z}
	if solid {
		g.solid[pos] = struct{}{}
		return
	}
	delete(g.solid, pos)
}

// Fill marks every cell in the inclusive box between a and b solid.
func (g *Grid) Fill(a, b BlockPos) {
	minX, maxX := order(a.X, b.X)
	minY, maxY := order(a.Y, b.Y)
	minZ, maxZ := order(a.Z, b.Z)

	g.mu.Lock()
	defer g.mu.Unlock()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				g.solid[BlockPos{X: x, Y: y, Z: z}] = struct{}{}
			}
		}
	}
}

func (g *Grid) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.solid)
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
