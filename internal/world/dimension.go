package world

// Bounds is the vertical extent of a level. A body whose feet drop below
// MinY has fallen out of the world.
type Bounds struct {
	MinY   int
	Height int
}

func (b Bounds) MaxY() int {
	return b.MinY + b.Height
}

// OutOfWorld reports whether y lies below the level floor.
func (b Bounds) OutOfWorld(y float64) bool {
	return y < float64(b.MinY)
}
