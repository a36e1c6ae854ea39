package world

import "testing"

func TestBoundsOutOfWorld(t *testing.T) {
	b := Bounds{MinY: -16, Height: 64}
	if b.MaxY() != 48 {
		t.Fatalf("MaxY = %d, want 48", b.MaxY())
	}
	if b.OutOfWorld(-15.9) {
		t.Fatal("y=-15.9 is inside the level")
	}
	if !b.OutOfWorld(-16.1) {
		t.Fatal("y=-16.1 is below the level floor")
	}
}
