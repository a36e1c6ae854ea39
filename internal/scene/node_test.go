package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func approxVec(t *testing.T, got, want r3.Vec, field string) {
	t.Helper()
	if r3.Norm(r3.Sub(got, want)) > 1e-9 {
		t.Fatalf("%s = %+v, want %+v", field, got, want)
	}
}

func TestGlobalPositionFollowsParentYaw(t *testing.T) {
	body := NewNode("Body")
	head := NewNode("Head")
	body.AddChild(head)
	body.SetPosition(r3.Vec{X: 10, Y: 0, Z: 5})
	head.SetPosition(r3.Vec{Y: 1.65, Z: -0.2})

	approxVec(t, head.GlobalPosition(), r3.Vec{X: 10, Y: 1.65, Z: 4.8}, "unrotated head")

	body.RotateY(math.Pi / 2)
	approxVec(t, head.GlobalPosition(), r3.Vec{X: 9.8, Y: 1.65, Z: 5}, "rotated head")
}

func TestCounterRotationKeepsGlobalYaw(t *testing.T) {
	body := NewNode("Body")
	head := NewNode("Head")
	body.AddChild(head)
	head.SetRotation(0, 0.8)
	before := head.GlobalYaw()

	body.RotateY(0.3)
	head.RotateY(-0.3)

	if math.Abs(head.GlobalYaw()-before) > 1e-12 {
		t.Fatalf("global yaw changed: before=%v after=%v", before, head.GlobalYaw())
	}
	if math.Abs(head.Yaw()-0.5) > 1e-12 {
		t.Fatalf("head local yaw = %v, want 0.5", head.Yaw())
	}
}

func TestRotateYWraps(t *testing.T) {
	n := NewNode("n")
	n.RotateY(3 * math.Pi / 2)
	if math.Abs(n.Yaw()+math.Pi/2) > 1e-12 {
		t.Fatalf("yaw = %v, want -pi/2", n.Yaw())
	}
}

func TestForwardAtZeroRotationIsNegativeZ(t *testing.T) {
	n := NewNode("n")
	approxVec(t, n.Forward(), r3.Vec{Z: -1}, "forward")
	n.SetRotation(math.Pi/2, 0)
	approxVec(t, n.Forward(), r3.Vec{Y: 1}, "pitched forward")
}

func TestFindByPath(t *testing.T) {
	root := NewNode("Player")
	body := NewNode("Coll_Body")
	head := NewNode("Coll_Head")
	camera := NewNode("Camera")
	root.AddChild(body)
	root.AddChild(head)
	head.AddChild(camera)

	if got := root.Find("Coll_Head/Camera"); got != camera {
		t.Fatalf("Find(Coll_Head/Camera) = %v", got)
	}
	if got := body.Find("../Coll_Head"); got != head {
		t.Fatalf("Find(../Coll_Head) = %v", got)
	}
	if got := root.Find("Missing"); got != nil {
		t.Fatalf("Find(Missing) = %v, want nil", got)
	}
}

func TestNilNodeIsInert(t *testing.T) {
	var n *Node
	n.RotateY(1)
	n.SetPosition(r3.Vec{X: 1})
	if n.Yaw() != 0 || n.Position() != (r3.Vec{}) || n.GlobalYaw() != 0 {
		t.Fatal("nil node should read as zero transform")
	}
}
