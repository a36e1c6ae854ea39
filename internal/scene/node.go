// Package scene is a minimal transform hierarchy: nodes carry a local
// position plus pitch/yaw, and resolve their global transform through their
// parents. Rotation is yaw-major, matching a first-person rig where the body
// only turns around the vertical axis and the head adds pitch.
package scene

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/capsule/internal/mathutil"
)

var up = r3.Vec{Y: 1}

type Node struct {
	name     string
	parent   *Node
	children []*Node
	position r3.Vec
	pitch    float64
	yaw      float64
}

func NewNode(name string) *Node {
	return &Node{name: name}
}

// AddChild reparents child under n.
func (n *Node) AddChild(child *Node) {
	if n == nil || child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Find resolves a slash separated path of child names relative to n.
// ".." walks to the parent.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, part := range strings.Split(path, "/") {
		if cur == nil {
			return nil
		}
		switch part {
		case "", ".":
			continue
		case "..":
			cur = cur.parent
			continue
		}
		var next *Node
		for _, c := range cur.children {
			if c.name == part {
				next = c
				break
			}
		}
		cur = next
	}
	return cur
}

func (n *Node) Position() r3.Vec {
	if n == nil {
		return r3.Vec{}
	}
	return n.position
}

func (n *Node) SetPosition(p r3.Vec) {
	if n == nil {
		return
	}
	n.position = p
}

// Yaw is the local rotation around the vertical axis in radians.
func (n *Node) Yaw() float64 {
	if n == nil {
		return 0
	}
	return n.yaw
}

func (n *Node) Pitch() float64 {
	if n == nil {
		return 0
	}
	return n.pitch
}

func (n *Node) SetRotation(pitch, yaw float64) {
	if n == nil {
		return
	}
	n.pitch = pitch
	n.yaw = mathutil.WrapAngle(yaw)
}

// RotateY turns the node around its local vertical axis.
func (n *Node) RotateY(delta float64) {
	if n == nil {
		return
	}
	n.yaw = mathutil.WrapAngle(n.yaw + delta)
}

func (n *Node) GlobalYaw() float64 {
	var yaw float64
	for cur := n; cur != nil; cur = cur.parent {
		yaw += cur.yaw
	}
	return mathutil.WrapAngle(yaw)
}

// Basis is the node's global yaw as a rotation.
func (n *Node) Basis() r3.Rotation {
	return r3.NewRotation(n.GlobalYaw(), up)
}

func (n *Node) GlobalPosition() r3.Vec {
	if n == nil {
		return r3.Vec{}
	}
	if n.parent == nil {
		return n.position
	}
	offset := n.parent.Basis().Rotate(n.position)
	return r3.Add(n.parent.GlobalPosition(), offset)
}

// Forward is the global look direction; -Z is forward at zero rotation.
func (n *Node) Forward() r3.Vec {
	var pitch float64
	if n != nil {
		pitch = n.pitch
	}
	local := r3.Vec{Y: math.Sin(pitch), Z: -math.Cos(pitch)}
	return n.Basis().Rotate(local)
}
