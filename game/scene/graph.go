// Package scene is a minimal transform hierarchy with handle-based access.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kasuganosora/botbrain/game/anim"
)

// Handle references a node in a Graph.
type Handle int

// NoNode is the zero reference.
const NoNode Handle = -1

var (
	forward = mgl64.Vec3{0, 0, 1}
	up      = mgl64.Vec3{0, 1, 0}
)

// Node is a transform with an optional parent.
type Node struct {
	Name          string
	Parent        Handle
	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
	Velocity      mgl64.Vec3
	Bones         map[string]anim.Transform
}

// Graph owns every node of a level.
type Graph struct {
	nodes []*Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add creates a node under parent (NoNode for a root) at a local position.
func (g *Graph) Add(name string, parent Handle, pos mgl64.Vec3) Handle {
	g.nodes = append(g.nodes, &Node{
		Name:          name,
		Parent:        parent,
		LocalPosition: pos,
		LocalRotation: mgl64.QuatIdent(),
	})
	return Handle(len(g.nodes) - 1)
}

// Node returns the node at h or nil.
func (g *Graph) Node(h Handle) *Node {
	if h < 0 || int(h) >= len(g.nodes) {
		return nil
	}
	return g.nodes[h]
}

// Exists reports whether h refers to a live node.
func (g *Graph) Exists(h Handle) bool { return g.Node(h) != nil }

// Remove deletes h and all of its descendants.
func (g *Graph) Remove(h Handle) {
	if !g.Exists(h) {
		return
	}
	g.nodes[h] = nil
	for i, n := range g.nodes {
		if n != nil && n.Parent == h {
			g.Remove(Handle(i))
		}
	}
}

// Position returns the world position of h.
func (g *Graph) Position(h Handle) mgl64.Vec3 {
	n := g.Node(h)
	if n == nil {
		return mgl64.Vec3{}
	}
	if !g.Exists(n.Parent) {
		return n.LocalPosition
	}
	return g.Position(n.Parent).Add(g.Rotation(n.Parent).Rotate(n.LocalPosition))
}

// Rotation returns the world rotation of h.
func (g *Graph) Rotation(h Handle) mgl64.Quat {
	n := g.Node(h)
	if n == nil {
		return mgl64.QuatIdent()
	}
	if !g.Exists(n.Parent) {
		return n.LocalRotation
	}
	return g.Rotation(n.Parent).Mul(n.LocalRotation)
}

// LookVector returns the world forward (+Z) axis of h.
func (g *Graph) LookVector(h Handle) mgl64.Vec3 {
	return g.Rotation(h).Rotate(forward)
}

// UpVector returns the world up (+Y) axis of h.
func (g *Graph) UpVector(h Handle) mgl64.Vec3 {
	return g.Rotation(h).Rotate(up)
}

// SetPosition sets the local position of h.
func (g *Graph) SetPosition(h Handle, pos mgl64.Vec3) {
	if n := g.Node(h); n != nil {
		n.LocalPosition = pos
	}
}

// SetRotation sets the local rotation of h.
func (g *Graph) SetRotation(h Handle, q mgl64.Quat) {
	if n := g.Node(h); n != nil {
		n.LocalRotation = q.Normalize()
	}
}

// LinearVelocity returns the velocity of h.
func (g *Graph) LinearVelocity(h Handle) mgl64.Vec3 {
	if n := g.Node(h); n != nil {
		return n.Velocity
	}
	return mgl64.Vec3{}
}

// SetLinearVelocity sets the velocity of h.
func (g *Graph) SetLinearVelocity(h Handle, v mgl64.Vec3) {
	if n := g.Node(h); n != nil {
		n.Velocity = v
	}
}

// Integrate moves every node by its velocity over dt.
func (g *Graph) Integrate(dt float64) {
	for _, n := range g.nodes {
		if n != nil && n.Velocity != (mgl64.Vec3{}) {
			n.LocalPosition = n.LocalPosition.Add(n.Velocity.Mul(dt))
		}
	}
}

// Skeleton returns a pose sink writing into the bones of h.
func (g *Graph) Skeleton(h Handle) anim.Skeleton {
	return skeleton{g: g, h: h}
}

type skeleton struct {
	g *Graph
	h Handle
}

func (s skeleton) SetLocalTransform(bone string, t anim.Transform) {
	n := s.g.Node(s.h)
	if n == nil {
		return
	}
	if n.Bones == nil {
		n.Bones = make(map[string]anim.Transform)
	}
	n.Bones[bone] = t
}
