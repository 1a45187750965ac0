// Package physics answers ray queries against actor capsules and static level
// geometry. Queries run on the horizontal XZ plane through chipmunk; heights
// are interpolated along the ray.
package physics

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// ColliderHandle references a collider in a World.
type ColliderHandle int

// NoCollider is the zero reference.
const NoCollider ColliderHandle = -1

// ShapeKind distinguishes actor capsules from level geometry.
type ShapeKind uint8

const (
	ShapeCapsule ShapeKind = iota
	ShapeStatic
)

func (k ShapeKind) String() string {
	if k == ShapeCapsule {
		return "capsule"
	}
	return "static"
}

// Ray is a segment query. Filter, when set, skips colliders it rejects.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	MaxLen    float64
	Filter    func(ColliderHandle) bool
}

// Intersection is one ray hit.
type Intersection struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Collider ColliderHandle
	Kind     ShapeKind
	Toi      float64
}

type collider struct {
	kind  ShapeKind
	body  *cp.Body
	shape *cp.Shape
}

// World owns the chipmunk space.
type World struct {
	space     *cp.Space
	colliders []*collider
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{space: cp.NewSpace()}
}

func flat(v mgl64.Vec3) cp.Vector { return cp.Vector{X: v.X(), Y: v.Z()} }

func (w *World) add(c *collider) ColliderHandle {
	h := ColliderHandle(len(w.colliders))
	c.shape.UserData = h
	w.colliders = append(w.colliders, c)
	return h
}

// AddCapsule adds an upright actor capsule of the given radius at pos.
func (w *World) AddCapsule(pos mgl64.Vec3, radius float64) ColliderHandle {
	body := cp.NewKinematicBody()
	body.SetPosition(flat(pos))
	w.space.AddBody(body)
	shape := cp.NewCircle(body, radius, cp.Vector{})
	w.space.AddShape(shape)
	return w.add(&collider{kind: ShapeCapsule, body: body, shape: shape})
}

// AddWall adds a static wall segment from a to b.
func (w *World) AddWall(a, b mgl64.Vec3, thickness float64) ColliderHandle {
	shape := cp.NewSegment(w.space.StaticBody, flat(a), flat(b), thickness/2)
	w.space.AddShape(shape)
	return w.add(&collider{kind: ShapeStatic, shape: shape})
}

// Kind returns the shape kind of h.
func (w *World) Kind(h ColliderHandle) (ShapeKind, bool) {
	c := w.get(h)
	if c == nil {
		return 0, false
	}
	return c.kind, true
}

func (w *World) get(h ColliderHandle) *collider {
	if h < 0 || int(h) >= len(w.colliders) {
		return nil
	}
	return w.colliders[h]
}

// MoveCapsule repositions a capsule.
func (w *World) MoveCapsule(h ColliderHandle, pos mgl64.Vec3) {
	c := w.get(h)
	if c == nil || c.body == nil {
		return
	}
	c.body.SetPosition(flat(pos))
	w.space.ReindexShapesForBody(c.body)
}

// Remove deletes a collider.
func (w *World) Remove(h ColliderHandle) {
	c := w.get(h)
	if c == nil {
		return
	}
	w.space.RemoveShape(c.shape)
	if c.body != nil {
		w.space.RemoveBody(c.body)
	}
	w.colliders[h] = nil
}

// CastRay returns every hit along the ray ordered by distance.
func (w *World) CastRay(r Ray) []Intersection {
	dir := r.Direction
	if dir.Len() == 0 || r.MaxLen <= 0 {
		return nil
	}
	dir = dir.Normalize()
	end := r.Origin.Add(dir.Mul(r.MaxLen))
	if flat(end).Sub(flat(r.Origin)).Length() == 0 {
		return nil
	}

	var hits []Intersection
	w.space.SegmentQuery(flat(r.Origin), flat(end), 0, cp.SHAPE_FILTER_ALL,
		func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
			h, ok := shape.UserData.(ColliderHandle)
			if !ok {
				return
			}
			if r.Filter != nil && !r.Filter(h) {
				return
			}
			toi := alpha * r.MaxLen
			hits = append(hits, Intersection{
				Point:    r.Origin.Add(dir.Mul(toi)),
				Normal:   mgl64.Vec3{normal.X, 0, normal.Y},
				Collider: h,
				Kind:     w.colliders[h].kind,
				Toi:      toi,
			})
		}, nil)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Toi < hits[j].Toi })
	return hits
}
