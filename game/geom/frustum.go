// Package geom holds the small amount of 3D math the bots need on top of mgl64.
package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Frustum is a view volume described by six inward-facing planes.
type Frustum struct {
	planes [6]mgl64.Vec4
}

// FrustumFromMatrix extracts the planes of a view-projection matrix.
func FrustumFromMatrix(m mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	return Frustum{planes: [6]mgl64.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}}
}

// PerspectiveFrustum builds the frustum of an eye looking at center.
// fovy is the vertical field of view in degrees.
func PerspectiveFrustum(eye, center, up mgl64.Vec3, fovy, aspect, near, far float64) Frustum {
	proj := mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far)
	view := mgl64.LookAtV(eye, center, up)
	return FrustumFromMatrix(proj.Mul4(view))
}

// Contains reports whether p lies inside all six planes.
func (f Frustum) Contains(p mgl64.Vec3) bool {
	hp := p.Vec4(1)
	for _, pl := range f.planes {
		if pl.Dot(hp) < 0 {
			return false
		}
	}
	return true
}

// Horizontal drops the vertical component of v.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}
