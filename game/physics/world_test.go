package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastRay_OrdersHits(t *testing.T) {
	w := NewWorld()
	far := w.AddCapsule(mgl64.Vec3{0, 0, 8}, 0.5)
	wall := w.AddWall(mgl64.Vec3{-2, 0, 4}, mgl64.Vec3{2, 0, 4}, 0.2)

	hits := w.CastRay(Ray{Origin: mgl64.Vec3{}, Direction: mgl64.Vec3{0, 0, 1}, MaxLen: 10})
	require.Len(t, hits, 2)
	assert.Equal(t, wall, hits[0].Collider)
	assert.Equal(t, ShapeStatic, hits[0].Kind)
	assert.Equal(t, far, hits[1].Collider)
	assert.Equal(t, ShapeCapsule, hits[1].Kind)
	assert.Less(t, hits[0].Toi, hits[1].Toi)
	assert.InDelta(t, 3.9, hits[0].Toi, 1e-6)
}

func TestCastRay_FilterAndRemove(t *testing.T) {
	w := NewWorld()
	c := w.AddCapsule(mgl64.Vec3{0, 0, 3}, 0.5)

	hits := w.CastRay(Ray{Direction: mgl64.Vec3{0, 0, 1}, MaxLen: 10, Filter: func(h ColliderHandle) bool {
		return h != c
	}})
	assert.Empty(t, hits)

	w.MoveCapsule(c, mgl64.Vec3{5, 0, 3})
	assert.Empty(t, w.CastRay(Ray{Direction: mgl64.Vec3{0, 0, 1}, MaxLen: 10}))

	w.MoveCapsule(c, mgl64.Vec3{0, 0, 3})
	assert.Len(t, w.CastRay(Ray{Direction: mgl64.Vec3{0, 0, 1}, MaxLen: 10}), 1)

	w.Remove(c)
	assert.Empty(t, w.CastRay(Ray{Direction: mgl64.Vec3{0, 0, 1}, MaxLen: 10}))
	_, ok := w.Kind(c)
	assert.False(t, ok)
}

func TestCastRay_Degenerate(t *testing.T) {
	w := NewWorld()
	w.AddCapsule(mgl64.Vec3{}, 0.5)
	assert.Nil(t, w.CastRay(Ray{Direction: mgl64.Vec3{}, MaxLen: 10}))
	assert.Nil(t, w.CastRay(Ray{Direction: mgl64.Vec3{0, 1, 0}, MaxLen: 10}))
	assert.Nil(t, w.CastRay(Ray{Direction: mgl64.Vec3{1, 0, 0}, MaxLen: 0}))
}
