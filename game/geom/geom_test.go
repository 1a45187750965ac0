package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFrustum_Contains(t *testing.T) {
	eye := mgl64.Vec3{0, 1, 0}
	f := PerspectiveFrustum(eye, eye.Add(mgl64.Vec3{0, 0, 1}), mgl64.Vec3{0, 1, 0}, 90, 16.0/9.0, 0.1, 20)

	assert.True(t, f.Contains(mgl64.Vec3{0, 1, 5}), "straight ahead")
	assert.True(t, f.Contains(mgl64.Vec3{3, 1, 5}), "ahead and to the side")
	assert.False(t, f.Contains(mgl64.Vec3{0, 1, -5}), "behind")
	assert.False(t, f.Contains(mgl64.Vec3{0, 1, 25}), "beyond far plane")
	assert.False(t, f.Contains(mgl64.Vec3{0, 1, 0.05}), "before near plane")
	assert.False(t, f.Contains(mgl64.Vec3{20, 1, 2}), "outside horizontal fov")
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, WrapAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi, WrapAngle(-math.Pi), 1e-9)
}

func TestSmoothAngle_ShortestArc(t *testing.T) {
	s := &SmoothAngle{Angle: mgl64.DegToRad(170), Target: mgl64.DegToRad(-170), Speed: mgl64.DegToRad(10)}
	s.Update(1)
	assert.InDelta(t, math.Pi, math.Abs(s.Angle), 1e-9)
	assert.False(t, s.AtTarget())
	s.Update(1)
	assert.True(t, s.AtTarget())
}

func TestSmoothAngle_Settles(t *testing.T) {
	s := &SmoothAngle{Target: 1, Speed: math.Pi}
	for i := 0; i < 10 && !s.AtTarget(); i++ {
		s.Update(0.05)
	}
	assert.True(t, s.AtTarget())
	assert.Equal(t, 1.0, s.Angle)
}

func TestYawPitch(t *testing.T) {
	assert.InDelta(t, math.Pi/2, YawOf(mgl64.Vec3{1, 0, 0}), 1e-9)
	assert.InDelta(t, math.Pi/4, PitchOf(mgl64.Vec3{0, 1, 1}), 1e-9)

	v := YawRotation(math.Pi / 2).Rotate(mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, 1, v.X(), 1e-9)
	up := PitchRotation(math.Pi / 4).Rotate(mgl64.Vec3{0, 0, 1})
	assert.Greater(t, up.Y(), 0.0)
}
