package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const angleEpsilon = 1e-3

// WrapAngle maps a to (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// SmoothAngle rotates Angle toward Target at Speed radians per second along
// the shortest arc.
type SmoothAngle struct {
	Angle  float64
	Target float64
	Speed  float64
}

// Update advances the angle by dt seconds.
func (s *SmoothAngle) Update(dt float64) *SmoothAngle {
	delta := WrapAngle(s.Target - s.Angle)
	step := s.Speed * dt
	if math.Abs(delta) <= step {
		s.Angle = s.Target
	} else {
		s.Angle = WrapAngle(s.Angle + math.Copysign(step, delta))
	}
	return s
}

// AtTarget reports whether the angle has settled on its target.
func (s *SmoothAngle) AtTarget() bool {
	return math.Abs(WrapAngle(s.Target-s.Angle)) < angleEpsilon
}

// YawOf returns the rotation around +Y that turns +Z onto dir.
func YawOf(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.X(), dir.Z())
}

// PitchOf returns the elevation of dir above the horizontal plane.
func PitchOf(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.Y(), Horizontal(dir).Len())
}

// YawRotation returns a rotation of yaw radians around +Y.
func YawRotation(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
}

// PitchRotation returns a rotation of pitch radians around +X. Positive
// pitch raises a +Z facing look vector.
func PitchRotation(pitch float64) mgl64.Quat {
	return mgl64.QuatRotate(-pitch, mgl64.Vec3{1, 0, 0})
}
