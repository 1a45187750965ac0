package anim

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a bone's local transform.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns the rest transform.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// Lerp interpolates between a and b; rotations use slerp.
func Lerp(a, b Transform, t float64) Transform {
	return Transform{
		Position: a.Position.Add(b.Position.Sub(a.Position).Mul(t)),
		Rotation: mgl64.QuatSlerp(a.Rotation, b.Rotation, t),
		Scale:    a.Scale.Add(b.Scale.Sub(a.Scale).Mul(t)),
	}
}

// Pose maps bone names to local transforms.
type Pose map[string]Transform

// Skeleton receives evaluated poses.
type Skeleton interface {
	SetLocalTransform(bone string, t Transform)
}

// Blend mixes a toward b by factor t in [0, 1]. Bones present in only one
// pose keep that pose's transform.
func Blend(a, b Pose, t float64) Pose {
	switch {
	case t <= 0:
		return a.Clone()
	case t >= 1:
		return b.Clone()
	}
	out := make(Pose, len(a)+len(b))
	for bone, ta := range a {
		if tb, ok := b[bone]; ok {
			out[bone] = Lerp(ta, tb, t)
		} else {
			out[bone] = ta
		}
	}
	for bone, tb := range b {
		if _, ok := a[bone]; !ok {
			out[bone] = tb
		}
	}
	return out
}

// Clone returns a shallow copy of p.
func (p Pose) Clone() Pose {
	out := make(Pose, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Overlay writes the bones of top over p, skipping masked bones.
func (p Pose) Overlay(top Pose, mask map[string]bool) Pose {
	out := p.Clone()
	for bone, t := range top {
		if mask[bone] {
			continue
		}
		out[bone] = t
	}
	return out
}

// Apply writes every bone of p onto dst.
func (p Pose) Apply(dst Skeleton) {
	for bone, t := range p {
		dst.SetLocalTransform(bone, t)
	}
}
