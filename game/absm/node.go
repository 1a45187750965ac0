package absm

import (
	"github.com/kasuganosora/botbrain/game/anim"
)

// AnimationSource provides sampled poses for animation handles.
type AnimationSource interface {
	Has(h anim.Handle) bool
	Pose(h anim.Handle) (anim.Pose, bool)
}

// PoseNode is the pose expression held by a State.
type PoseNode interface {
	pose(m *Machine, src AnimationSource, dt float64) anim.Pose
	animations() []anim.Handle
}

func samplePose(src AnimationSource, h anim.Handle) anim.Pose {
	if p, ok := src.Pose(h); ok {
		return p
	}
	return anim.Pose{}
}

// PlayAnimation yields one animation at its current local time.
type PlayAnimation struct {
	Animation anim.Handle
}

func (n *PlayAnimation) pose(_ *Machine, src AnimationSource, _ float64) anim.Pose {
	return samplePose(src, n.Animation)
}

func (n *PlayAnimation) animations() []anim.Handle { return []anim.Handle{n.Animation} }

// BlendInput is one input of a blend node.
type BlendInput struct {
	Animation anim.Handle
	// BlendTime is the crossfade used when a BlendByIndex switches to this input.
	BlendTime float64
	// Weight names the parameter weighing this input in BlendByWeight.
	Weight string
}

// BlendByIndex yields the input selected by an Index parameter and
// crossfades when the selection changes.
type BlendByIndex struct {
	Parameter string
	Inputs    []BlendInput

	started bool
	current int
	prev    int
	fading  bool
	elapsed float64
}

func (n *BlendByIndex) selected(m *Machine) int {
	i := int(m.Parameter(n.Parameter).IndexValue())
	if i >= len(n.Inputs) {
		i = len(n.Inputs) - 1
	}
	return i
}

func (n *BlendByIndex) pose(m *Machine, src AnimationSource, dt float64) anim.Pose {
	if len(n.Inputs) == 0 {
		return anim.Pose{}
	}
	i := n.selected(m)
	if !n.started {
		n.started, n.current = true, i
	}
	if i != n.current {
		n.prev, n.current = n.current, i
		n.fading, n.elapsed = true, 0
	}
	cur := samplePose(src, n.Inputs[n.current].Animation)
	if !n.fading {
		return cur
	}
	n.elapsed += dt
	d := n.Inputs[n.current].BlendTime
	if d <= 0 || n.elapsed >= d {
		n.fading = false
		return cur
	}
	return anim.Blend(samplePose(src, n.Inputs[n.prev].Animation), cur, n.elapsed/d)
}

func (n *BlendByIndex) animations() []anim.Handle {
	out := make([]anim.Handle, len(n.Inputs))
	for i, in := range n.Inputs {
		out[i] = in.Animation
	}
	return out
}

// BlendByWeight mixes every input by its Weight parameter.
type BlendByWeight struct {
	Inputs []BlendInput
}

func (n *BlendByWeight) pose(m *Machine, src AnimationSource, _ float64) anim.Pose {
	var out anim.Pose
	acc := 0.0
	for _, in := range n.Inputs {
		w := m.Parameter(in.Weight).WeightValue()
		if w <= 0 {
			continue
		}
		acc += w
		p := samplePose(src, in.Animation)
		if out == nil {
			out = p
			continue
		}
		out = anim.Blend(out, p, w/acc)
	}
	if out == nil {
		if len(n.Inputs) == 0 {
			return anim.Pose{}
		}
		return samplePose(src, n.Inputs[0].Animation)
	}
	return out
}

func (n *BlendByWeight) animations() []anim.Handle {
	out := make([]anim.Handle, len(n.Inputs))
	for i, in := range n.Inputs {
		out[i] = in.Animation
	}
	return out
}
