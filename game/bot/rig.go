package bot

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/botbrain/game/absm"
	"github.com/kasuganosora/botbrain/game/anim"
	"github.com/kasuganosora/botbrain/resource"
)

var (
	ErrMissingLayer = errors.New("bot: missing animation layer")
	ErrUnknownClip  = errors.New("bot: unknown clip")
	ErrUnknownState = errors.New("bot: unknown state")
)

// Layer is one animation state machine with its own animation instances.
type Layer struct {
	Name     string
	Machine  *absm.Machine
	Mask     map[string]bool
	Bindings *Bindings

	clips map[string]anim.Handle
}

// Clip returns the layer's instance of the named clip.
func (l *Layer) Clip(name string) (anim.Handle, bool) {
	h, ok := l.clips[name]
	return h, ok
}

// Animations returns every animation instance of the layer.
func (l *Layer) Animations() []anim.Handle {
	out := make([]anim.Handle, 0, len(l.clips))
	for _, h := range l.clips {
		out = append(out, h)
	}
	return out
}

func buildLayer(name string, def *resource.LayerDef, clips map[string]*anim.Clip, player *anim.Player) (*Layer, error) {
	l := &Layer{
		Name:  name,
		Mask:  make(map[string]bool, len(def.Mask)),
		clips: make(map[string]anim.Handle),
	}
	for _, bone := range def.Mask {
		l.Mask[bone] = true
	}
	for _, c := range def.Clips() {
		clip, ok := clips[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s layer %s", ErrUnknownClip, c, name)
		}
		l.clips[c] = player.Add(clip)
	}

	inputs := func(b *resource.BlendDef) []absm.BlendInput {
		out := make([]absm.BlendInput, len(b.Inputs))
		for i, in := range b.Inputs {
			out[i] = absm.BlendInput{Animation: l.clips[in.Play], BlendTime: in.BlendTime, Weight: in.Weight}
		}
		return out
	}

	bld := absm.NewBuilder()
	states := make(map[string]absm.StateHandle, len(def.States))
	for _, s := range def.States {
		var root absm.PoseNode
		switch {
		case s.Play != "":
			root = &absm.PlayAnimation{Animation: l.clips[s.Play]}
		case s.BlendByIndex != nil:
			root = &absm.BlendByIndex{Parameter: s.BlendByIndex.Parameter, Inputs: inputs(s.BlendByIndex)}
		case s.BlendByWeight != nil:
			root = &absm.BlendByWeight{Inputs: inputs(s.BlendByWeight)}
		}
		states[s.Name] = bld.AddState(s.Name, root)
	}
	stateOf := func(n string) absm.StateHandle {
		if h, ok := states[n]; ok {
			return h
		}
		return absm.NoState
	}
	for _, t := range def.Transitions {
		bld.AddTransition(t.Name, stateOf(t.From), stateOf(t.To), t.Duration, t.Rule)
	}
	bld.SetEntry(stateOf(def.Entry))

	m, err := bld.Build(player)
	if err != nil {
		return nil, fmt.Errorf("bot: layer %s: %w", name, err)
	}
	l.Machine = m

	b, err := CompileBindings(def.Bindings)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", name, err)
	}
	l.Bindings = b
	return l, nil
}

// Rig is the two-layer animation setup of a bot plus the clips the
// behaviors drive by hand.
type Rig struct {
	Lower *Layer
	Upper *Layer

	AimState    absm.StateHandle
	AttackState absm.StateHandle

	Attacks []anim.Handle
	Scream  []anim.Handle
	Dying   []anim.Handle
}

// NewRig instantiates both layers of def into player.
func NewRig(def *resource.Archetype, clips map[string]*anim.Clip, player *anim.Player) (*Rig, error) {
	r := &Rig{AimState: absm.NoState, AttackState: absm.NoState}
	for _, name := range []string{resource.LayerLower, resource.LayerUpper} {
		ld, ok := def.Layers[name]
		if !ok || ld == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLayer, name)
		}
		l, err := buildLayer(name, ld, clips, player)
		if err != nil {
			return nil, err
		}
		if name == resource.LayerLower {
			r.Lower = l
		} else {
			r.Upper = l
		}
	}

	state := func(role, name string) (absm.StateHandle, error) {
		if name == "" {
			return absm.NoState, nil
		}
		h, ok := r.Upper.Machine.FindState(name)
		if !ok {
			return absm.NoState, fmt.Errorf("%w: %s state %q", ErrUnknownState, role, name)
		}
		return h, nil
	}
	var err error
	if r.AimState, err = state("aim", def.Roles.AimState); err != nil {
		return nil, err
	}
	if r.AttackState, err = state("attack", def.Roles.AttackState); err != nil {
		return nil, err
	}

	for _, a := range def.Attacks {
		h, ok := r.Upper.Clip(a.Clip)
		if !ok {
			return nil, fmt.Errorf("%w: attack %s", ErrUnknownClip, a.Clip)
		}
		player.SetSpeed(h, a.Speed)
		r.Attacks = append(r.Attacks, h)
	}
	both := func(clip string) []anim.Handle {
		var out []anim.Handle
		for _, l := range []*Layer{r.Lower, r.Upper} {
			if h, ok := l.Clip(clip); ok {
				out = append(out, h)
			}
		}
		return out
	}
	if def.Roles.Scream != "" {
		r.Scream = both(def.Roles.Scream)
	}
	if def.Roles.Dying != "" {
		r.Dying = both(def.Roles.Dying)
	}

	// One-shot clips stay parked until a behavior plays them.
	for _, set := range [][]anim.Handle{r.Attacks, r.Scream, r.Dying} {
		for _, h := range set {
			player.SetEnabled(h, false)
		}
	}
	return r, nil
}

// InAimState reports whether the upper body is resident in the aim state.
func (r *Rig) InAimState() bool {
	return r.AimState != absm.NoState && r.Upper.Machine.ActiveState() == r.AimState
}

// InAttackState reports whether the upper body is in or entering the attack
// state.
func (r *Rig) InAttackState() bool {
	return r.AttackState != absm.NoState && r.Upper.Machine.IsIn(r.AttackState)
}
