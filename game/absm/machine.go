// Package absm implements an animation blending state machine: states hold
// pose expressions, transitions blend between them when a rule parameter
// holds.
package absm

import (
	"github.com/kasuganosora/botbrain/game/anim"
)

// StateHandle references a State of a Machine.
type StateHandle int

// TransitionHandle references a Transition of a Machine.
type TransitionHandle int

const (
	NoState      StateHandle      = -1
	NoTransition TransitionHandle = -1
)

// State is a node of the machine.
type State struct {
	Name string
	Root PoseNode
}

// Transition is an edge blended over Duration seconds once Rule holds.
type Transition struct {
	Name     string
	Source   StateHandle
	Dest     StateHandle
	Duration float64
	Rule     string
}

// Machine evaluates one resident state, or one in-flight transition, per
// call to EvaluatePose. Topology is fixed once built.
type Machine struct {
	states      []State
	transitions []Transition
	params      map[string]Parameter

	entry   StateHandle
	active  StateHandle
	current TransitionHandle
	elapsed float64
}

// SetParameter inserts or overwrites a parameter. Names no transition or
// node reads are kept but have no effect.
func (m *Machine) SetParameter(name string, p Parameter) *Machine {
	m.params[name] = p
	return m
}

// Parameter returns the named parameter; missing names yield Rule(false).
func (m *Machine) Parameter(name string) Parameter {
	return m.params[name]
}

// ActiveState returns the resident state.
func (m *Machine) ActiveState() StateHandle { return m.active }

// ActiveTransition returns the transition being blended, if any.
func (m *Machine) ActiveTransition() (TransitionHandle, bool) {
	return m.current, m.current != NoTransition
}

// TransitionProgress returns the blend factor of the active transition.
func (m *Machine) TransitionProgress() float64 {
	if m.current == NoTransition {
		return 0
	}
	return blendFactor(m.elapsed, m.transitions[m.current].Duration)
}

// IsIn reports whether h is resident or being blended into.
func (m *Machine) IsIn(h StateHandle) bool {
	if m.active == h {
		return true
	}
	return m.current != NoTransition && m.transitions[m.current].Dest == h
}

// State returns the state at h.
func (m *Machine) State(h StateHandle) (State, bool) {
	if h < 0 || int(h) >= len(m.states) {
		return State{}, false
	}
	return m.states[h], true
}

// Transition returns the transition at h.
func (m *Machine) Transition(h TransitionHandle) (Transition, bool) {
	if h < 0 || int(h) >= len(m.transitions) {
		return Transition{}, false
	}
	return m.transitions[h], true
}

// FindState looks a state up by name.
func (m *Machine) FindState(name string) (StateHandle, bool) {
	for i, s := range m.states {
		if s.Name == name {
			return StateHandle(i), true
		}
	}
	return NoState, false
}

// Animations returns the animations referenced by the state at h.
func (m *Machine) Animations(h StateHandle) []anim.Handle {
	s, ok := m.State(h)
	if !ok {
		return nil
	}
	return s.Root.animations()
}

// Reset returns to the entry state and drops the active transition.
func (m *Machine) Reset() {
	m.active = m.entry
	m.current = NoTransition
	m.elapsed = 0
}

func blendFactor(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	f := elapsed / duration
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (m *Machine) statePose(h StateHandle, src AnimationSource, dt float64) anim.Pose {
	return m.states[h].Root.pose(m, src, dt)
}

// EvaluatePose advances the machine by dt and returns its pose. The first
// eligible transition in declaration order wins; an active transition runs
// to completion before another is considered.
func (m *Machine) EvaluatePose(src AnimationSource, dt float64) anim.Pose {
	if m.current == NoTransition {
		for i, tr := range m.transitions {
			if tr.Source == m.active && m.params[tr.Rule].RuleValue() {
				m.current = TransitionHandle(i)
				m.elapsed = 0
				break
			}
		}
	}

	if m.current != NoTransition {
		tr := m.transitions[m.current]
		m.elapsed += dt
		f := blendFactor(m.elapsed, tr.Duration)
		if f < 1 {
			from := m.statePose(tr.Source, src, dt)
			to := m.statePose(tr.Dest, src, dt)
			return anim.Blend(from, to, f)
		}
		m.active = tr.Dest
		m.current = NoTransition
		m.elapsed = 0
	}

	return m.statePose(m.active, src, dt)
}

// Apply writes pose onto the skeleton.
func (m *Machine) Apply(pose anim.Pose, dst anim.Skeleton) {
	pose.Apply(dst)
}
