package absm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownState     = errors.New("absm: unknown state")
	ErrDuplicateState   = errors.New("absm: duplicate state name")
	ErrNoEntry          = errors.New("absm: entry state not set")
	ErrUnknownAnimation = errors.New("absm: unknown animation")
	ErrBadTransition    = errors.New("absm: invalid transition")
)

// Builder assembles a Machine. Errors surface from Build.
type Builder struct {
	states      []State
	transitions []Transition
	entry       StateHandle
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entry: NoState}
}

// AddState appends a state. The first state added becomes the entry unless
// SetEntry is called.
func (b *Builder) AddState(name string, root PoseNode) StateHandle {
	b.states = append(b.states, State{Name: name, Root: root})
	h := StateHandle(len(b.states) - 1)
	if b.entry == NoState {
		b.entry = h
	}
	return h
}

// AddTransition appends an edge; declaration order decides ties.
func (b *Builder) AddTransition(name string, src, dst StateHandle, duration float64, rule string) TransitionHandle {
	b.transitions = append(b.transitions, Transition{
		Name:     name,
		Source:   src,
		Dest:     dst,
		Duration: duration,
		Rule:     rule,
	})
	return TransitionHandle(len(b.transitions) - 1)
}

// SetEntry selects the state the machine starts in.
func (b *Builder) SetEntry(h StateHandle) *Builder {
	b.entry = h
	return b
}

func (b *Builder) validState(h StateHandle) bool {
	return h >= 0 && int(h) < len(b.states)
}

// Build validates the topology against src and returns the machine.
func (b *Builder) Build(src AnimationSource) (*Machine, error) {
	if b.entry == NoState {
		return nil, ErrNoEntry
	}
	if !b.validState(b.entry) {
		return nil, fmt.Errorf("%w: entry %d", ErrUnknownState, b.entry)
	}
	names := make(map[string]bool, len(b.states))
	for _, s := range b.states {
		if names[s.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, s.Name)
		}
		names[s.Name] = true
		if s.Root == nil {
			return nil, fmt.Errorf("%w: state %q has no pose", ErrUnknownAnimation, s.Name)
		}
		for _, h := range s.Root.animations() {
			if src != nil && !src.Has(h) {
				return nil, fmt.Errorf("%w: %d in state %q", ErrUnknownAnimation, h, s.Name)
			}
		}
	}
	for _, tr := range b.transitions {
		if !b.validState(tr.Source) || !b.validState(tr.Dest) {
			return nil, fmt.Errorf("%w: transition %q", ErrUnknownState, tr.Name)
		}
		if tr.Duration < 0 || tr.Rule == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadTransition, tr.Name)
		}
	}

	m := &Machine{
		states:      append([]State(nil), b.states...),
		transitions: append([]Transition(nil), b.transitions...),
		params:      make(map[string]Parameter),
		entry:       b.entry,
	}
	m.Reset()
	return m, nil
}
